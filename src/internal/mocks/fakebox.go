package mocks

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// SessionHeader carries the session token.
const SessionHeader = "X-Fbx-App-Auth"

// APIBasePath is the versioned API root served by FakeBox.
const APIBasePath = "/api/v8/"

// FakeBox emulates the box API over httptest.
//
// Example usage:
//
//	box := mocks.NewFakeBox()
//	defer box.Close()
//	box.SetAppToken("fr.example.app", "secret")
//	box.Result(http.MethodGet, "/system/", map[string]any{"firmware_version": "4.7"})
type FakeBox struct {
	Server *httptest.Server

	router    chi.Router
	protected chi.Router

	mu          sync.Mutex
	appTokens   map[string]string // app_id -> valid app token
	pendingApps map[string]bool   // app_id -> token issued but not granted yet
	challenges  map[string]bool   // outstanding challenges
	sessions    map[string]bool
	tracks      map[int]*fakeTrack
	nextTrack   int
	nextID      int
	permissions map[string]bool
	requests    []string

	statusSequence []string
	loginDelay     time.Duration

	logins     atomic.Int32
	authorizes atomic.Int32
}

type fakeTrack struct {
	appID string
	token string
	polls int
}

// NewFakeBox starts a fake box.
func NewFakeBox() *FakeBox {
	fb := &FakeBox{
		appTokens:   make(map[string]string),
		pendingApps: make(map[string]bool),
		challenges:  make(map[string]bool),
		sessions:    make(map[string]bool),
		tracks:      make(map[int]*fakeTrack),
		nextTrack:   1,
		permissions: map[string]bool{"settings": true, "downloader": true, "calls": true, "home": false},
	}

	r := chi.NewRouter()
	r.Use(fb.record)
	r.Get("/api_version", fb.handleAPIVersion)
	r.Route(strings.TrimSuffix(APIBasePath, "/"), func(r chi.Router) {
		r.Post("/login/authorize/", fb.handleAuthorize)
		r.Get("/login/authorize/{trackID}", fb.handleAuthorizeStatus)
		r.Get("/login/", fb.handleChallenge)
		r.Post("/login/session/", fb.handleSession)
		r.Group(func(r chi.Router) {
			r.Use(fb.requireSession)
			r.Post("/login/logout/", fb.handleLogout)
			fb.protected = r
		})
	})
	fb.router = r
	fb.Server = httptest.NewServer(r)
	return fb
}

// Close stops the server.
func (fb *FakeBox) Close() {
	fb.Server.Close()
}

// BaseURL returns the versioned API root.
func (fb *FakeBox) BaseURL() string {
	return fb.Server.URL + APIBasePath
}

// SetAppToken registers a valid app token for appID.
func (fb *FakeBox) SetAppToken(appID, token string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.appTokens[appID] = token
	delete(fb.pendingApps, appID)
}

// SetStatusSequence sets the statuses replayed by GET
// login/authorize/{id}; the last one repeats. Defaults to ["granted"].
func (fb *FakeBox) SetStatusSequence(statuses ...string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.statusSequence = statuses
}

// SetLoginDelay delays every POST login/session/.
func (fb *FakeBox) SetLoginDelay(d time.Duration) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.loginDelay = d
}

// SetPermissions replaces the permissions granted to new sessions.
func (fb *FakeBox) SetPermissions(perms map[string]bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.permissions = perms
}

// ExpireSessions invalidates every open session.
func (fb *FakeBox) ExpireSessions() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.sessions = make(map[string]bool)
}

// OpenSessions returns the number of live sessions.
func (fb *FakeBox) OpenSessions() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.sessions)
}

// Logins returns how many sessions were opened.
func (fb *FakeBox) Logins() int {
	return int(fb.logins.Load())
}

// Authorizations returns how many registrations were requested.
func (fb *FakeBox) Authorizations() int {
	return int(fb.authorizes.Load())
}

// Requests returns "METHOD /path" for every request received.
func (fb *FakeBox) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requests...)
}

// Handle mounts a session-protected handler below the API root, e.g.
// Handle(http.MethodGet, "/downloads/{id}", h).
func (fb *FakeBox) Handle(method, pattern string, h http.HandlerFunc) {
	fb.protected.MethodFunc(method, pattern, h)
}

// Result mounts a session-protected endpoint answering a success envelope
// with result.
func (fb *FakeBox) Result(method, pattern string, result any) {
	fb.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, result)
	})
}

// Failure mounts a session-protected endpoint answering a failed envelope.
func (fb *FakeBox) Failure(method, pattern string, status int, code, msg string) {
	fb.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteFailure(w, status, code, msg)
	})
}

// WriteSuccess writes {"success": true, "result": result}.
func WriteSuccess(w http.ResponseWriter, result any) {
	body := map[string]any{"success": true}
	if result != nil {
		body["result"] = result
	}
	writeJSON(w, http.StatusOK, body)
}

// WriteFailure writes {"success": false, "error_code": code, "msg": msg}.
func WriteFailure(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error_code": code, "msg": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (fb *FakeBox) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requests = append(fb.requests, r.Method+" "+r.URL.Path)
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBox) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		fb.mu.Lock()
		ok := token != "" && fb.sessions[token]
		fb.mu.Unlock()
		if !ok {
			WriteFailure(w, http.StatusForbidden, "auth_required", "Invalid session token, or no session token sent")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBox) handleAPIVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":             "23b86ec8091013d668829fe12791fdab",
		"device_name":     "Freebox Server",
		"api_version":     "8.0",
		"api_base_url":    "/api/",
		"device_type":     "FreeboxServer1,2",
		"api_domain":      "abcdefgh.fbxos.fr",
		"https_available": true,
		"https_port":      3615,
	})
}

func (fb *FakeBox) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppID      string `json:"app_id"`
		AppName    string `json:"app_name"`
		AppVersion string `json:"app_version"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppID == "" {
		WriteFailure(w, http.StatusBadRequest, "invalid_request", "Invalid request")
		return
	}
	fb.authorizes.Add(1)

	fb.mu.Lock()
	trackID := fb.nextTrack
	fb.nextTrack++
	token := fmt.Sprintf("app-token-%d-%s", trackID, req.AppID)
	fb.tracks[trackID] = &fakeTrack{appID: req.AppID, token: token}
	fb.pendingApps[req.AppID] = true
	fb.appTokens[req.AppID] = token
	fb.mu.Unlock()

	WriteSuccess(w, map[string]any{"app_token": token, "track_id": trackID})
}

func (fb *FakeBox) handleAuthorizeStatus(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.Atoi(chi.URLParam(r, "trackID"))
	if err != nil {
		WriteFailure(w, http.StatusNotFound, "noent", "Unknown track id")
		return
	}

	fb.mu.Lock()
	track, ok := fb.tracks[trackID]
	status := "unknown"
	if ok {
		seq := fb.statusSequence
		if len(seq) == 0 {
			seq = []string{"granted"}
		}
		idx := track.polls
		if idx >= len(seq) {
			idx = len(seq) - 1
		}
		status = seq[idx]
		track.polls++
		switch status {
		case "granted":
			delete(fb.pendingApps, track.appID)
		case "denied", "timeout":
			delete(fb.appTokens, track.appID)
			delete(fb.pendingApps, track.appID)
		}
	}
	fb.mu.Unlock()

	WriteSuccess(w, map[string]any{"status": status, "challenge": fb.newChallenge()})
}

func (fb *FakeBox) handleChallenge(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]any{"logged_in": false, "challenge": fb.newChallenge()})
}

func (fb *FakeBox) newChallenge() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	challenge := fmt.Sprintf("challenge-%d", fb.nextID)
	fb.challenges[challenge] = true
	return challenge
}

func (fb *FakeBox) handleSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppID    string `json:"app_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteFailure(w, http.StatusBadRequest, "invalid_request", "Invalid request")
		return
	}

	fb.mu.Lock()
	delay := fb.loginDelay
	fb.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	fb.mu.Lock()
	token, known := fb.appTokens[req.AppID]
	pending := fb.pendingApps[req.AppID]
	matched := ""
	if known {
		for challenge := range fb.challenges {
			if hmacHex(token, challenge) == req.Password {
				matched = challenge
				break
			}
		}
	}
	if matched != "" {
		delete(fb.challenges, matched)
	}
	fb.mu.Unlock()

	switch {
	case known && pending:
		WriteFailure(w, http.StatusForbidden, "pending_token", "The app token is pending approval")
		return
	case matched == "":
		WriteFailure(w, http.StatusForbidden, "invalid_token", "Unknown app token")
		return
	}

	fb.logins.Add(1)

	fb.mu.Lock()
	fb.nextID++
	session := fmt.Sprintf("session-%d", fb.nextID)
	fb.sessions[session] = true
	perms := make(map[string]bool, len(fb.permissions))
	for k, v := range fb.permissions {
		perms[k] = v
	}
	fb.mu.Unlock()

	WriteSuccess(w, map[string]any{
		"session_token": session,
		"challenge":     fb.newChallenge(),
		"permissions":   perms,
	})
}

func (fb *FakeBox) handleLogout(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	delete(fb.sessions, r.Header.Get(SessionHeader))
	fb.mu.Unlock()
	WriteSuccess(w, nil)
}

func hmacHex(key, msg string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
