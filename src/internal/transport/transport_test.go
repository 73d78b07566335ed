package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

func newTestTransport(t *testing.T, server *httptest.Server) *Transport {
	t.Helper()
	tr, err := New(Options{BaseURL: server.URL + "/api/v8", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "adds trailing slash", input: "https://box.example:1234/api/v8", want: "https://box.example:1234/api/v8/"},
		{name: "keeps trailing slash", input: "http://192.168.1.254/api/v8/", want: "http://192.168.1.254/api/v8/"},
		{name: "adds scheme", input: "mafreebox.freebox.fr/api/v8/", want: "http://mafreebox.freebox.fr/api/v8/"},
		{name: "drops query", input: "http://host/api/v8/?x=1", want: "http://host/api/v8/"},
		{name: "empty", input: "  ", wantErr: true},
		{name: "no host", input: "http:///api/v8/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBaseURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				if !errors.Is(err, fbxerrors.New(fbxerrors.ErrCodeConfig, "")) {
					t.Errorf("expected CONFIG_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseBaseURL(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestDo_SuccessEnvelope(t *testing.T) {
	var gotPath, gotHeader, gotContentType, gotUA string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Get(AuthHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"result":{"id":42}}`)
	}))
	defer server.Close()

	tr := newTestTransport(t, server)
	env, err := tr.Do(context.Background(), http.MethodPost, "downloads/add", map[string]string{"download_url": "http://x"}, "session-1")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if gotPath != "/api/v8/downloads/add" {
		t.Errorf("path = %q", gotPath)
	}
	if gotHeader != "session-1" {
		t.Errorf("%s = %q, want session-1", AuthHeader, gotHeader)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotUA != defaultUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotBody["download_url"] != "http://x" {
		t.Errorf("body = %v", gotBody)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	var result struct {
		ID int `json:"id"`
	}
	if err := env.Decode(&result); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.ID != 42 {
		t.Errorf("id = %d, want 42", result.ID)
	}
}

func TestDo_NoSessionHeaderWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[AuthHeader]; ok {
			t.Errorf("unexpected %s header", AuthHeader)
		}
		if r.ContentLength > 0 {
			t.Errorf("unexpected body on GET")
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	env, err := newTestTransport(t, server).Do(context.Background(), http.MethodGet, "login/", nil, "")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(env.Result) != 0 {
		t.Errorf("expected empty result, got %s", env.Result)
	}
}

func TestDo_FailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"success":false,"error_code":"auth_required","msg":"Invalid session token"}`)
	}))
	defer server.Close()

	env, err := newTestTransport(t, server).Do(context.Background(), http.MethodGet, "downloads/", nil, "stale")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if env.Success || env.ErrorCode != "auth_required" || env.Msg != "Invalid session token" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestDo_FailureWithoutErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	}))
	defer server.Close()

	_, err := newTestTransport(t, server).Do(context.Background(), http.MethodGet, "x", nil, "")
	if !errors.Is(err, fbxerrors.ErrAPI) {
		t.Fatalf("expected API_ERROR, got %v", err)
	}
	if fbxerrors.BoxCodeOf(err) != "invalid_response" {
		t.Errorf("box code = %q, want invalid_response", fbxerrors.BoxCodeOf(err))
	}
}

func TestDo_NotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	_, err := newTestTransport(t, server).Do(context.Background(), http.MethodGet, "x", nil, "")
	if !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr, err := New(Options{BaseURL: url + "/api/v8/", Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = tr.Do(context.Background(), http.MethodGet, "login/", nil, "")
	if !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestTransport(t, server).Do(ctx, http.MethodGet, "login/", nil, "")
	if !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v8/dl/ZmlsZQ==":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = io.WriteString(w, "file-content")
		default:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"success":false,"error_code":"invalid_session","msg":"expired"}`)
		}
	}))
	defer server.Close()

	tr := newTestTransport(t, server)

	resp, err := tr.Raw(context.Background(), "dl/ZmlsZQ==", "tok")
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	if string(resp.Body) != "file-content" {
		t.Errorf("body = %q", resp.Body)
	}
	if _, ok := resp.Envelope(); ok {
		t.Error("binary response must not decode as envelope")
	}

	resp, err = tr.Raw(context.Background(), "dl/other", "tok")
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	env, ok := resp.Envelope()
	if !ok {
		t.Fatal("expected JSON error envelope")
	}
	if env.ErrorCode != "invalid_session" {
		t.Errorf("error_code = %q", env.ErrorCode)
	}
}

func TestResolve_Query(t *testing.T) {
	tr, err := New(Options{BaseURL: "http://box/api/v8/", HTTPClient: http.DefaultClient})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tests := map[string]string{
		"/downloads/1/log?limit=5":                       "http://box/api/v8/downloads/1/log?limit=5",
		"downloads/1/trackers/udp%3A%2F%2Ft.example%2Fa": "http://box/api/v8/downloads/1/trackers/udp%3A%2F%2Ft.example%2Fa",
		"dl/L0Rpc3F1ZQ==":                                "http://box/api/v8/dl/L0Rpc3F1ZQ==",
	}
	for path, want := range tests {
		if got := tr.resolve(path); got != want {
			t.Errorf("resolve(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestTLS_FingerprintPin(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	pin := Fingerprint(server.Certificate().Raw)

	tr, err := New(Options{BaseURL: server.URL + "/api/v8/", TLS: TLSOptions{Fingerprint: pin}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := tr.Do(context.Background(), http.MethodGet, "login/", nil, ""); err != nil {
		t.Fatalf("pinned request failed: %v", err)
	}

	wrong := make([]byte, len(pin))
	tr, err = New(Options{BaseURL: server.URL + "/api/v8/", TLS: TLSOptions{Fingerprint: wrong}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = tr.Do(context.Background(), http.MethodGet, "login/", nil, "")
	if !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR on pin mismatch, got %v", err)
	}
}

func TestTLS_CAFile(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	if err := os.WriteFile(caPath, pemData, 0o600); err != nil {
		t.Fatalf("write CA: %v", err)
	}

	tr, err := New(Options{BaseURL: server.URL + "/api/v8/", TLS: TLSOptions{CAFile: caPath}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := tr.Do(context.Background(), http.MethodGet, "login/", nil, ""); err != nil {
		t.Fatalf("request with CA bundle failed: %v", err)
	}

	// Without the bundle the self-signed certificate is rejected.
	tr, err = New(Options{BaseURL: server.URL + "/api/v8/"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := tr.Do(context.Background(), http.MethodGet, "login/", nil, ""); !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR without CA, got %v", err)
	}
}

func TestBuildTLSConfig(t *testing.T) {
	cfg, err := buildTLSConfig(TLSOptions{InsecureSkipVerify: true})
	if err != nil || !cfg.InsecureSkipVerify {
		t.Errorf("insecure: cfg=%v err=%v", cfg, err)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x", cfg.MinVersion)
	}

	if _, err := buildTLSConfig(TLSOptions{Fingerprint: []byte{1, 2, 3}}); err == nil {
		t.Error("expected error for short fingerprint")
	}
	if _, err := buildTLSConfig(TLSOptions{CAPEM: []byte("not a pem")}); err == nil {
		t.Error("expected error for bundle without certificates")
	}
	if _, err := buildTLSConfig(TLSOptions{CAFile: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Error("expected error for missing CA file")
	}

	cfg, err = buildTLSConfig(TLSOptions{})
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if cfg.RootCAs != nil || cfg.InsecureSkipVerify {
		t.Error("default config should use system roots with verification")
	}
}
