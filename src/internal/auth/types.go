package auth

import (
	"context"
	"sort"

	"github.com/maksimkurb/fbx-go/src/internal/credentials"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Identity describes the application to the box.
type Identity = credentials.Identity

// Doer sends one request to the box. *transport.Transport implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, sessionToken string) (*transport.Envelope, error)
}

// AuthorizationStatus is the state of a registration as reported by the box.
type AuthorizationStatus string

const (
	StatusUnknown AuthorizationStatus = "unknown"
	StatusPending AuthorizationStatus = "pending"
	StatusTimeout AuthorizationStatus = "timeout"
	StatusGranted AuthorizationStatus = "granted"
	StatusDenied  AuthorizationStatus = "denied"
)

// Registration is the answer to an authorization request.
type Registration struct {
	AppToken string `json:"app_token"`
	TrackID  int    `json:"track_id"`
}

// OutcomeStatus is the terminal state of a registration poll.
type OutcomeStatus string

const (
	OutcomeGranted  OutcomeStatus = "granted"
	OutcomeDenied   OutcomeStatus = "denied"
	OutcomeTimedOut OutcomeStatus = "timed_out"
)

// Outcome is the result of PollRegistration. AppToken is only set when
// the registration was granted.
type Outcome struct {
	Status   OutcomeStatus
	AppToken string
}

// Permissions lists what the session may do. The box is the authority;
// this map is advisory.
type Permissions map[string]bool

// Has reports whether the permission is granted.
func (p Permissions) Has(name string) bool {
	return p[name]
}

// Granted returns the granted permission names, sorted.
func (p Permissions) Granted() []string {
	names := make([]string, 0, len(p))
	for name, ok := range p {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Session is an open session on the box.
type Session struct {
	Token       string
	Permissions Permissions
	// Challenge is the next challenge announced by the box.
	Challenge string
}

type authorizeStatusResult struct {
	Status    AuthorizationStatus `json:"status"`
	Challenge string              `json:"challenge"`
}

type challengeResult struct {
	LoggedIn     bool   `json:"logged_in"`
	Challenge    string `json:"challenge"`
	PasswordSalt string `json:"password_salt,omitempty"`
}

type sessionRequest struct {
	AppID    string `json:"app_id"`
	Password string `json:"password"`
}

type sessionResult struct {
	SessionToken string      `json:"session_token"`
	Challenge    string      `json:"challenge"`
	Permissions  Permissions `json:"permissions"`
}
