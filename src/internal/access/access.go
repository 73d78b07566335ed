package access

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/maksimkurb/fbx-go/src/internal/auth"
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Requester is what resource modules need from the dispatcher.
type Requester interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string, body any) (json.RawMessage, error)
	Raw(ctx context.Context, path string) (*transport.Response, error)
}

// Transport sends signed requests. *transport.Transport implements it.
type Transport interface {
	auth.Doer
	Raw(ctx context.Context, path string, sessionToken string) (*transport.Response, error)
}

// SessionOpener opens sessions. *auth.Manager implements it.
type SessionOpener interface {
	LoginStored(ctx context.Context, appID string) (*auth.Session, error)
	Logout(ctx context.Context, sessionToken string) error
}

// Access is the authenticated dispatcher. It is safe for concurrent use.
type Access struct {
	tr     Transport
	opener SessionOpener
	appID  string

	logins singleflight.Group

	mu      sync.RWMutex
	session *auth.Session
}

var _ Requester = (*Access)(nil)

// New creates an Access for appID. No request is sent until the first
// call or Open.
func New(tr Transport, opener SessionOpener, appID string) *Access {
	return &Access{
		tr:     tr,
		opener: opener,
		appID:  appID,
	}
}

// Get sends a GET and returns the unwrapped result.
func (a *Access) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return a.call(ctx, http.MethodGet, path, nil)
}

// Post sends a POST with a JSON body.
func (a *Access) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return a.call(ctx, http.MethodPost, path, body)
}

// Put sends a PUT with a JSON body.
func (a *Access) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return a.call(ctx, http.MethodPut, path, body)
}

// Delete sends a DELETE, with a JSON body when body is not nil.
func (a *Access) Delete(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return a.call(ctx, http.MethodDelete, path, body)
}

// Raw sends an authenticated GET whose answer is not an envelope, such as
// a file download. An envelope answer is handled like any other call, and
// any other answer outside 2xx fails with an API_ERROR carrying the status.
func (a *Access) Raw(ctx context.Context, path string) (*transport.Response, error) {
	var raw *transport.Response
	_, err := a.dispatch(ctx, http.MethodGet, path, func(token string) (*transport.Envelope, error) {
		resp, err := a.tr.Raw(ctx, path, token)
		if err != nil {
			return nil, err
		}
		if env, ok := resp.Envelope(); ok && !env.Success {
			return env, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fbxerrors.NewHTTPStatusError(resp.StatusCode)
		}
		raw = resp
		return &transport.Envelope{Success: true}, nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (a *Access) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	env, err := a.dispatch(ctx, method, path, func(token string) (*transport.Envelope, error) {
		return a.tr.Do(ctx, method, path, body, token)
	})
	if err != nil {
		return nil, err
	}
	return env.Result, nil
}

// dispatch runs attempt with a session token. An expired session is
// replaced and the attempt replayed once; a second expiry is returned as
// INVALID_SESSION. Transport failures are never retried.
func (a *Access) dispatch(ctx context.Context, method, path string, attempt func(token string) (*transport.Envelope, error)) (*transport.Envelope, error) {
	token, err := a.ensureSession(ctx, "")
	if err != nil {
		return nil, err
	}

	env, err := attempt(token)
	if err != nil {
		return nil, err
	}
	if env.Success {
		return env, nil
	}
	if !auth.IsSessionExpired(env.ErrorCode) {
		return nil, auth.BoxError(env.ErrorCode, env.Msg)
	}

	log.Debugf("[access] session %s expired on %s %s (%s), logging in again", log.Redact(token), method, path, env.ErrorCode)
	a.invalidate(token)

	token, err = a.ensureSession(ctx, token)
	if err != nil {
		return nil, err
	}

	env, err = attempt(token)
	if err != nil {
		return nil, err
	}
	if env.Success {
		return env, nil
	}
	if auth.IsSessionExpired(env.ErrorCode) {
		a.invalidate(token)
		return nil, fbxerrors.FromBox(fbxerrors.ErrCodeInvalidSession, env.ErrorCode, env.Msg)
	}
	return nil, auth.BoxError(env.ErrorCode, env.Msg)
}

// leaderCancelled marks a login abandoned because the caller that started
// it went away. Other callers waiting on it start their own.
type leaderCancelled struct {
	err error
}

func (e *leaderCancelled) Error() string { return e.err.Error() }
func (e *leaderCancelled) Unwrap() error { return e.err }

// ensureSession returns a usable session token, logging in when there is
// none or when the current one is stale. Logins are shared between
// concurrent callers.
func (a *Access) ensureSession(ctx context.Context, stale string) (string, error) {
	if token := a.currentToken(); token != "" && token != stale {
		return token, nil
	}

	for {
		ch := a.logins.DoChan("login", func() (any, error) {
			if token := a.currentToken(); token != "" && token != stale {
				return token, nil
			}

			session, err := a.opener.LoginStored(ctx, a.appID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &leaderCancelled{err: err}
				}
				return nil, err
			}

			a.mu.Lock()
			a.session = session
			a.mu.Unlock()
			return session.Token, nil
		})

		select {
		case <-ctx.Done():
			return "", fbxerrors.NewTransportError("waiting for login", ctx.Err())
		case res := <-ch:
			if res.Err == nil {
				// A flight started by a caller holding an older token may
				// hand back the very token this caller saw failing.
				if token := res.Val.(string); token != stale {
					return token, nil
				}
				continue
			}
			var cancelled *leaderCancelled
			if errors.As(res.Err, &cancelled) {
				if ctx.Err() == nil {
					continue
				}
				return "", cancelled.err
			}
			return "", res.Err
		}
	}
}

func (a *Access) currentToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// invalidate forgets the session only if it is still the one that failed.
func (a *Access) invalidate(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil && a.session.Token == token {
		a.session = nil
	}
}

// Open logs in now instead of on the first call.
func (a *Access) Open(ctx context.Context) error {
	_, err := a.ensureSession(ctx, "")
	return err
}

// Close logs out and forgets the session.
func (a *Access) Close(ctx context.Context) error {
	token := a.currentToken()
	if token == "" {
		return nil
	}
	err := a.opener.Logout(ctx, token)
	a.invalidate(token)
	return err
}

// LoggedIn reports whether a session is open.
func (a *Access) LoggedIn() bool {
	return a.currentToken() != ""
}

// Permissions returns a copy of the current session permissions, or nil
// without a session.
func (a *Access) Permissions() auth.Permissions {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	perms := make(auth.Permissions, len(a.session.Permissions))
	for k, v := range a.session.Permissions {
		perms[k] = v
	}
	return perms
}

// AppID returns the application id sessions are opened for.
func (a *Access) AppID() string {
	return a.appID
}
