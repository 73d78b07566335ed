package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/credentials"
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

const (
	defaultPollInterval    = time.Second
	defaultPollMaxInterval = 5 * time.Second
	defaultRegisterTimeout = 2 * time.Minute
)

// Options tunes registration polling and login.
type Options struct {
	// PollInterval is the first delay between two status checks.
	PollInterval time.Duration
	// PollMaxInterval caps the exponential backoff.
	PollMaxInterval time.Duration
	// RegisterTimeout bounds the whole poll.
	RegisterTimeout time.Duration
	// LoginTimeout bounds one login exchange. Zero means no extra bound.
	LoginTimeout time.Duration
}

// OptionsFromConfig reads the [auth] section.
func OptionsFromConfig(cfg *config.AuthConfig) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		PollInterval:    cfg.PollInterval(),
		PollMaxInterval: cfg.PollMaxInterval(),
		RegisterTimeout: cfg.RegisterTimeout(),
		LoginTimeout:    cfg.LoginTimeout(),
	}
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.PollMaxInterval <= 0 {
		o.PollMaxInterval = defaultPollMaxInterval
	}
	if o.PollMaxInterval < o.PollInterval {
		o.PollMaxInterval = o.PollInterval
	}
	if o.RegisterTimeout <= 0 {
		o.RegisterTimeout = defaultRegisterTimeout
	}
	return o
}

// Manager runs the registration handshake and opens sessions.
//
// Manager is safe for concurrent use. At most one registration per
// app_id and one poll per track_id run at a time.
type Manager struct {
	doer  Doer
	store credentials.Store
	opts  Options

	mu sync.Mutex
	// pending maps app_id to the track_id of a registration not yet
	// answered.
	pending map[string]int
	polling map[int]struct{}
	tokens  map[int]string
}

// NewManager creates a Manager sending requests through doer and keeping
// the app token in store.
func NewManager(doer Doer, store credentials.Store, opts Options) *Manager {
	return &Manager{
		doer:    doer,
		store:   store,
		opts:    opts.withDefaults(),
		pending: make(map[string]int),
		polling: make(map[int]struct{}),
		tokens:  make(map[int]string),
	}
}

// Store returns the credential store.
func (m *Manager) Store() credentials.Store {
	return m.store
}

// Register asks the box for an app token. The token is saved before
// Register returns; the registration then waits for the user to answer
// on the box, see PollRegistration.
func (m *Manager) Register(ctx context.Context, id Identity) (Registration, error) {
	if err := config.ValidateValue(id, "app"); err != nil {
		return Registration{}, fbxerrors.NewValidationError("invalid app identity", err)
	}

	m.mu.Lock()
	if trackID, ok := m.pending[id.AppID]; ok {
		m.mu.Unlock()
		return Registration{}, fbxerrors.Wrap(fbxerrors.ErrCodeRegistrationInFlight,
			fmt.Sprintf("registration of %s is already pending (track_id=%d)", id.AppID, trackID), nil)
	}
	m.pending[id.AppID] = 0
	m.mu.Unlock()

	reg, err := m.authorize(ctx, id)
	if err != nil {
		m.mu.Lock()
		delete(m.pending, id.AppID)
		m.mu.Unlock()
		return Registration{}, err
	}

	m.mu.Lock()
	m.pending[id.AppID] = reg.TrackID
	m.tokens[reg.TrackID] = reg.AppToken
	m.mu.Unlock()

	log.Infof("Registration of %s requested (track_id=%d), confirm it on the box front panel", id.AppID, reg.TrackID)

	if err := m.store.Save(credentials.Record{AppToken: reg.AppToken, TrackID: reg.TrackID, AppDesc: id}); err != nil {
		m.release(reg.TrackID)
		return reg, err
	}
	return reg, nil
}

func (m *Manager) authorize(ctx context.Context, id Identity) (Registration, error) {
	env, err := m.doer.Do(ctx, http.MethodPost, "login/authorize/", id, "")
	if err != nil {
		return Registration{}, err
	}
	if !env.Success {
		return Registration{}, BoxError(env.ErrorCode, env.Msg)
	}

	var reg Registration
	if err := env.Decode(&reg); err != nil {
		return Registration{}, err
	}
	if reg.AppToken == "" {
		return Registration{}, fbxerrors.NewAPIError("invalid_response", "authorization answer without app_token")
	}
	return reg, nil
}

// PollRegistration waits until the user answers the registration request.
// Only a "granted" answer yields OutcomeGranted. When RegisterTimeout
// elapses first the outcome is OutcomeTimedOut. Cancelling ctx abandons
// the poll with a REGISTRATION_PENDING error; the registration itself
// stays pending and may be polled again.
func (m *Manager) PollRegistration(ctx context.Context, trackID int) (Outcome, error) {
	m.mu.Lock()
	if _, ok := m.polling[trackID]; ok {
		m.mu.Unlock()
		return Outcome{}, fbxerrors.Wrap(fbxerrors.ErrCodeRegistrationInFlight,
			fmt.Sprintf("track_id %d is already being polled", trackID), nil)
	}
	m.polling[trackID] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.polling, trackID)
		m.mu.Unlock()
	}()

	pollCtx, cancel := context.WithTimeout(ctx, m.opts.RegisterTimeout)
	defer cancel()

	interval := m.opts.PollInterval
	path := fmt.Sprintf("login/authorize/%d", trackID)

	for {
		status, err := m.authorizationStatus(pollCtx, path)
		if err != nil {
			if pollCtx.Err() != nil {
				return m.pollInterrupted(ctx, trackID)
			}
			if fbxerrors.BoxCodeOf(err) == BoxCodeNoEnt {
				return m.finish(trackID, OutcomeTimedOut), nil
			}
			m.release(trackID)
			return Outcome{}, err
		}

		log.Debugf("Registration track_id=%d status: %s", trackID, status)

		switch status {
		case StatusGranted:
			return m.finish(trackID, OutcomeGranted), nil
		case StatusDenied:
			return m.finish(trackID, OutcomeDenied), nil
		case StatusTimeout, StatusUnknown:
			return m.finish(trackID, OutcomeTimedOut), nil
		case StatusPending:
		default:
			log.Warnf("Unexpected registration status %q, still waiting", status)
		}

		timer := time.NewTimer(interval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return m.pollInterrupted(ctx, trackID)
		case <-timer.C:
		}

		interval *= 2
		if interval > m.opts.PollMaxInterval {
			interval = m.opts.PollMaxInterval
		}
	}
}

func (m *Manager) authorizationStatus(ctx context.Context, path string) (AuthorizationStatus, error) {
	env, err := m.doer.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", BoxError(env.ErrorCode, env.Msg)
	}
	var result authorizeStatusResult
	if err := env.Decode(&result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// pollInterrupted tells a caller cancellation from the poll deadline.
func (m *Manager) pollInterrupted(ctx context.Context, trackID int) (Outcome, error) {
	if ctx.Err() != nil {
		return Outcome{}, fbxerrors.Wrap(fbxerrors.ErrCodeRegistrationPending,
			fmt.Sprintf("stopped waiting for track_id %d", trackID), ctx.Err())
	}
	return m.finish(trackID, OutcomeTimedOut), nil
}

// release drops the in-flight marks of a registration and returns its
// app token, if still known.
func (m *Manager) release(trackID int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := m.tokens[trackID]
	delete(m.tokens, trackID)
	for appID, pendingID := range m.pending {
		if pendingID == trackID {
			delete(m.pending, appID)
		}
	}
	return token
}

func (m *Manager) finish(trackID int, status OutcomeStatus) Outcome {
	token := m.release(trackID)

	if status != OutcomeGranted {
		return Outcome{Status: status}
	}
	if token == "" {
		if rec, ok := m.store.Load(); ok && rec.TrackID == trackID {
			token = rec.AppToken
		}
	}
	return Outcome{Status: OutcomeGranted, AppToken: token}
}

// Authorize registers the application and waits for the answer. A denied
// or expired request forgets the stored token.
func (m *Manager) Authorize(ctx context.Context, id Identity) (Registration, error) {
	reg, err := m.Register(ctx, id)
	if err != nil {
		return Registration{}, err
	}

	outcome, err := m.PollRegistration(ctx, reg.TrackID)
	if err != nil {
		return reg, err
	}

	switch outcome.Status {
	case OutcomeGranted:
		log.Infof("Registration of %s granted", id.AppID)
		return reg, nil
	case OutcomeDenied:
		m.forget()
		return reg, fbxerrors.ErrRegistrationDenied
	default:
		m.forget()
		return reg, fbxerrors.ErrRegistrationTimedOut
	}
}

func (m *Manager) forget() {
	if err := m.store.Clear(); err != nil {
		log.Warnf("Failed to forget rejected app token: %v", err)
	}
}

// Login opens a session with a fresh challenge. An empty appToken fails
// with AUTH_REQUIRED without contacting the box.
func (m *Manager) Login(ctx context.Context, appID, appToken string) (*Session, error) {
	if appToken == "" {
		return nil, fbxerrors.New(fbxerrors.ErrCodeAuthRequired, "application is not registered")
	}

	if m.opts.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.LoginTimeout)
		defer cancel()
	}

	env, err := m.doer.Do(ctx, http.MethodGet, "login/", nil, "")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, BoxError(env.ErrorCode, env.Msg)
	}
	var challenge challengeResult
	if err := env.Decode(&challenge); err != nil {
		return nil, err
	}
	if challenge.Challenge == "" {
		return nil, fbxerrors.NewAPIError("invalid_response", "login answer without challenge")
	}

	password := Password(appToken, challenge.Challenge)
	log.Debugf("Opening session for %s with app token %s", appID, log.Redact(appToken))

	env, err = m.doer.Do(ctx, http.MethodPost, "login/session/", sessionRequest{AppID: appID, Password: password}, "")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, BoxError(env.ErrorCode, env.Msg)
	}
	var result sessionResult
	if err := env.Decode(&result); err != nil {
		return nil, err
	}
	if result.SessionToken == "" {
		return nil, fbxerrors.NewAPIError("invalid_response", "session answer without session_token")
	}

	log.Debugf("Session %s opened, permissions: %v", log.Redact(result.SessionToken), result.Permissions.Granted())

	return &Session{
		Token:       result.SessionToken,
		Permissions: result.Permissions,
		Challenge:   result.Challenge,
	}, nil
}

// LoginStored opens a session with the stored app token.
func (m *Manager) LoginStored(ctx context.Context, appID string) (*Session, error) {
	rec, ok := m.store.Load()
	if !ok {
		return nil, fbxerrors.New(fbxerrors.ErrCodeAuthRequired, "application is not registered")
	}
	if rec.AppDesc.AppID != "" && rec.AppDesc.AppID != appID {
		return nil, fbxerrors.New(fbxerrors.ErrCodeAuthRequired,
			fmt.Sprintf("stored app token belongs to %s, register %s first", rec.AppDesc.AppID, appID))
	}
	return m.Login(ctx, appID, rec.AppToken)
}

// Logout closes the session. Closing an already expired session is not
// an error.
func (m *Manager) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	env, err := m.doer.Do(ctx, http.MethodPost, "login/logout/", nil, sessionToken)
	if err != nil {
		return err
	}
	if !env.Success {
		if IsSessionExpired(env.ErrorCode) {
			return nil
		}
		return BoxError(env.ErrorCode, env.Msg)
	}
	return nil
}

// Check reports the registration status of a track without waiting.
func (m *Manager) Check(ctx context.Context, trackID int) (AuthorizationStatus, error) {
	return m.authorizationStatus(ctx, fmt.Sprintf("login/authorize/%d", trackID))
}

var _ Doer = (*transport.Transport)(nil)

// IsRegistrationError reports whether err ends a registration attempt.
func IsRegistrationError(err error) bool {
	return errors.Is(err, fbxerrors.ErrRegistrationDenied) || errors.Is(err, fbxerrors.ErrRegistrationTimedOut)
}
