// Package auth drives login and registration against the remote service and
// populates the session store on success.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/RaufunNazin/Highlighter/internal/gateway"
	"github.com/RaufunNazin/Highlighter/internal/logging"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

// State is the auth flow lifecycle. Failure is not a resting state: a failed
// submission returns the flow to StateIdle so the user can retry.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
)

var (
	// ErrPasswordMismatch is returned by Register before any request when the
	// two password fields differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrSubmissionInFlight is returned when a login or registration is
	// already being submitted.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// RegisterInput carries the registration form fields. Role defaults to the
// regular-user role when zero.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            int
}

const defaultRole = 2

type Flow struct {
	gw     *gateway.Client
	store  *session.Store
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

func NewFlow(gw *gateway.Client, store *session.Store, logger *slog.Logger) *Flow {
	return &Flow{
		gw:     gw,
		store:  store,
		logger: logging.WithComponent(logger, "auth"),
		state:  StateIdle,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Login exchanges credentials for a token and stores it, then fetches the
// profile best-effort. A profile fetch failure does not roll back the token;
// login is still considered successful.
func (f *Flow) Login(ctx context.Context, username, password string) error {
	if err := f.enterSubmitting(); err != nil {
		return err
	}

	resp, err := f.gw.Login(ctx, username, password)
	if err != nil {
		f.setState(StateIdle)
		return err
	}

	return f.completeAuth(ctx, resp)
}

// Register validates that the password fields match before any request is
// issued, then follows the same token+profile sequence as Login.
func (f *Flow) Register(ctx context.Context, input RegisterInput) error {
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if err := f.enterSubmitting(); err != nil {
		return err
	}

	role := input.Role
	if role == 0 {
		role = defaultRole
	}

	resp, err := f.gw.Register(ctx, gateway.RegisterRequest{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		f.setState(StateIdle)
		return err
	}

	return f.completeAuth(ctx, resp)
}

// Logout clears the token and profile atomically.
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	return f.store.Clear(ctx)
}

func (f *Flow) completeAuth(ctx context.Context, resp *gateway.TokenResponse) error {
	if err := f.store.SetCredentials(ctx, resp.AccessToken, resp.User); err != nil {
		f.setState(StateIdle)
		return err
	}

	// The profile fetch is best-effort: its failure never rolls back the token.
	if profile, err := f.gw.Me(ctx); err != nil {
		f.logger.Warn("profile fetch failed after auth", "error", err)
	} else if err := f.store.SetUser(ctx, profile); err != nil {
		f.logger.Warn("profile store failed after auth", "error", err)
	}

	f.setState(StateSucceeded)
	f.logger.Info("authenticated", "token", logging.SanitizeToken(resp.AccessToken))
	return nil
}

func (f *Flow) enterSubmitting() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	f.state = StateSubmitting
	return nil
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
