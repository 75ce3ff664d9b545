// Package portal holds the view controllers of the client portal: auth
// flows, the client dashboard, the admin console and the library.
package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

const connectionFailed = "Connection failed. Please try again."

var (
	// ErrValidation is returned when local input checks fail. The user has
	// already been shown the reason.
	ErrValidation = errors.New("invalid input")

	// ErrNoPendingSignup is returned by VerifyOTP when no signup is waiting
	// for its code.
	ErrNoPendingSignup = errors.New("no pending signup")
)

// AuthAPI is the slice of the API the auth flows need.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (*apiclient.LoginResult, error)
	AdminLogin(ctx context.Context, req model.AdminLoginRequest) (*apiclient.LoginResult, error)
	Signup(ctx context.Context, req model.SignupRequest) (string, error)
	SendOTP(ctx context.Context, req model.OTPSendRequest) error
	VerifyOTP(ctx context.Context, req model.OTPVerifyRequest) (string, error)
}

// Auth runs login, admin login and the two-step signup.
type Auth struct {
	api   AuthAPI
	repo  session.Repository
	nav   ui.Navigator
	notes ui.Notifier
	log   zerolog.Logger

	mu      sync.Mutex
	pending *model.SignupRequest
}

// NewAuth creates the auth flows.
func NewAuth(api AuthAPI, repo session.Repository, nav ui.Navigator, notes ui.Notifier, log zerolog.Logger) *Auth {
	return &Auth{
		api:   api,
		repo:  repo,
		nav:   nav,
		notes: notes,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

// Login authenticates a client user, stores the token and display name and
// moves to the dashboard.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	req := model.LoginRequest{Email: email, Password: password}
	if err := validator.Struct(req); err != nil {
		a.notes.Error("Please fill in all fields")
		return ErrValidation
	}

	res, err := a.api.Login(ctx, req)
	if err != nil {
		a.log.Warn().Err(err).Str("email", email).Msg("Login failed")
		a.notes.Error(apiclient.Describe(err, "Invalid credentials", connectionFailed))
		return fmt.Errorf("login: %w", err)
	}

	if err := a.repo.Set(ctx, session.KindUser, res.Token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if err := a.repo.SetDisplayName(ctx, res.Name); err != nil {
		return fmt.Errorf("store display name: %w", err)
	}

	a.log.Info().Str("email", email).Msg("User logged in")
	a.notes.Success(fmt.Sprintf("Welcome back, %s!", res.Name))
	ui.NavigatorFrom(ctx, a.nav).Navigate(session.KindUser.HomePath())
	return nil
}

// AdminLogin authenticates an advisor and moves to the admin console.
func (a *Auth) AdminLogin(ctx context.Context, email, password string) error {
	req := model.AdminLoginRequest{Email: email, Password: password}
	if err := validator.Struct(req); err != nil {
		a.notes.Error("Please fill in all fields")
		return ErrValidation
	}

	res, err := a.api.AdminLogin(ctx, req)
	if err != nil {
		a.log.Warn().Err(err).Str("email", email).Msg("Admin login failed")
		a.notes.Error(apiclient.Describe(err, "Invalid credentials", connectionFailed))
		return fmt.Errorf("admin login: %w", err)
	}

	if err := a.repo.Set(ctx, session.KindAdmin, res.Token); err != nil {
		return fmt.Errorf("store admin session: %w", err)
	}

	a.log.Info().Str("email", email).Msg("Admin logged in")
	a.notes.Success(fmt.Sprintf("Welcome back, %s!", res.Name))
	ui.NavigatorFrom(ctx, a.nav).Navigate(session.KindAdmin.HomePath())
	return nil
}

// Signup registers the account and requests a one-time code. The form is
// kept until VerifyOTP completes it.
func (a *Auth) Signup(ctx context.Context, req model.SignupRequest) error {
	if err := validator.Struct(req); err != nil {
		a.notes.Error("Name, email & password are required")
		return ErrValidation
	}

	if _, err := a.api.Signup(ctx, req); err != nil {
		a.log.Warn().Err(err).Str("email", req.Email).Msg("Signup failed")
		a.notes.Error(apiclient.Describe(err, "Signup failed", connectionFailed))
		return fmt.Errorf("signup: %w", err)
	}

	err := a.api.SendOTP(ctx, model.OTPSendRequest{Email: req.Email, Phone: req.Phone})
	if err != nil {
		a.log.Warn().Err(err).Str("email", req.Email).Msg("Send OTP failed")
		if apiclient.IsFailure(err) {
			a.notes.Error("Failed to send OTP")
		} else {
			a.notes.Error(connectionFailed)
		}
		return fmt.Errorf("send otp: %w", err)
	}

	a.mu.Lock()
	a.pending = &req
	a.mu.Unlock()

	a.log.Info().Str("email", req.Email).Msg("OTP sent")
	a.notes.Success("OTP sent to your email/phone!")
	return nil
}

// PendingSignup returns the signup waiting for its code, if any.
func (a *Auth) PendingSignup() (model.SignupRequest, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return model.SignupRequest{}, false
	}
	return *a.pending, true
}

// VerifyOTP completes the pending signup with the delivered code.
func (a *Auth) VerifyOTP(ctx context.Context, otp string) error {
	a.mu.Lock()
	pending := a.pending
	a.mu.Unlock()

	req := model.OTPVerifyRequest{OTP: otp}
	if err := validator.Struct(req); err != nil {
		a.notes.Error("Enter valid 6-digit OTP")
		return ErrValidation
	}
	if pending == nil {
		return ErrNoPendingSignup
	}
	req.Email = pending.Email
	req.Name = pending.Name
	req.Password = pending.Password
	req.Phone = pending.Phone

	if _, err := a.api.VerifyOTP(ctx, req); err != nil {
		a.log.Warn().Err(err).Str("email", req.Email).Msg("OTP verification failed")
		a.notes.Error(apiclient.Describe(err, "Invalid OTP", "Verification failed"))
		return fmt.Errorf("verify otp: %w", err)
	}

	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()

	a.log.Info().Str("email", req.Email).Msg("Account verified")
	a.notes.Success("Account verified successfully!")
	ui.NavigatorFrom(ctx, a.nav).Navigate(session.KindUser.LoginPath())
	return nil
}
