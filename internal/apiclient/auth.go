package apiclient

import (
	"context"
	"net/http"

	"github.com/eliteadvisers/portal/internal/model"
)

// LoginResult is what a successful login yields.
type LoginResult struct {
	Name  string
	Token string
}

type loginResponse struct {
	Name     string `json:"name"`
	JWTToken string `json:"jwtToken" binding:"required"`
}

type adminLoginResponse struct {
	Name     string `json:"name"`
	Token    string `json:"token" binding:"required_without=JWTToken"`
	JWTToken string `json:"jwtToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	User *model.Profile `json:"user" binding:"required"`
}

// Login authenticates a client user. POST /auth/login
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*LoginResult, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &LoginResult{Name: out.Name, Token: out.JWTToken}, nil
}

// AdminLogin authenticates an advisor. POST /admin/login
func (c *Client) AdminLogin(ctx context.Context, req model.AdminLoginRequest) (*LoginResult, error) {
	var out adminLoginResponse
	if err := c.do(ctx, http.MethodPost, "/admin/login", "", req, &out); err != nil {
		return nil, err
	}
	token := out.Token
	if token == "" {
		token = out.JWTToken
	}
	return &LoginResult{Name: out.Name, Token: token}, nil
}

// Signup registers a client user. POST /auth/signup
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SendOTP asks for a verification code. POST /api/otp/send-otp
func (c *Client) SendOTP(ctx context.Context, req model.OTPSendRequest) error {
	return c.do(ctx, http.MethodPost, "/api/otp/send-otp", "", req, nil)
}

// VerifyOTP completes registration. POST /api/otp/verify-otp
func (c *Client) VerifyOTP(ctx context.Context, req model.OTPVerifyRequest) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/otp/verify-otp", "", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Me loads the caller's profile. GET /auth/me
func (c *Client) Me(ctx context.Context, token string) (*model.Profile, error) {
	var out meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile saves the caller's profile. PUT /auth/profile
func (c *Client) UpdateProfile(ctx context.Context, token string, form model.ProfileForm) error {
	return c.do(ctx, http.MethodPut, "/auth/profile", token, form, nil)
}
