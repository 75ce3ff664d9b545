package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/response"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

// credentialsRequest carries login input. Emptiness is judged by the auth
// flow so the user sees its message.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type otpRequest struct {
	OTP string `json:"otp"`
}

// AuthHandler handles login, signup and logout.
type AuthHandler struct {
	responder
	auth *portal.Auth
	gate *session.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *portal.Auth, gate *session.Gate, notices *ui.Recorder) *AuthHandler {
	return &AuthHandler{
		responder: responder{notices: notices},
		auth:      auth,
		gate:      gate,
	}
}

// Login godoc
// POST /login
// Authenticates a client user against the remote API and stores the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.auth.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{})
}

// AdminLogin godoc
// POST /admin-login
// Authenticates an advisor and stores the admin session.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req credentialsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{})
}

// Signup godoc
// POST /signup
// Registers an account and requests a one-time code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	err := h.auth.Signup(c.Request.Context(), model.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusAccepted, gin.H{"otp_pending": true})
}

// VerifyOTP godoc
// POST /signup/verify
// Completes the pending signup.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	if err := h.auth.VerifyOTP(c.Request.Context(), req.OTP); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{})
}

// Logout godoc
// POST /logout
// Clears the client session locally. The API is not called.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.logout(c, session.KindUser)
}

// AdminLogout godoc
// POST /admin-logout
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	h.logout(c, session.KindAdmin)
}

func (h *AuthHandler) logout(c *gin.Context, kind session.Kind) {
	if err := h.gate.Logout(c.Request.Context(), kind); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{})
}
