package ayuutoclient

import (
	"context"
	"net/http"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// Register creates an account and returns the new session
func (c *Client) Register(ctx context.Context, req validation.RegisterRequest) (*model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, req validation.LoginRequest) (*model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ForgotPassword asks the backend to email a reset OTP
func (c *Client) ForgotPassword(ctx context.Context, req validation.ForgotPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", false, req, nil)
}

// VerifyOTP checks a reset OTP without consuming it
func (c *Client) VerifyOTP(ctx context.Context, req validation.VerifyOTPRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-otp", false, req, nil)
}

// ResetPassword sets a new password using a verified OTP
func (c *Client) ResetPassword(ctx context.Context, req validation.ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", false, req, nil)
}
