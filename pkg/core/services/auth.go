package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// Register creates an account and stores the resulting session
func Register(ctx context.Context, api AuthAPI, sessions SessionStore, logger *zap.Logger, req validation.RegisterRequest) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	logger.Debug("Registering account", zap.String("email", req.Email))

	sess, err := api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	return storeSession(sessions, logger, sess)
}

// Login signs in and stores the resulting session
func Login(ctx context.Context, api AuthAPI, sessions SessionStore, logger *zap.Logger, req validation.LoginRequest) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	logger.Debug("Logging in", zap.String("email", req.Email))

	sess, err := api.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	return storeSession(sessions, logger, sess)
}

func storeSession(sessions SessionStore, logger *zap.Logger, sess *model.Session) (*model.User, error) {
	if sess == nil || sess.Token == "" {
		return nil, fmt.Errorf("backend returned no session token")
	}
	if err := sessions.Save(*sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Debug("Session saved", zap.String("user_id", sess.User.ID))
	return &sess.User, nil
}

// Logout forgets the stored session. The backend keeps no session state.
func Logout(sessions SessionStore, logger *zap.Logger) error {
	if err := sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logger.Debug("Session cleared")
	return nil
}

// RequestPasswordReset asks the backend to email a reset code
func RequestPasswordReset(ctx context.Context, api AuthAPI, logger *zap.Logger, email string) error {
	req := validation.ForgotPasswordRequest{Email: normalizeEmail(email)}
	if err := validation.Struct(req); err != nil {
		return err
	}

	logger.Debug("Requesting password reset", zap.String("email", req.Email))
	if err := api.ForgotPassword(ctx, req); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

// VerifyResetOTP checks a reset code before the new password is chosen
func VerifyResetOTP(ctx context.Context, api AuthAPI, logger *zap.Logger, email, otp string) error {
	req := validation.VerifyOTPRequest{Email: normalizeEmail(email), OTP: strings.TrimSpace(otp)}
	if err := validation.Struct(req); err != nil {
		return err
	}

	logger.Debug("Verifying reset code", zap.String("email", req.Email))
	if err := api.VerifyOTP(ctx, req); err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	return nil
}

// ResetPassword sets a new password with a verified code
func ResetPassword(ctx context.Context, api AuthAPI, logger *zap.Logger, req validation.ResetPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if err := validation.Struct(req); err != nil {
		return err
	}

	logger.Debug("Resetting password", zap.String("email", req.Email))
	if err := api.ResetPassword(ctx, req); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
