package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// AuthConfig holds the lifetimes of sessions and password reset artifacts
type AuthConfig struct {
	SessionTTL time.Duration
	OTPTTL     time.Duration
	ResetTTL   time.Duration
}

// AuthService handles login sessions and the OTP password reset flow.
// Sessions, OTP codes and reset tokens all live in the cache with a TTL,
// so nothing leaks when a flow is abandoned.
type AuthService struct {
	users  repositories.UserRepository
	cache  providers.CacheProvider
	mailer providers.Mailer
	cfg    AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, cache providers.CacheProvider, mailer providers.Mailer, cfg AuthConfig) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 10 * time.Minute
	}
	return &AuthService{
		users:  users,
		cache:  cache,
		mailer: mailer,
		cfg:    cfg,
	}
}

type sessionRecord struct {
	UserID string `json:"user_id"`
}

func sessionKey(token string) string {
	return "session:" + token
}

func otpKey(email string) string {
	return "otp:" + email
}

func resetKey(token string) string {
	return "reset:" + token
}

// Login verifies credentials and opens a session, returning its token
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := randomToken()
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to generate session token", err)
	}

	record, err := json.Marshal(sessionRecord{UserID: user.ID})
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to encode session", err)
	}

	if err := s.cache.Set(ctx, sessionKey(token), record, int(s.cfg.SessionTTL.Seconds())); err != nil {
		return nil, "", apperrors.NewInternalError("failed to store session", err)
	}

	return user, token, nil
}

// Logout closes a session
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKey(token))
}

// UserFromSession resolves a session token to its user
func (s *AuthService) UserFromSession(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	data, err := s.cache.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("session expired or invalid")
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.NewUnauthorizedError("session expired or invalid")
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("session expired or invalid")
		}
		return nil, err
	}

	return user, nil
}

// RequestOTP generates a one-time password for the account behind the email
// and delivers it by mail. An unknown email is reported, matching the reset
// form behavior.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := randomOTP()
	if err != nil {
		return apperrors.NewInternalError("failed to generate otp", err)
	}

	if err := s.cache.Set(ctx, otpKey(email), []byte(code), int(s.cfg.OTPTTL.Seconds())); err != nil {
		return apperrors.NewInternalError("failed to store otp", err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return apperrors.NewExternalError("failed to send otp mail", err)
	}

	observability.LoggerFromContext(ctx).Info().Str("email", email).Msg("otp issued")
	return nil
}

// VerifyOTP checks a one-time password and exchanges it for a short-lived
// reset token. The OTP is single use.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	stored, err := s.cache.Get(ctx, otpKey(email))
	if err != nil || string(stored) != code {
		return "", apperrors.NewUnauthorizedError("invalid or expired otp")
	}

	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to drop consumed otp")
	}

	token, err := randomToken()
	if err != nil {
		return "", apperrors.NewInternalError("failed to generate reset token", err)
	}

	if err := s.cache.Set(ctx, resetKey(token), []byte(email), int(s.cfg.ResetTTL.Seconds())); err != nil {
		return "", apperrors.NewInternalError("failed to store reset token", err)
	}

	return token, nil
}

// ResetPassword sets a new password for the account behind a reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 6 {
		return apperrors.NewValidationError("password must be at least 6 characters")
	}

	email, err := s.cache.Get(ctx, resetKey(token))
	if err != nil {
		return apperrors.NewUnauthorizedError("invalid or expired reset token")
	}

	user, err := s.users.GetByEmail(ctx, string(email))
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, resetKey(token)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to drop consumed reset token")
	}

	return nil
}

func randomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func randomOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
