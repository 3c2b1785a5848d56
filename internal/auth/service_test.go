package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/brightbasket/storefront-backend/pkg/auth"
	"github.com/brightbasket/storefront-backend/pkg/config"
	"github.com/brightbasket/storefront-backend/pkg/db/models"
	"github.com/brightbasket/storefront-backend/pkg/enums"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
	"github.com/brightbasket/storefront-backend/pkg/logger"
	"github.com/brightbasket/storefront-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	password := "super-secret-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		Name:         "Admin",
		PasswordHash: mustHashPassword(t, password),
		IsAdmin:      true,
	}
	cfg := testJWTConfig()

	svc, sessions := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
	if len(sessions.started) != 1 || sessions.started[0] != claims.ID {
		t.Fatalf("expected session started for jti %q, got %v", claims.ID, sessions.started)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login stamp")
	}
}

func TestServiceLoginWrongPasswordIsGeneric(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "shopper@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
	}
	svc, _ := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("expected generic message, got %q", typed.Message())
	}
}

func TestServiceLoginUnknownEmailIsGeneric(t *testing.T) {
	svc, _ := buildTestService(t, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.User{
		ID:           uuid.New(),
		Email:        "taken@example.com",
		PasswordHash: mustHashPassword(t, "existing-pass"),
	}
	svc, _ := buildTestService(t, existing, testJWTConfig())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Late Comer",
		Email:    "Taken@Example.com",
		Password: "another-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterDuplicateInsertLosingRaceIsConflict(t *testing.T) {
	// Two registrations can both pass the FindByEmail pre-check; the
	// loser's insert trips the unique email index and must still read
	// as a conflict, not an internal error.
	driverErrs := map[string]error{
		"postgres": errors.New(`duplicate key value violates unique constraint "users_email_key"`),
		"sqlite":   errors.New("UNIQUE constraint failed: users.email"),
	}
	for name, driverErr := range driverErrs {
		t.Run(name, func(t *testing.T) {
			svc, err := NewService(ServiceParams{
				UserRepo:       &stubUserRepo{createErr: driverErr},
				SessionManager: &stubSessionManager{},
				JWTConfig:      testJWTConfig(),
				PasswordConfig: config.PasswordConfig{ResetTokenTTL: 15 * time.Minute},
				FrontendURL:    "http://localhost:3000",
				Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
			})
			if err != nil {
				t.Fatalf("build service: %v", err)
			}

			_, err = svc.Register(context.Background(), RegisterRequest{
				Name:     "Racer",
				Email:    "racer@example.com",
				Password: "some-password",
			})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeConflict {
				t.Fatalf("expected conflict for duplicate insert, got %v", err)
			}
			if pkgerrors.MetadataFor(typed.Code()).HTTPStatus != 409 {
				t.Fatalf("expected conflict to map to 409")
			}
		})
	}
}

func TestServiceForgotPasswordUnknownEmailStillAcknowledges(t *testing.T) {
	svc, _ := buildTestService(t, nil, testJWTConfig())

	msg, err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{
		Email: "ghost@example.com",
	})
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if msg != forgotPasswordMessage {
		t.Fatalf("expected generic acknowledgement, got %q", msg)
	}
}

func TestServiceResetPasswordExpiredToken(t *testing.T) {
	token, hash, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("generate reset token: %v", err)
	}
	expired := time.Now().UTC().Add(-time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "slow@example.com",
		PasswordHash:        mustHashPassword(t, "old-password"),
		ResetTokenHash:      &hash,
		ResetTokenExpiresAt: &expired,
	}
	svc, _ := buildTestService(t, user, testJWTConfig())

	err = svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    token,
		Password: "new-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for expired token, got %v", err)
	}
}

func TestServiceResetPasswordReplacesHash(t *testing.T) {
	token, hash, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("generate reset token: %v", err)
	}
	expires := time.Now().UTC().Add(10 * time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "reset@example.com",
		PasswordHash:        mustHashPassword(t, "old-password"),
		ResetTokenHash:      &hash,
		ResetTokenExpiresAt: &expires,
	}
	svc, _ := buildTestService(t, user, testJWTConfig())

	if err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    token,
		Password: "brand-new-password",
	}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	valid, err := security.VerifyPassword("brand-new-password", user.PasswordHash)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !valid {
		t.Fatalf("expected password hash to be replaced")
	}
	if user.ResetTokenHash != nil {
		t.Fatalf("expected reset token to be cleared")
	}
}

func buildTestService(t *testing.T, user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      jwtCfg,
		PasswordConfig: config.PasswordConfig{ResetTokenTTL: 15 * time.Minute},
		FrontendURL:    "http://localhost:3000",
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user      *models.User
	createErr error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.user = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	if s.user == nil {
		return nil, nil
	}
	return []models.User{*s.user}, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

func (s *stubUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.ResetTokenHash = &tokenHash
		s.user.ResetTokenExpiresAt = &expiresAt
	}
	return nil
}

func (s *stubUserRepo) FindByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	if s.user == nil || s.user.ResetTokenHash == nil || *s.user.ResetTokenHash != tokenHash {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) ReplacePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if s.user != nil && s.user.ID == id {
		s.user.PasswordHash = passwordHash
		s.user.ResetTokenHash = nil
		s.user.ResetTokenExpiresAt = nil
	}
	return nil
}

type stubSessionManager struct {
	started []string
	revoked []string
}

func (s *stubSessionManager) Start(ctx context.Context, sessionID string) error {
	s.started = append(s.started, sessionID)
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}
