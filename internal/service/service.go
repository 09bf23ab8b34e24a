package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/openlearn/auth-service/internal/config"
	"github.com/openlearn/auth-service/internal/crypto"
	"github.com/openlearn/auth-service/internal/model"
	"github.com/openlearn/auth-service/internal/store"
	"github.com/openlearn/auth-service/internal/token"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type AuthService struct {
	store *store.Store
	cfg   config.Config
}

func NewAuthService(st *store.Store, cfg config.Config) *AuthService {
	return &AuthService{store: st, cfg: cfg}
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (string, *model.Admin, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", nil, lookupErr(err)
	}
	if err := s.checkAccount(admin.PasswordHash, admin.IsActive, password); err != nil {
		return "", nil, err
	}

	s.stampLastLogin(ctx, model.KindAdmin, admin)
	tok, err := s.issue(admin.ID, admin.Role)
	if err != nil {
		return "", nil, err
	}
	return tok, admin, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *model.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, lookupErr(err)
	}
	if err := s.checkAccount(user.PasswordHash, user.IsActive, password); err != nil {
		return "", nil, err
	}

	s.stampLastLogin(ctx, model.KindUser, user)
	tok, err := s.issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return tok, user, nil
}

func (s *AuthService) checkAccount(passwordHash string, isActive bool, password string) error {
	if err := crypto.CheckPassword(passwordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	if !isActive {
		return ErrAccountInactive
	}
	return nil
}

// stampLastLogin is best-effort: a failed timestamp write never aborts a login.
func (s *AuthService) stampLastLogin(ctx context.Context, kind model.Kind, principal model.Principal) {
	now := time.Now().UTC()
	if err := s.store.UpdateLastLogin(ctx, kind, principal.PrincipalID(), now); err != nil {
		log.Printf("last login update failed for %s %s: %v", kind, principal.PrincipalID(), err)
		return
	}
	switch p := principal.(type) {
	case *model.Admin:
		p.LastLogin = &now
	case *model.User:
		p.LastLogin = &now
	}
}

func (s *AuthService) issue(principalID string, role model.Role) (string, error) {
	tok, err := token.New(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.TokenTTL, principalID, role)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

func validateCredentials(email, password string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return &ValidationError{Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Message: "Invalid email format"}
	}
	if password == "" {
		return &ValidationError{Message: "Password is required"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Message: "Password must be at least 8 characters long"}
	}
	return nil
}

func lookupErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
