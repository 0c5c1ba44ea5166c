// Package auth establishes and tears down sessions
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

const (
	// DemoPassword is accepted for the customer and admin demo accounts
	DemoPassword = "password"
	// DemoEmail logs in as a customer with any password
	DemoEmail = "demo@example.com"
	// DemoBalance is the starting balance of demo customers
	DemoBalance = 50000

	demoTokenExpiry = 24 * time.Hour
	demoIssuer      = "gripvest-demo"
)

// ErrInvalidCredentials is returned when neither the API nor the demo
// accounts accept the credentials.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)

// Ensure Service implements AuthService
var _ interfaces.AuthService = (*Service)(nil)

// Service implements AuthService
type Service struct {
	client       interfaces.MarketplaceClient
	store        interfaces.StateStore
	demoFallback bool
	demoSecret   []byte
	logger       *common.Logger
	now          func() time.Time
}

// NewService creates a new auth service. Demo accounts are only accepted when
// config enables them outside production.
func NewService(client interfaces.MarketplaceClient, store interfaces.StateStore, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		client:       client,
		store:        store,
		demoFallback: config.DemoFallbackEnabled(),
		demoSecret:   []byte(demoIssuer),
		logger:       logger,
		now:          time.Now,
	}
}

// Login authenticates against the API and stores the session. When the API
// is unreachable the demo accounts are accepted instead, if enabled.
func (s *Service) Login(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &models.ValidationError{Field: "email", Message: "email and password are required"}
	}

	session, err := s.client.Login(ctx, email, password, role)
	if err != nil {
		if !s.useDemo(ctx, err) {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		s.logger.Warn().Err(err).Str("email", email).Msg("API login unavailable, trying demo accounts")
		if session, err = s.demoLogin(email, password, role); err != nil {
			return nil, err
		}
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user", session.User.ID).Str("role", string(session.User.Role)).Str("source", string(session.Source)).Msg("Logged in")
	return session, nil
}

// Signup registers a new customer and stores the session.
func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.client.Signup(ctx, req)
	if err != nil {
		if !s.useDemo(ctx, err) {
			return nil, fmt.Errorf("signup failed: %w", err)
		}
		s.logger.Warn().Err(err).Str("email", req.Email).Msg("API signup unavailable, creating demo account")
		user := &models.User{
			ID:           "user-" + uuid.NewString(),
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Email:        strings.TrimSpace(req.Email),
			Role:         models.RoleUser,
			RiskAppetite: req.RiskLevel,
			Balance:      DemoBalance,
		}
		if session, err = s.demoSession(user); err != nil {
			return nil, err
		}
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user", session.User.ID).Str("source", string(session.Source)).Msg("Signed up")
	return session, nil
}

// Logout removes the stored session and the user's portfolio mirror.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.store.LoadSession(ctx)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn().Err(err).Msg("Failed to read session during logout")
	}
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if id := session.UserID(); id != "" {
		if err := s.store.DeletePortfolio(ctx, id); err != nil {
			return fmt.Errorf("failed to clear portfolio for %s: %w", id, err)
		}
	}
	s.logger.Info().Str("user", session.UserID()).Msg("Logged out")
	return nil
}

// Current returns the stored session. An expired token clears it.
func (s *Service) Current(ctx context.Context) (*models.Session, error) {
	session, err := s.store.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	if session.Expired(s.now()) {
		s.logger.Info().Str("user", session.User.ID).Msg("Session expired")
		if err := s.store.ClearSession(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear expired session")
		}
		return nil, fmt.Errorf("session expired: %w", models.ErrUnauthenticated)
	}
	return session, nil
}

func (s *Service) useDemo(ctx context.Context, err error) bool {
	return s.demoFallback && ctx.Err() == nil && models.IsFallbackEligible(err)
}

func (s *Service) persist(ctx context.Context, session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// demoLogin accepts customer/password, admin/password and demo@example.com
// with any password for the user role.
func (s *Service) demoLogin(email, password string, role models.Role) (*models.Session, error) {
	valid := (email == "customer" && password == DemoPassword && role == models.RoleUser) ||
		(email == "admin" && password == DemoPassword && role == models.RoleAdmin) ||
		(email == DemoEmail && role == models.RoleUser)
	if !valid {
		return nil, ErrInvalidCredentials
	}

	user := &models.User{
		ID:           "user-1",
		FirstName:    "Customer",
		LastName:     "Demo",
		Email:        "customer@example.com",
		Role:         role,
		RiskAppetite: models.RiskModerate,
		Balance:      DemoBalance,
	}
	if role == models.RoleAdmin {
		user.ID, user.FirstName, user.LastName, user.Email = "admin-1", "Admin", "User", "admin@example.com"
		user.Balance = 0
	}
	if email == DemoEmail {
		user.Email = email
	}
	return s.demoSession(user)
}

// demoSession signs a short-lived token so demo sessions expire like API ones.
func (s *Service) demoSession(user *models.User) (*models.Session, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iss":   demoIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(demoTokenExpiry).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.demoSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign demo token: %w", err)
	}
	return &models.Session{
		User:      user,
		Token:     token,
		Source:    models.SessionSourceDemo,
		CreatedAt: now,
	}, nil
}
