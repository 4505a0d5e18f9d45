package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coralbay/estate/internal/auth"
	"coralbay/estate/internal/config"
	"coralbay/estate/internal/models"
)

// ErrUnknownManagerCode is returned when a manager login code is not configured.
var ErrUnknownManagerCode = errors.New("unknown manager code")

// IAuthService defines the interface for portal logins.
type IAuthService interface {
	LoginAgent(ctx context.Context, accessCode string) (*models.Actor, string, error)
	LoginManager(ctx context.Context, accessCode string) (*models.Actor, string, error)
}

// authService implements IAuthService. Access codes are compared, never
// stored; the issued JWT is the only session artifact.
type authService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) IAuthService {
	return &authService{cfg: cfg}
}

// LoginAgent accepts any access code of the configured minimum length.
// The code doubles as the agent's stable identity.
func (s *authService) LoginAgent(_ context.Context, accessCode string) (*models.Actor, string, error) {
	accessCode = strings.TrimSpace(accessCode)
	if len(accessCode) < s.cfg.AgentCodeMinLength {
		return nil, "", &ValidationError{
			Field:  "access_code",
			Reason: fmt.Sprintf("must be at least %d characters", s.cfg.AgentCodeMinLength),
		}
	}

	actor := &models.Actor{
		ID:   accessCode,
		Name: "Agent " + accessCode,
		Role: models.RoleAgent,
	}
	return s.issue(actor)
}

// LoginManager accepts only configured manager codes.
func (s *authService) LoginManager(_ context.Context, accessCode string) (*models.Actor, string, error) {
	accessCode = strings.TrimSpace(accessCode)
	name, ok := s.cfg.ManagerCodes[accessCode]
	if !ok {
		return nil, "", ErrUnknownManagerCode
	}

	actor := &models.Actor{
		ID:   accessCode,
		Name: name,
		Role: models.RoleManager,
	}
	return s.issue(actor)
}

func (s *authService) issue(actor *models.Actor) (*models.Actor, string, error) {
	token, err := auth.GenerateToken(*actor, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return actor, token, nil
}
