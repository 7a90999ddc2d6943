package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/roles"
	"github.com/warebase/server/internal/validation"
)

// OrganizationChecker and RoleChecker are satisfied by the organizations and
// roles repositories. Only existence is needed here.
type OrganizationChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type RoleChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo     Repository
	orgs     OrganizationChecker
	roles    RoleChecker
	recorder *audit.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, orgs OrganizationChecker, roleChecker RoleChecker, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		roles:    roleChecker,
		recorder: recorder,
		validate: validation.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

type CreateParams struct {
	Username       string `json:"username" validate:"required,min=3,max=100"`
	Password       string `json:"password" validate:"required,min=8,max=128"`
	Email          string `json:"email" validate:"required,email,max=255"`
	FullName       string `json:"full_name" validate:"required,min=1,max=200"`
	Active         *bool  `json:"active"`
	OrganizationID *int64 `json:"organization_id" validate:"omitempty,gt=0"`
	RoleID         *int64 `json:"role_id" validate:"omitempty,gt=0"`
}

type UpdateParams struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=100"`
	Password       *string `json:"password" validate:"omitempty,min=8,max=128"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	FullName       *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Active         *bool   `json:"active"`
	OrganizationID *int64  `json:"organization_id" validate:"omitempty,gt=0"`
	RoleID         *int64  `json:"role_id" validate:"omitempty,gt=0"`
}

func (s *Service) List(ctx context.Context, filters Filters) ([]User, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(params.Username)
	if existing, err := s.repo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if err := s.checkReferences(ctx, params.OrganizationID, params.RoleID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if params.Active != nil {
		active = *params.Active
	}

	created, err := s.repo.Create(ctx, User{
		Username:       username,
		PasswordHash:   hash,
		Email:          strings.ToLower(strings.TrimSpace(params.Email)),
		FullName:       strings.TrimSpace(params.FullName),
		Active:         active,
		OrganizationID: params.OrganizationID,
		RoleID:         params.RoleID,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "user.created",
		EntityType:     "user",
		EntityID:       strconv.FormatInt(created.ID, 10),
		OrganizationID: created.OrganizationID,
		Details:        map[string]interface{}{"username": created.Username, "active": created.Active},
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*User, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		username := strings.TrimSpace(*params.Username)
		if username != existing.Username {
			if other, err := s.repo.GetByUsername(ctx, username); err == nil && other != nil && other.ID != id {
				return nil, ErrUsernameTaken
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("check username: %w", err)
			}
		}
		existing.Username = username
	}
	if params.Password != nil {
		hash, err := auth.HashPassword(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = hash
	}
	if params.Email != nil {
		existing.Email = strings.ToLower(strings.TrimSpace(*params.Email))
	}
	if params.FullName != nil {
		existing.FullName = strings.TrimSpace(*params.FullName)
	}
	if params.Active != nil {
		existing.Active = *params.Active
	}
	if err := s.checkReferences(ctx, params.OrganizationID, params.RoleID); err != nil {
		return nil, err
	}
	if params.OrganizationID != nil {
		existing.OrganizationID = params.OrganizationID
	}
	if params.RoleID != nil {
		existing.RoleID = params.RoleID
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "user.updated",
		EntityType:     "user",
		EntityID:       strconv.FormatInt(updated.ID, 10),
		OrganizationID: updated.OrganizationID,
		Details:        map[string]interface{}{"username": updated.Username, "active": updated.Active},
	})
	return updated, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords both surface as ErrInvalidCredentials so callers cannot probe for
// account existence.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *Service) checkReferences(ctx context.Context, orgID, roleID *int64) error {
	if orgID != nil {
		ok, err := s.orgs.Exists(ctx, *orgID)
		if err != nil {
			return fmt.Errorf("check organization: %w", err)
		}
		if !ok {
			return fmt.Errorf("organization %d: %w", *orgID, organizations.ErrNotFound)
		}
	}
	if roleID != nil {
		ok, err := s.roles.Exists(ctx, *roleID)
		if err != nil {
			return fmt.Errorf("check role: %w", err)
		}
		if !ok {
			return fmt.Errorf("role %d: %w", *roleID, roles.ErrNotFound)
		}
	}
	return nil
}
