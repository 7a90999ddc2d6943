package roles

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/sanitize"
	"github.com/warebase/server/internal/validation"
)

type Service struct {
	repo     Repository
	recorder *audit.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		validate: validation.New(),
		logger:   logger.With().Str("component", "roles").Logger(),
	}
}

type CreateParams struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Permissions []string `json:"permissions"`
	Scope       string   `json:"scope" validate:"required,oneof=global organization customer"`
}

type UpdateParams struct {
	Name        *string   `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Permissions *[]string `json:"permissions"`
	Scope       *string   `json:"scope" validate:"omitempty,oneof=global organization customer"`
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Role, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Role, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}
	if err := validatePermissions(params.Permissions); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, Role{
		Name:        params.Name,
		Description: sanitize.Text(params.Description),
		Permissions: params.Permissions,
		Scope:       params.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "role.created",
		EntityType: "role",
		EntityID:   strconv.FormatInt(created.ID, 10),
		Details:    map[string]interface{}{"name": created.Name, "scope": created.Scope},
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Role, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Description != nil {
		existing.Description = sanitize.Text(*params.Description)
	}
	if params.Permissions != nil {
		if err := validatePermissions(*params.Permissions); err != nil {
			return nil, err
		}
		existing.Permissions = *params.Permissions
	}
	if params.Scope != nil {
		existing.Scope = *params.Scope
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "role.updated",
		EntityType: "role",
		EntityID:   strconv.FormatInt(updated.ID, 10),
		Details:    map[string]interface{}{"name": updated.Name, "scope": updated.Scope},
	})
	return updated, nil
}

// validatePermissions rejects permission strings the route manifest never
// checks for, so role payloads cannot smuggle in dead grants.
func validatePermissions(perms []string) error {
	for _, p := range perms {
		if !auth.KnownPermission(p) {
			return &validation.Error{Fields: map[string]string{
				"permissions": fmt.Sprintf("unknown permission %q", p),
			}}
		}
	}
	return nil
}
