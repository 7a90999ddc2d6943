package organizations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/warebase/server/internal/audit"
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
		logger:   logger.With().Str("component", "organizations").Logger(),
	}
}

type CreateParams struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Active      *bool  `json:"active"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

type UpdateParams struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Active      *bool   `json:"active"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
}

func (s *Service) List(ctx context.Context, filters Filters) ([]Organization, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Organization, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	if params.ParentID != nil {
		ok, err := s.repo.Exists(ctx, *params.ParentID)
		if err != nil {
			return nil, fmt.Errorf("check parent organization: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("parent organization %d: %w", *params.ParentID, ErrNotFound)
		}
	}

	active := true
	if params.Active != nil {
		active = *params.Active
	}

	created, err := s.repo.Create(ctx, Organization{
		Name:        params.Name,
		Description: sanitize.Text(params.Description),
		Active:      active,
		ParentID:    params.ParentID,
	})
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "organization.created",
		EntityType:     "organization",
		EntityID:       strconv.FormatInt(created.ID, 10),
		OrganizationID: &created.ID,
		Details:        map[string]interface{}{"name": created.Name, "active": created.Active},
	})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Organization, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.ParentID != nil {
		if *params.ParentID == id {
			return nil, &validation.Error{Fields: map[string]string{"parent_id": "must not be the organization itself"}}
		}
		ok, err := s.repo.Exists(ctx, *params.ParentID)
		if err != nil {
			return nil, fmt.Errorf("check parent organization: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("parent organization %d: %w", *params.ParentID, ErrNotFound)
		}
		existing.ParentID = params.ParentID
	}
	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Description != nil {
		existing.Description = sanitize.Text(*params.Description)
	}
	if params.Active != nil {
		existing.Active = *params.Active
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:         "organization.updated",
		EntityType:     "organization",
		EntityID:       strconv.FormatInt(updated.ID, 10),
		OrganizationID: &updated.ID,
		Details:        map[string]interface{}{"name": updated.Name, "active": updated.Active},
	})
	return updated, nil
}
