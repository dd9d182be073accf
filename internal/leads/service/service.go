package service

import (
	"context"
	"time"

	"calltrack_backend/internal/leads/repository"
	"calltrack_backend/internal/leads/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, lead *repository.Lead) error
	CreateBatch(ctx context.Context, leads []repository.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, error)
	Update(ctx context.Context, lead *repository.Lead) error
	Assign(ctx context.Context, id uuid.UUID, assignedTo *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements lead directory operations.
type Service struct {
	repo Store
}

// New creates a new leads service.
func New(repo Store) *Service {
	return &Service{repo: repo}
}

// Create adds a lead on behalf of an uploader (manager or admin).
// New leads always start in status "new"; the status field is owned by the
// call outcome projection from there on.
func (s *Service) Create(ctx context.Context, uploadedBy uuid.UUID, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	priority := req.Priority
	if priority == "" {
		priority = transport.LeadPriorityMedium
	}

	now := time.Now()
	lead := &repository.Lead{
		ID:            uuid.New(),
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         phone.NormalizeE164(req.Phone),
		Status:        string(transport.LeadStatusNew),
		Priority:      string(priority),
		AssignedTo:    req.AssignedTo,
		UploadedBy:    uploadedBy,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	return s.GetByID(ctx, lead.ID)
}

// GetByID returns a single lead with display names resolved.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(lead), nil
}

// List returns leads matching the given filters.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, repository.ListParams{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	return toResponses(leads), nil
}

// ListMine returns leads assigned to the given salesperson.
func (s *Service) ListMine(ctx context.Context, salespersonID uuid.UUID, status *transport.LeadStatus) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, repository.ListParams{
		Status:     status,
		AssignedTo: &salespersonID,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list assigned leads", err)
	}

	return toResponses(leads), nil
}

// Update applies an administrative edit, which may override the status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lead.CompanyName = req.CompanyName
	lead.ContactPerson = req.ContactPerson
	lead.Email = req.Email
	lead.Phone = phone.NormalizeE164(req.Phone)
	lead.Status = string(req.Status)
	lead.AssignedTo = req.AssignedTo
	lead.Priority = string(req.Priority)
	lead.Notes = req.Notes
	lead.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Assign moves the lead to a different salesperson (or unassigns it).
func (s *Service) Assign(ctx context.Context, id uuid.UUID, assignedTo *uuid.UUID) (*transport.LeadResponse, error) {
	if err := s.repo.Assign(ctx, id, assignedTo); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a lead. Administrative path only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func toResponse(lead *repository.Lead) *transport.LeadResponse {
	return &transport.LeadResponse{
		ID:             lead.ID,
		CompanyName:    lead.CompanyName,
		ContactPerson:  lead.ContactPerson,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Status:         transport.LeadStatus(lead.Status),
		Priority:       transport.LeadPriority(lead.Priority),
		AssignedTo:     lead.AssignedTo,
		AssignedToName: lead.AssignedToName,
		UploadedBy:     lead.UploadedBy,
		UploadedByName: lead.UploadedByName,
		Notes:          lead.Notes,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func toResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, *toResponse(&leads[i]))
	}
	return out
}
