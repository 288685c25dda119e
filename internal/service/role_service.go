package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/access"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type AssignRoleRequest struct {
	Role       string     `json:"role" binding:"required"`
	Notes      string     `json:"notes"`
	ExpiresAt  *time.Time `json:"expires_at"`
	DistrictID string     `json:"district_id"`
}

type RoleAssignmentResponse struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	Level      int    `json:"level"`
	IsActive   bool   `json:"is_active"`
	AssignedBy string `json:"assigned_by,omitempty"`
	Notes      string `json:"notes,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// --- Interface ---

// RoleService mutates role assignments. Every write is audited and
// invalidates the identity's cached snapshot so the change takes effect
// ahead of the cache TTL.
type RoleService interface {
	AssignRole(ctx context.Context, actorID uuid.UUID, identityID string, req AssignRoleRequest) (*RoleAssignmentResponse, error)
	DeactivateRole(ctx context.Context, actorID uuid.UUID, identityID string, role string) error
	ListAssignments(ctx context.Context, identityID string) ([]RoleAssignmentResponse, error)
}

type roleService struct {
	identities  repository.IdentityRepository
	assignments repository.RoleAssignmentRepository
	audit       AuditRecorder
	resolver    AccessService
}

func NewRoleService(
	identities repository.IdentityRepository,
	assignments repository.RoleAssignmentRepository,
	audit AuditRecorder,
	resolver AccessService,
) RoleService {
	return &roleService{
		identities:  identities,
		assignments: assignments,
		audit:       audit,
		resolver:    resolver,
	}
}

// --- Implementation ---

func (s *roleService) AssignRole(ctx context.Context, actorID uuid.UUID, identityID string, req AssignRoleRequest) (*RoleAssignmentResponse, error) {
	if !access.Valid(access.Role(req.Role)) {
		return nil, fmt.Errorf("unknown role '%s'", req.Role)
	}

	identity, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("identity not found: %w", err)
	}

	assignment := &model.RoleAssignment{
		IdentityID: identity.ID,
		Role:       req.Role,
		IsActive:   true,
		AssignedBy: &actorID,
		Notes:      req.Notes,
		ExpiresAt:  req.ExpiresAt,
	}

	if req.DistrictID != "" {
		districtID, parseErr := uuid.Parse(req.DistrictID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid district_id: %w", parseErr)
		}
		assignment.DistrictID = &districtID
	}

	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	_ = s.audit.Record(ctx, &actorID, model.ActionAssignRole, identity.ID.String(), identity.FullName, map[string]interface{}{
		"role":       req.Role,
		"expires_at": req.ExpiresAt,
	})

	s.resolver.InvalidateIdentity(identity.ID)

	return toAssignmentResponse(*assignment), nil
}

func (s *roleService) DeactivateRole(ctx context.Context, actorID uuid.UUID, identityID string, role string) error {
	if !access.Valid(access.Role(role)) {
		return fmt.Errorf("unknown role '%s'", role)
	}

	identity, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return fmt.Errorf("identity not found: %w", err)
	}

	if err := s.assignments.Deactivate(ctx, identity.ID, role); err != nil {
		return fmt.Errorf("failed to deactivate role: %w", err)
	}

	_ = s.audit.Record(ctx, &actorID, model.ActionDeactivateRole, identity.ID.String(), identity.FullName, map[string]interface{}{
		"role": role,
	})

	s.resolver.InvalidateIdentity(identity.ID)
	return nil
}

func (s *roleService) ListAssignments(ctx context.Context, identityID string) ([]RoleAssignmentResponse, error) {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return nil, fmt.Errorf("invalid identity id: %w", err)
	}

	rows, err := s.assignments.ListByIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]RoleAssignmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, *toAssignmentResponse(row))
	}
	return responses, nil
}

// --- Helpers ---

func toAssignmentResponse(a model.RoleAssignment) *RoleAssignmentResponse {
	res := &RoleAssignmentResponse{
		ID:         a.ID.String(),
		IdentityID: a.IdentityID.String(),
		Role:       a.Role,
		Level:      access.Level(access.Role(a.Role)),
		IsActive:   a.IsActive,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if a.AssignedBy != nil {
		res.AssignedBy = a.AssignedBy.String()
	}
	if a.ExpiresAt != nil {
		res.ExpiresAt = a.ExpiresAt.Format("2006-01-02 15:04:05")
	}
	if a.DistrictID != nil {
		res.DistrictID = a.DistrictID.String()
	}
	return res
}
