package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/access"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Household delegation errors, surfaced to callers as rejected operations.
var (
	ErrDuplicateRelationship = errors.New("an active spouse account already exists for this household")
	ErrNotLinkPrimary        = errors.New("only the primary account may manage this household link")
)

// --- DTOs ---

type CreateLinkedAccountRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	// ExpiresAt optionally bounds a tenant's role assignment (temporary access).
	ExpiresAt *time.Time `json:"expires_at"`
	// Permissions overrides are merged over the relationship defaults.
	Permissions *HouseholdPermissionsPatch `json:"permissions"`
}

// HouseholdPermissionsPatch is a partial update: nil fields keep the stored
// value, so an empty patch is a no-op.
type HouseholdPermissionsPatch struct {
	Marketplace   *bool `json:"marketplace"`
	Bookings      *bool `json:"bookings"`
	Announcements *bool `json:"announcements"`
	Complaints    *bool `json:"complaints"`
	Discussions   *bool `json:"discussions"`
}

type HouseholdLinkResponse struct {
	ID               string                     `json:"id"`
	RelationshipType string                     `json:"relationship_type"`
	LinkedID         string                     `json:"linked_id"`
	LinkedName       string                     `json:"linked_name"`
	LinkedEmail      string                     `json:"linked_email"`
	Permissions      model.HouseholdPermissions `json:"permissions"`
	IsActive         bool                       `json:"is_active"`
	CreatedAt        string                     `json:"created_at"`
}

// --- Interface ---

// HouseholdService provisions and manages spouse/tenant linked accounts.
// Linked identities are independently authenticable: their own role
// assignments govern everything beyond the household-gated feature grants.
type HouseholdService interface {
	CreateSpouseAccount(ctx context.Context, primaryID uuid.UUID, req CreateLinkedAccountRequest) (*HouseholdLinkResponse, error)
	CreateTenantAccount(ctx context.Context, primaryID uuid.UUID, req CreateLinkedAccountRequest) (*HouseholdLinkResponse, error)
	RemoveAccount(ctx context.Context, callerID uuid.UUID, linkID string) error
	UpdatePermissions(ctx context.Context, callerID uuid.UUID, linkID string, patch HouseholdPermissionsPatch) (*HouseholdLinkResponse, error)
	ListAccounts(ctx context.Context, primaryID uuid.UUID) ([]HouseholdLinkResponse, error)
}

type householdService struct {
	identities  repository.IdentityRepository
	assignments repository.RoleAssignmentRepository
	links       repository.HouseholdRepository
	audit       AuditRecorder
	tx          repository.TransactionManager
}

func NewHouseholdService(
	identities repository.IdentityRepository,
	assignments repository.RoleAssignmentRepository,
	links repository.HouseholdRepository,
	audit AuditRecorder,
	tx repository.TransactionManager,
) HouseholdService {
	return &householdService{
		identities:  identities,
		assignments: assignments,
		links:       links,
		audit:       audit,
		tx:          tx,
	}
}

// --- Implementation ---

// CreateSpouseAccount provisions a spouse identity. At most one active
// spouse link per primary.
func (s *householdService) CreateSpouseAccount(ctx context.Context, primaryID uuid.UUID, req CreateLinkedAccountRequest) (*HouseholdLinkResponse, error) {
	// Only a definitive "no active spouse" may proceed; a lookup failure must
	// not be mistaken for absence.
	if _, err := s.links.FindActiveSpouse(ctx, primaryID); err == nil {
		return nil, ErrDuplicateRelationship
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing spouse link: %w", err)
	}

	perms := model.DefaultSpousePermissions()
	applyPermissionsPatch(&perms, req.Permissions)

	return s.provision(ctx, primaryID, model.RelationshipSpouse, req, perms)
}

// CreateTenantAccount provisions a tenant identity with the default tenant
// grant set merged with caller overrides. Multiple tenants are permitted.
func (s *householdService) CreateTenantAccount(ctx context.Context, primaryID uuid.UUID, req CreateLinkedAccountRequest) (*HouseholdLinkResponse, error) {
	perms := model.DefaultTenantPermissions()
	applyPermissionsPatch(&perms, req.Permissions)

	return s.provision(ctx, primaryID, model.RelationshipTenant, req, perms)
}

func (s *householdService) provision(ctx context.Context, primaryID uuid.UUID, relationship string, req CreateLinkedAccountRequest, perms model.HouseholdPermissions) (*HouseholdLinkResponse, error) {
	primary, err := s.identities.GetByID(ctx, primaryID.String())
	if err != nil {
		return nil, fmt.Errorf("primary identity not found: %w", err)
	}

	if _, err := s.identities.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	// Scope is a one-time copy from the primary's profile; later moves by
	// the primary do not follow.
	linked := &model.Identity{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    string(hashedPassword),
		CommunityID: primary.CommunityID,
		DistrictID:  primary.DistrictID,
		IsActive:    true,
	}

	link := &model.HouseholdLink{
		PrimaryID:        primaryID,
		RelationshipType: relationship,
		Permissions:      perms,
		IsActive:         true,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.identities.Create(txCtx, linked); createErr != nil {
			return fmt.Errorf("failed to provision identity: %w", createErr)
		}

		assignment := &model.RoleAssignment{
			IdentityID: linked.ID,
			Role:       string(access.RoleResident),
			IsActive:   true,
			AssignedBy: &primaryID,
			Notes:      "household " + relationship,
			ExpiresAt:  req.ExpiresAt,
		}
		if assignErr := s.assignments.Upsert(txCtx, assignment); assignErr != nil {
			return fmt.Errorf("failed to assign resident role: %w", assignErr)
		}

		link.LinkedID = linked.ID
		if linkErr := s.links.Create(txCtx, link); linkErr != nil {
			return fmt.Errorf("failed to create household link: %w", linkErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, &primaryID, model.ActionCreateHouseholdLink, link.ID.String(), req.FullName, map[string]interface{}{
		"relationship": relationship,
		"linked_id":    linked.ID.String(),
	})

	link.Linked = linked
	return toLinkResponse(*link), nil
}

// RemoveAccount soft-deactivates a link; only its primary may do so.
func (s *householdService) RemoveAccount(ctx context.Context, callerID uuid.UUID, linkID string) error {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return fmt.Errorf("invalid link id: %w", err)
	}

	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("household link not found: %w", err)
	}

	if link.PrimaryID != callerID {
		return ErrNotLinkPrimary
	}

	link.IsActive = false
	if err := s.links.Update(ctx, link); err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	_ = s.audit.Record(ctx, &callerID, model.ActionDeactivateHouseholdLink, link.ID.String(), link.RelationshipType, nil)
	return nil
}

// UpdatePermissions merges a partial grant set into the stored one; only the
// link's primary may do so. An empty patch leaves the grants unchanged.
func (s *householdService) UpdatePermissions(ctx context.Context, callerID uuid.UUID, linkID string, patch HouseholdPermissionsPatch) (*HouseholdLinkResponse, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return nil, fmt.Errorf("invalid link id: %w", err)
	}

	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("household link not found: %w", err)
	}

	if link.PrimaryID != callerID {
		return nil, ErrNotLinkPrimary
	}

	applyPermissionsPatch(&link.Permissions, &patch)
	if err := s.links.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	_ = s.audit.Record(ctx, &callerID, model.ActionUpdateHouseholdGrants, link.ID.String(), link.RelationshipType, link.Permissions)
	return toLinkResponse(*link), nil
}

func (s *householdService) ListAccounts(ctx context.Context, primaryID uuid.UUID) ([]HouseholdLinkResponse, error) {
	links, err := s.links.ListActiveByPrimary(ctx, primaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list household links: %w", err)
	}

	responses := make([]HouseholdLinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, *toLinkResponse(link))
	}
	return responses, nil
}

// --- Helpers ---

func applyPermissionsPatch(perms *model.HouseholdPermissions, patch *HouseholdPermissionsPatch) {
	if patch == nil {
		return
	}
	if patch.Marketplace != nil {
		perms.Marketplace = *patch.Marketplace
	}
	if patch.Bookings != nil {
		perms.Bookings = *patch.Bookings
	}
	if patch.Announcements != nil {
		perms.Announcements = *patch.Announcements
	}
	if patch.Complaints != nil {
		perms.Complaints = *patch.Complaints
	}
	if patch.Discussions != nil {
		perms.Discussions = *patch.Discussions
	}
}

func toLinkResponse(link model.HouseholdLink) *HouseholdLinkResponse {
	res := &HouseholdLinkResponse{
		ID:               link.ID.String(),
		RelationshipType: link.RelationshipType,
		LinkedID:         link.LinkedID.String(),
		Permissions:      link.Permissions,
		IsActive:         link.IsActive,
		CreatedAt:        link.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if link.Linked != nil {
		res.LinkedName = link.Linked.FullName
		res.LinkedEmail = link.Linked.Email
	}
	return res
}
