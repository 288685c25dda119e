package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/access"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// ResolvedAccess is the full navigation/permission view returned to the SPA
// after login: which modules render, which functions are reachable, and
// which dashboard the acting role selects.
type ResolvedAccess struct {
	IdentityID     string   `json:"identity_id"`
	Roles          []string `json:"roles"`
	ActingRole     string   `json:"acting_role"`
	Level          int      `json:"level"`
	Functions      []string `json:"functions"`
	Scopes         []string `json:"scopes"`
	EnabledModules []string `json:"enabled_modules"`
}

// AccessDiagnostics helps administrators self-diagnose scope problems
// instead of a bare "access denied".
type AccessDiagnostics struct {
	IdentityID  string   `json:"identity_id"`
	Roles       []string `json:"roles"`
	Level       int      `json:"level"`
	CommunityID string   `json:"community_id,omitempty"`
	DistrictID  string   `json:"district_id,omitempty"`
	Warnings    []string `json:"warnings"`
}

// AccessService resolves and caches per-identity permission snapshots. Every
// load failure is fail-closed: the caller gets an error, never a partial
// snapshot.
type AccessService interface {
	Snapshot(ctx context.Context, identityID uuid.UUID) (access.Snapshot, error)
	Resolve(ctx context.Context, identityID uuid.UUID) (*ResolvedAccess, error)
	Describe(ctx context.Context, identityID uuid.UUID) (*AccessDiagnostics, error)
	InvalidateIdentity(identityID uuid.UUID)
	InvalidateCommunity(communityID uuid.UUID)
}

type accessService struct {
	identities  repository.IdentityRepository
	assignments repository.RoleAssignmentRepository
	communities repository.CommunityRepository
	cache       *access.Cache
}

func NewAccessService(
	identities repository.IdentityRepository,
	assignments repository.RoleAssignmentRepository,
	communities repository.CommunityRepository,
	cache *access.Cache,
) AccessService {
	if cache == nil {
		cache = access.NewCache(access.DefaultTTL, nil)
	}
	return &accessService{
		identities:  identities,
		assignments: assignments,
		communities: communities,
		cache:       cache,
	}
}

// Snapshot returns the cached view for an identity or loads a fresh one.
// Results are keyed by identity id, so a snapshot resolved for one session
// can never be served to another identity after login/logout.
func (s *accessService) Snapshot(ctx context.Context, identityID uuid.UUID) (access.Snapshot, error) {
	if snap, ok := s.cache.Get(identityID); ok {
		return snap, nil
	}

	identity, err := s.identities.GetByID(ctx, identityID.String())
	if err != nil {
		return access.Snapshot{}, fmt.Errorf("load identity: %w", err)
	}

	snap := access.Snapshot{
		IdentityID:       identityID,
		CommunityID:      identity.CommunityID,
		DistrictID:       identity.DistrictID,
		ModuleFlags:      map[string]bool{},
		GuestPermissions: map[string]bool{},
	}

	if identity.IsActive {
		rows, err := s.assignments.ListActiveByIdentity(ctx, identityID)
		if err != nil {
			return access.Snapshot{}, fmt.Errorf("load role assignments: %w", err)
		}
		now := time.Now()
		for _, row := range rows {
			// Expired counts as inactive even if the store returns the row.
			if row.ExpiresAt != nil && !row.ExpiresAt.After(now) {
				continue
			}
			tag := access.Role(row.Role)
			if !access.Valid(tag) {
				continue
			}
			snap.Roles = append(snap.Roles, tag)
			if row.DistrictID != nil {
				snap.HasDistrictAssignment = true
			}
		}
	}

	if identity.CommunityID != nil {
		flags, err := s.communities.ListModuleFlags(ctx, *identity.CommunityID)
		if err != nil {
			return access.Snapshot{}, fmt.Errorf("load module flags: %w", err)
		}
		for _, f := range flags {
			snap.ModuleFlags[f.ModuleName] = f.IsEnabled
		}

		if snap.HasRole(access.RoleGuest) {
			perms, err := s.communities.ListGuestPermissions(ctx, *identity.CommunityID)
			if err != nil {
				return access.Snapshot{}, fmt.Errorf("load guest permissions: %w", err)
			}
			for _, p := range perms {
				snap.GuestPermissions[p.FeatureName] = p.IsEnabled
			}
		}
	}

	s.cache.Put(snap)
	return snap, nil
}

func (s *accessService) Resolve(ctx context.Context, identityID uuid.UUID) (*ResolvedAccess, error) {
	snap, err := s.Snapshot(ctx, identityID)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.GetByID(ctx, identityID.String())
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	roles := make([]string, 0, len(snap.Roles))
	for _, r := range snap.Roles {
		roles = append(roles, string(r))
	}

	functions := make([]string, 0)
	for _, fn := range []access.Function{
		access.FunctionSecurity, access.FunctionFacilities, access.FunctionServices,
		access.FunctionAdministration, access.FunctionMaintenance, access.FunctionCommunity,
	} {
		if snap.CanAccessFunction(fn) {
			functions = append(functions, string(fn))
		}
	}

	scopes := make([]string, 0)
	for _, sc := range []access.Scope{access.ScopeCommunity, access.ScopeDistrict, access.ScopeState} {
		if snap.CanAccessScope(sc) {
			scopes = append(scopes, string(sc))
		}
	}

	return &ResolvedAccess{
		IdentityID:     identityID.String(),
		Roles:          roles,
		ActingRole:     identity.ActingRole,
		Level:          snap.MaxLevel(),
		Functions:      functions,
		Scopes:         scopes,
		EnabledModules: snap.EnabledModules(),
	}, nil
}

func (s *accessService) Describe(ctx context.Context, identityID uuid.UUID) (*AccessDiagnostics, error) {
	snap, err := s.Snapshot(ctx, identityID)
	if err != nil {
		return nil, err
	}

	diag := &AccessDiagnostics{
		IdentityID: identityID.String(),
		Level:      snap.MaxLevel(),
		Warnings:   []string{},
	}
	for _, r := range snap.Roles {
		diag.Roles = append(diag.Roles, string(r))
	}
	if snap.CommunityID != nil {
		diag.CommunityID = snap.CommunityID.String()
	} else {
		diag.Warnings = append(diag.Warnings, access.ErrProfileIncomplete.Error()+": no community assigned")
	}
	if snap.DistrictID != nil {
		diag.DistrictID = snap.DistrictID.String()
	} else {
		diag.Warnings = append(diag.Warnings, access.ErrProfileIncomplete.Error()+": no district assigned")
	}
	if len(snap.Roles) == 0 {
		diag.Warnings = append(diag.Warnings, "no active role assignments; every access check will deny")
	}

	return diag, nil
}

func (s *accessService) InvalidateIdentity(identityID uuid.UUID) {
	s.cache.Invalidate(identityID)
}

func (s *accessService) InvalidateCommunity(communityID uuid.UUID) {
	s.cache.InvalidateCommunity(communityID)
}
