package service

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/access"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type SetModuleFlagRequest struct {
	ModuleName string `json:"module_name" binding:"required"`
	IsEnabled  *bool  `json:"is_enabled" binding:"required"`
}

type SetGuestPermissionRequest struct {
	FeatureName string `json:"feature_name" binding:"required"`
	IsEnabled   *bool  `json:"is_enabled" binding:"required"`
}

type ModuleFlagResponse struct {
	ModuleName  string `json:"module_name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	IsEnabled   bool   `json:"is_enabled"`
}

type GuestPermissionResponse struct {
	FeatureName string `json:"feature_name"`
	IsEnabled   bool   `json:"is_enabled"`
}

// --- Interface ---

// CommunityService manages the per-community flag rows. Writes invalidate
// every cached snapshot resolved against the community and push a
// change-notification event over the websocket hub, so staleness is bounded
// by the invalidation, not the cache TTL.
type CommunityService interface {
	ListModuleFlags(ctx context.Context, communityID string) ([]ModuleFlagResponse, error)
	SetModuleFlag(ctx context.Context, actorID uuid.UUID, communityID string, req SetModuleFlagRequest) (*ModuleFlagResponse, error)
	ListGuestPermissions(ctx context.Context, communityID string) ([]GuestPermissionResponse, error)
	SetGuestPermission(ctx context.Context, actorID uuid.UUID, communityID string, req SetGuestPermissionRequest) (*GuestPermissionResponse, error)
}

type communityService struct {
	communities repository.CommunityRepository
	audit       AuditRecorder
	resolver    AccessService
	hub         interface{ GetBroadcast() chan []byte }
}

func NewCommunityService(
	communities repository.CommunityRepository,
	audit AuditRecorder,
	resolver AccessService,
	hub interface{ GetBroadcast() chan []byte },
) CommunityService {
	return &communityService{
		communities: communities,
		audit:       audit,
		resolver:    resolver,
		hub:         hub,
	}
}

// --- Implementation ---

// ListModuleFlags returns the full community-controlled catalog with each
// module's flag state; modules with no row report disabled.
func (s *communityService) ListModuleFlags(ctx context.Context, communityID string) ([]ModuleFlagResponse, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community id: %w", err)
	}

	rows, err := s.communities.ListModuleFlags(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list module flags: %w", err)
	}

	enabled := make(map[string]bool, len(rows))
	for _, row := range rows {
		enabled[row.ModuleName] = row.IsEnabled
	}

	responses := make([]ModuleFlagResponse, 0, len(access.Registry))
	for _, info := range access.Registry {
		if !info.CommunityControlled {
			continue
		}
		responses = append(responses, ModuleFlagResponse{
			ModuleName:  info.Name,
			DisplayName: info.DisplayName,
			Category:    info.Category,
			IsEnabled:   enabled[info.Name],
		})
	}
	return responses, nil
}

func (s *communityService) SetModuleFlag(ctx context.Context, actorID uuid.UUID, communityID string, req SetModuleFlagRequest) (*ModuleFlagResponse, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community id: %w", err)
	}

	info, ok := access.LookupModule(req.ModuleName)
	if !ok {
		return nil, fmt.Errorf("unknown module '%s'", req.ModuleName)
	}
	if !info.CommunityControlled {
		return nil, fmt.Errorf("module '%s' is role-granted and cannot be toggled per community", req.ModuleName)
	}

	if _, err := s.communities.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("community not found: %w", err)
	}

	flag := &model.ModuleFlag{
		CommunityID: id,
		ModuleName:  req.ModuleName,
		IsEnabled:   *req.IsEnabled,
		CreatedBy:   &actorID,
	}
	if err := s.communities.UpsertModuleFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("failed to set module flag: %w", err)
	}

	_ = s.audit.Record(ctx, &actorID, model.ActionSetModuleFlag, communityID, req.ModuleName, map[string]interface{}{
		"module":  req.ModuleName,
		"enabled": *req.IsEnabled,
	})

	// Push-based invalidation: drop cached snapshots now instead of waiting
	// out the TTL, then notify connected clients.
	s.resolver.InvalidateCommunity(id)
	s.notify("module_flags.changed", communityID, req.ModuleName, *req.IsEnabled)

	return &ModuleFlagResponse{
		ModuleName:  info.Name,
		DisplayName: info.DisplayName,
		Category:    info.Category,
		IsEnabled:   *req.IsEnabled,
	}, nil
}

func (s *communityService) ListGuestPermissions(ctx context.Context, communityID string) ([]GuestPermissionResponse, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community id: %w", err)
	}

	rows, err := s.communities.ListGuestPermissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest permissions: %w", err)
	}

	enabled := make(map[string]bool, len(rows))
	for _, row := range rows {
		enabled[row.FeatureName] = row.IsEnabled
	}

	responses := make([]GuestPermissionResponse, 0, len(access.Registry))
	for _, info := range access.Registry {
		if !info.CommunityControlled {
			continue
		}
		responses = append(responses, GuestPermissionResponse{
			FeatureName: info.Name,
			IsEnabled:   enabled[info.Name],
		})
	}
	return responses, nil
}

func (s *communityService) SetGuestPermission(ctx context.Context, actorID uuid.UUID, communityID string, req SetGuestPermissionRequest) (*GuestPermissionResponse, error) {
	id, err := uuid.Parse(communityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community id: %w", err)
	}

	info, ok := access.LookupModule(req.FeatureName)
	if !ok {
		return nil, fmt.Errorf("unknown feature '%s'", req.FeatureName)
	}
	if !info.CommunityControlled {
		return nil, fmt.Errorf("feature '%s' is role-granted; the guest overlay never consults it", req.FeatureName)
	}

	if _, err := s.communities.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("community not found: %w", err)
	}

	perm := &model.GuestPermission{
		CommunityID: id,
		FeatureName: req.FeatureName,
		IsEnabled:   *req.IsEnabled,
	}
	if err := s.communities.UpsertGuestPermission(ctx, perm); err != nil {
		return nil, fmt.Errorf("failed to set guest permission: %w", err)
	}

	_ = s.audit.Record(ctx, &actorID, model.ActionSetGuestPermission, communityID, req.FeatureName, map[string]interface{}{
		"feature": req.FeatureName,
		"enabled": *req.IsEnabled,
	})

	s.resolver.InvalidateCommunity(id)
	s.notify("guest_permissions.changed", communityID, req.FeatureName, *req.IsEnabled)

	return &GuestPermissionResponse{FeatureName: req.FeatureName, IsEnabled: *req.IsEnabled}, nil
}

// notify pushes a change event to websocket clients; delivery is
// fire-and-forget.
func (s *communityService) notify(eventType, communityID, name string, enabled bool) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":         eventType,
		"community_id": communityID,
		"name":         name,
		"enabled":      enabled,
	})
	if err != nil {
		return
	}
	select {
	case s.hub.GetBroadcast() <- payload:
	default:
	}
}
