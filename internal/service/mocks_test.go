package service

import (
	"context"

	"backend/internal/access"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Repository mocks shared by the service tests.

type mockIdentityRepo struct {
	mock.Mock
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity *model.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepo) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func (m *mockIdentityRepo) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func (m *mockIdentityRepo) List(ctx context.Context, page, limit int) ([]model.Identity, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.Identity), args.Get(1).(int64), args.Error(2)
}

func (m *mockIdentityRepo) Update(ctx context.Context, identity *model.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepo) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAssignmentRepo struct {
	mock.Mock
}

func (m *mockAssignmentRepo) Upsert(ctx context.Context, assignment *model.RoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepo) Deactivate(ctx context.Context, identityID uuid.UUID, role string) error {
	args := m.Called(ctx, identityID, role)
	return args.Error(0)
}

func (m *mockAssignmentRepo) ListActiveByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleAssignment), args.Error(1)
}

func (m *mockAssignmentRepo) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleAssignment), args.Error(1)
}

type mockCommunityRepo struct {
	mock.Mock
}

func (m *mockCommunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}

func (m *mockCommunityRepo) ListModuleFlags(ctx context.Context, communityID uuid.UUID) ([]model.ModuleFlag, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ModuleFlag), args.Error(1)
}

func (m *mockCommunityRepo) UpsertModuleFlag(ctx context.Context, flag *model.ModuleFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *mockCommunityRepo) ListGuestPermissions(ctx context.Context, communityID uuid.UUID) ([]model.GuestPermission, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GuestPermission), args.Error(1)
}

func (m *mockCommunityRepo) UpsertGuestPermission(ctx context.Context, perm *model.GuestPermission) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

type mockHouseholdRepo struct {
	mock.Mock
}

func (m *mockHouseholdRepo) Create(ctx context.Context, link *model.HouseholdLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *mockHouseholdRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.HouseholdLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HouseholdLink), args.Error(1)
}

func (m *mockHouseholdRepo) FindActiveSpouse(ctx context.Context, primaryID uuid.UUID) (*model.HouseholdLink, error) {
	args := m.Called(ctx, primaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HouseholdLink), args.Error(1)
}

func (m *mockHouseholdRepo) ListActiveByPrimary(ctx context.Context, primaryID uuid.UUID) ([]model.HouseholdLink, error) {
	args := m.Called(ctx, primaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.HouseholdLink), args.Error(1)
}

func (m *mockHouseholdRepo) Update(ctx context.Context, link *model.HouseholdLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteByIdentity(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

// passthroughTx runs the callback directly, no transaction semantics.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// nopAudit swallows audit records.
type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, actorID *uuid.UUID, action, entityID, entityName string, details interface{}) error {
	return nil
}

// spyResolver records which invalidations the services under test trigger.
type spyResolver struct {
	invalidatedIdentities  []uuid.UUID
	invalidatedCommunities []uuid.UUID
}

func (r *spyResolver) Snapshot(ctx context.Context, identityID uuid.UUID) (access.Snapshot, error) {
	return access.Snapshot{IdentityID: identityID}, nil
}

func (r *spyResolver) Resolve(ctx context.Context, identityID uuid.UUID) (*ResolvedAccess, error) {
	return &ResolvedAccess{IdentityID: identityID.String()}, nil
}

func (r *spyResolver) Describe(ctx context.Context, identityID uuid.UUID) (*AccessDiagnostics, error) {
	return &AccessDiagnostics{IdentityID: identityID.String()}, nil
}

func (r *spyResolver) InvalidateIdentity(identityID uuid.UUID) {
	r.invalidatedIdentities = append(r.invalidatedIdentities, identityID)
}

func (r *spyResolver) InvalidateCommunity(communityID uuid.UUID) {
	r.invalidatedCommunities = append(r.invalidatedCommunities, communityID)
}
