package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/access"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type roleFixture struct {
	identities  *mockIdentityRepo
	assignments *mockAssignmentRepo
	resolver    *spyResolver
	svc         RoleService
}

func newRoleFixture() *roleFixture {
	f := &roleFixture{
		identities:  new(mockIdentityRepo),
		assignments: new(mockAssignmentRepo),
		resolver:    new(spyResolver),
	}
	f.svc = NewRoleService(f.identities, f.assignments, nopAudit{}, f.resolver)
	return f
}

func TestAssignRole(t *testing.T) {
	f := newRoleFixture()
	actorID := uuid.New()
	identity := &model.Identity{ID: uuid.New(), FullName: "Target", IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.assignments.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.RoleAssignment) bool {
		return a.IdentityID == identity.ID &&
			a.Role == string(access.RoleSecurityOfficer) &&
			a.IsActive &&
			a.AssignedBy != nil && *a.AssignedBy == actorID
	})).Return(nil)

	res, err := f.svc.AssignRole(context.Background(), actorID, identity.ID.String(), AssignRoleRequest{
		Role: string(access.RoleSecurityOfficer),
	})
	require.NoError(t, err)

	assert.Equal(t, string(access.RoleSecurityOfficer), res.Role)
	assert.Equal(t, access.LevelSecurityOfficer, res.Level)
	assert.Equal(t, []uuid.UUID{identity.ID}, f.resolver.invalidatedIdentities, "assignment must drop the cached snapshot")
}

func TestAssignRole_UnknownRoleRejected(t *testing.T) {
	f := newRoleFixture()

	_, err := f.svc.AssignRole(context.Background(), uuid.New(), uuid.New().String(), AssignRoleRequest{
		Role: "superuser",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
	f.assignments.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	assert.Empty(t, f.resolver.invalidatedIdentities)
}

func TestAssignRole_TemporaryWithDistrict(t *testing.T) {
	f := newRoleFixture()
	actorID := uuid.New()
	identity := &model.Identity{ID: uuid.New(), FullName: "Target", IsActive: true}
	districtID := uuid.New()
	expiry := time.Now().Add(30 * 24 * time.Hour)

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.assignments.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.RoleAssignment) bool {
		return a.DistrictID != nil && *a.DistrictID == districtID &&
			a.ExpiresAt != nil && a.ExpiresAt.Equal(expiry)
	})).Return(nil)

	res, err := f.svc.AssignRole(context.Background(), actorID, identity.ID.String(), AssignRoleRequest{
		Role:       string(access.RoleCommunityLeader),
		ExpiresAt:  &expiry,
		DistrictID: districtID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, districtID.String(), res.DistrictID)
	assert.NotEmpty(t, res.ExpiresAt)
}

func TestAssignRole_InvalidDistrictID(t *testing.T) {
	f := newRoleFixture()
	identity := &model.Identity{ID: uuid.New(), IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)

	_, err := f.svc.AssignRole(context.Background(), uuid.New(), identity.ID.String(), AssignRoleRequest{
		Role:       string(access.RoleCommunityLeader),
		DistrictID: "not-a-uuid",
	})

	require.Error(t, err)
	f.assignments.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestDeactivateRole(t *testing.T) {
	f := newRoleFixture()
	actorID := uuid.New()
	identity := &model.Identity{ID: uuid.New(), FullName: "Target", IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.assignments.On("Deactivate", mock.Anything, identity.ID, string(access.RoleSecurityOfficer)).Return(nil)

	err := f.svc.DeactivateRole(context.Background(), actorID, identity.ID.String(), string(access.RoleSecurityOfficer))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{identity.ID}, f.resolver.invalidatedIdentities, "revocation must drop the cached snapshot")
}

func TestDeactivateRole_UnknownRoleRejected(t *testing.T) {
	f := newRoleFixture()

	err := f.svc.DeactivateRole(context.Background(), uuid.New(), uuid.New().String(), "superuser")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
	f.assignments.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.resolver.invalidatedIdentities)
}

func TestListAssignments(t *testing.T) {
	f := newRoleFixture()
	identityID := uuid.New()
	assignedBy := uuid.New()

	f.assignments.On("ListByIdentity", mock.Anything, identityID).Return([]model.RoleAssignment{
		{
			ID:         uuid.New(),
			IdentityID: identityID,
			Role:       string(access.RoleResident),
			IsActive:   true,
			AssignedBy: &assignedBy,
		},
		{
			ID:         uuid.New(),
			IdentityID: identityID,
			Role:       string(access.RoleSecurityOfficer),
			IsActive:   false,
		},
	}, nil)

	res, err := f.svc.ListAssignments(context.Background(), identityID.String())
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, access.LevelResident, res[0].Level)
	assert.Equal(t, assignedBy.String(), res[0].AssignedBy)
	assert.False(t, res[1].IsActive, "inactive history rows are included for admin review")
}
