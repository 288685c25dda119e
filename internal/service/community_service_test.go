package service

import (
	"context"
	"encoding/json"
	"testing"

	"backend/internal/access"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeHub captures broadcast payloads on a buffered channel.
type fakeHub struct {
	broadcast chan []byte
}

func newFakeHub() *fakeHub {
	return &fakeHub{broadcast: make(chan []byte, 4)}
}

func (h *fakeHub) GetBroadcast() chan []byte { return h.broadcast }

type communityFixture struct {
	communities *mockCommunityRepo
	resolver    *spyResolver
	hub         *fakeHub
	svc         CommunityService
}

func newCommunityFixture() *communityFixture {
	f := &communityFixture{
		communities: new(mockCommunityRepo),
		resolver:    new(spyResolver),
		hub:         newFakeHub(),
	}
	f.svc = NewCommunityService(f.communities, nopAudit{}, f.resolver, f.hub)
	return f
}

func boolPtr(b bool) *bool { return &b }

func TestSetModuleFlag(t *testing.T) {
	f := newCommunityFixture()
	actorID := uuid.New()
	communityID := uuid.New()

	f.communities.On("GetByID", mock.Anything, communityID).Return(&model.Community{ID: communityID, Name: "Taman Indah"}, nil)
	f.communities.On("UpsertModuleFlag", mock.Anything, mock.MatchedBy(func(flag *model.ModuleFlag) bool {
		return flag.CommunityID == communityID &&
			flag.ModuleName == access.ModuleMarketplace &&
			flag.IsEnabled
	})).Return(nil)

	res, err := f.svc.SetModuleFlag(context.Background(), actorID, communityID.String(), SetModuleFlagRequest{
		ModuleName: access.ModuleMarketplace,
		IsEnabled:  boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, res.IsEnabled)

	// Cached snapshots for the whole community are dropped immediately.
	assert.Equal(t, []uuid.UUID{communityID}, f.resolver.invalidatedCommunities)

	// And connected clients get a change event.
	select {
	case payload := <-f.hub.broadcast:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "module_flags.changed", event["type"])
		assert.Equal(t, access.ModuleMarketplace, event["name"])
		assert.Equal(t, true, event["enabled"])
	default:
		t.Fatal("expected a broadcast event")
	}
}

func TestSetModuleFlag_UnknownModule(t *testing.T) {
	f := newCommunityFixture()

	_, err := f.svc.SetModuleFlag(context.Background(), uuid.New(), uuid.New().String(), SetModuleFlagRequest{
		ModuleName: "teleportation",
		IsEnabled:  boolPtr(true),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown module")
}

func TestSetModuleFlag_RoleGrantedModuleNotToggleable(t *testing.T) {
	f := newCommunityFixture()

	_, err := f.svc.SetModuleFlag(context.Background(), uuid.New(), uuid.New().String(), SetModuleFlagRequest{
		ModuleName: access.ModuleCCTV,
		IsEnabled:  boolPtr(true),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "role-granted")
	f.communities.AssertNotCalled(t, "UpsertModuleFlag", mock.Anything, mock.Anything)
	assert.Empty(t, f.resolver.invalidatedCommunities)
}

func TestListModuleFlags_FullCatalogWithDefaults(t *testing.T) {
	f := newCommunityFixture()
	communityID := uuid.New()

	f.communities.On("ListModuleFlags", mock.Anything, communityID).Return([]model.ModuleFlag{
		{CommunityID: communityID, ModuleName: access.ModuleMarketplace, IsEnabled: true},
	}, nil)

	res, err := f.svc.ListModuleFlags(context.Background(), communityID.String())
	require.NoError(t, err)

	byName := make(map[string]bool, len(res))
	for _, flag := range res {
		byName[flag.ModuleName] = flag.IsEnabled
	}

	assert.True(t, byName[access.ModuleMarketplace])
	enabled, present := byName[access.ModuleBookings]
	assert.True(t, present, "catalog includes modules with no row")
	assert.False(t, enabled, "missing row reports disabled")
	_, present = byName[access.ModuleCCTV]
	assert.False(t, present, "role-granted modules are not part of the community catalog")
}

func TestSetGuestPermission(t *testing.T) {
	f := newCommunityFixture()
	actorID := uuid.New()
	communityID := uuid.New()

	f.communities.On("GetByID", mock.Anything, communityID).Return(&model.Community{ID: communityID}, nil)
	f.communities.On("UpsertGuestPermission", mock.Anything, mock.MatchedBy(func(perm *model.GuestPermission) bool {
		return perm.CommunityID == communityID &&
			perm.FeatureName == access.ModuleAnnouncements &&
			perm.IsEnabled
	})).Return(nil)

	res, err := f.svc.SetGuestPermission(context.Background(), actorID, communityID.String(), SetGuestPermissionRequest{
		FeatureName: access.ModuleAnnouncements,
		IsEnabled:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, res.IsEnabled)
	assert.Equal(t, []uuid.UUID{communityID}, f.resolver.invalidatedCommunities)

	select {
	case payload := <-f.hub.broadcast:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "guest_permissions.changed", event["type"])
	default:
		t.Fatal("expected a broadcast event")
	}
}

func TestSetGuestPermission_RoleGrantedFeatureRejected(t *testing.T) {
	f := newCommunityFixture()

	_, err := f.svc.SetGuestPermission(context.Background(), uuid.New(), uuid.New().String(), SetGuestPermissionRequest{
		FeatureName: access.ModuleCCTV,
		IsEnabled:   boolPtr(true),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "role-granted")
	f.communities.AssertNotCalled(t, "UpsertGuestPermission", mock.Anything, mock.Anything)
	assert.Empty(t, f.resolver.invalidatedCommunities)
}

func TestSetGuestPermission_InvalidCommunityID(t *testing.T) {
	f := newCommunityFixture()

	_, err := f.svc.SetGuestPermission(context.Background(), uuid.New(), "not-a-uuid", SetGuestPermissionRequest{
		FeatureName: access.ModuleAnnouncements,
		IsEnabled:   boolPtr(true),
	})

	require.Error(t, err)
}
