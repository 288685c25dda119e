package access

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
	return NewCache(DefaultTTL, clock.Now), clock
}

func TestCacheGetMiss(t *testing.T) {
	cache, _ := newTestCache()

	_, ok := cache.Get(uuid.New())
	assert.False(t, ok)
}

func TestCachePutGet(t *testing.T) {
	cache, _ := newTestCache()
	snap := snapshotWithRoles(RoleResident)
	cache.Put(snap)

	got, ok := cache.Get(snap.IdentityID)
	require.True(t, ok)
	assert.Equal(t, snap.IdentityID, got.IdentityID)
	assert.Equal(t, []Role{RoleResident}, got.Roles)
}

func TestCacheExpiry(t *testing.T) {
	cache, clock := newTestCache()
	snap := snapshotWithRoles(RoleResident)
	cache.Put(snap)

	clock.Advance(DefaultTTL - time.Second)
	_, ok := cache.Get(snap.IdentityID)
	assert.True(t, ok, "entry must survive just under the TTL")

	clock.Advance(2 * time.Second)
	_, ok = cache.Get(snap.IdentityID)
	assert.False(t, ok, "entry must expire after the TTL")
}

func TestCachePutReplacesWholeEntry(t *testing.T) {
	cache, _ := newTestCache()
	snap := snapshotWithRoles(RoleResident)
	snap.ModuleFlags[ModuleMarketplace] = true
	cache.Put(snap)

	// A later resolve drops the role and the flag together. The old entry
	// must not leak through, even partially.
	replacement := Snapshot{
		IdentityID:       snap.IdentityID,
		Roles:            []Role{RoleGuest},
		ModuleFlags:      map[string]bool{},
		GuestPermissions: map[string]bool{},
	}
	cache.Put(replacement)

	got, ok := cache.Get(snap.IdentityID)
	require.True(t, ok)
	assert.Equal(t, []Role{RoleGuest}, got.Roles)
	assert.False(t, got.IsModuleEnabled(ModuleMarketplace))
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache()
	snap := snapshotWithRoles(RoleResident)
	other := snapshotWithRoles(RoleGuest)
	cache.Put(snap)
	cache.Put(other)

	cache.Invalidate(snap.IdentityID)

	_, ok := cache.Get(snap.IdentityID)
	assert.False(t, ok)
	_, ok = cache.Get(other.IdentityID)
	assert.True(t, ok, "unrelated entries stay cached")
}

func TestCacheInvalidateCommunity(t *testing.T) {
	cache, _ := newTestCache()
	communityID := uuid.New()
	otherCommunity := uuid.New()

	member := snapshotWithRoles(RoleResident)
	member.CommunityID = &communityID
	outsider := snapshotWithRoles(RoleResident)
	outsider.CommunityID = &otherCommunity
	unscoped := snapshotWithRoles(RoleStateAdmin)

	cache.Put(member)
	cache.Put(outsider)
	cache.Put(unscoped)

	cache.InvalidateCommunity(communityID)

	_, ok := cache.Get(member.IdentityID)
	assert.False(t, ok, "community members must be dropped")
	_, ok = cache.Get(outsider.IdentityID)
	assert.True(t, ok)
	_, ok = cache.Get(unscoped.IdentityID)
	assert.True(t, ok)
}

func TestCachePurge(t *testing.T) {
	cache, _ := newTestCache()
	snap := snapshotWithRoles(RoleResident)
	cache.Put(snap)

	cache.Purge()

	_, ok := cache.Get(snap.IdentityID)
	assert.False(t, ok)
}

func TestCacheNilClockDefaultsToWallClock(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	snap := snapshotWithRoles(RoleResident)
	cache.Put(snap)

	_, ok := cache.Get(snap.IdentityID)
	assert.True(t, ok)
}
