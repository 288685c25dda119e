package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/access"
	"backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type identityFixture struct {
	identities  *mockIdentityRepo
	assignments *mockAssignmentRepo
	tokens      *mockTokenRepo
	svc         IdentityService
}

func newIdentityFixture() *identityFixture {
	f := &identityFixture{
		identities:  new(mockIdentityRepo),
		assignments: new(mockAssignmentRepo),
		tokens:      new(mockTokenRepo),
	}
	f.svc = NewIdentityService(f.identities, f.assignments, f.tokens, passthroughTx{})
	return f
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestRegister_CreatesNoRoleAssignments(t *testing.T) {
	f := newIdentityFixture()

	f.identities.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.identities.On("Create", mock.Anything, mock.AnythingOfType("*model.Identity")).Return(nil)

	res, err := f.svc.Register(context.Background(), RegisterRequest{
		FullName: "New Resident",
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.True(t, res.IsActive)
	// Roles come from an administrator later; a fresh account passes no check.
	f.assignments.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newIdentityFixture()

	f.identities.On("GetByEmail", mock.Anything, "taken@example.com").Return(&model.Identity{ID: uuid.New()}, nil)

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		FullName: "Someone",
		Email:    "taken@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestBootstrapAdmin_AssignsStateAdmin(t *testing.T) {
	f := newIdentityFixture()

	f.identities.On("GetByEmail", mock.Anything, "admin@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.identities.On("Create", mock.Anything, mock.AnythingOfType("*model.Identity")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Identity).ID = uuid.New()
		}).
		Return(nil)
	f.assignments.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.RoleAssignment) bool {
		return a.Role == string(access.RoleStateAdmin) && a.IsActive
	})).Return(nil)

	_, err := f.svc.BootstrapAdmin(context.Background(), RegisterRequest{
		FullName: "Bootstrap Admin",
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	f.assignments.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	f := newIdentityFixture()
	identity := &model.Identity{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Password: hashPassword(t, "secret123"),
		IsActive: true,
	}

	f.identities.On("GetByEmail", mock.Anything, identity.Email).Return(identity, nil)
	f.tokens.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: identity.Email, Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotEmpty(t, res.RefreshToken)

	// The access token carries the identity id as its subject.
	parsed, err := jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, identity.ID.String(), claims["sub"])
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Password: hashPassword(t, "secret123"),
		IsActive: true,
	}

	f.identities.On("GetByEmail", mock.Anything, identity.Email).Return(identity, nil)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: identity.Email, Password: "wrong"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
	f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Password: hashPassword(t, "secret123"),
		IsActive: false,
	}

	f.identities.On("GetByEmail", mock.Anything, identity.Email).Return(identity, nil)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: identity.Email, Password: "secret123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestRefreshToken_RotatesToken(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{ID: uuid.New(), Email: "user@example.com", IsActive: true}
	old := &model.RefreshToken{
		IdentityID: identity.ID,
		Token:      "old-refresh-token",
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	f.tokens.On("GetByToken", mock.Anything, old.Token).Return(old, nil)
	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.tokens.On("Delete", mock.Anything, old.Token).Return(nil)
	f.tokens.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	res, err := f.svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: old.Token})
	require.NoError(t, err)

	assert.NotEqual(t, old.Token, res.RefreshToken, "the old refresh token must not be reusable")
	f.tokens.AssertCalled(t, "Delete", mock.Anything, old.Token)
}

func TestRefreshToken_Expired(t *testing.T) {
	f := newIdentityFixture()
	old := &model.RefreshToken{
		IdentityID: uuid.New(),
		Token:      "stale-token",
		ExpiresAt:  time.Now().Add(-time.Minute),
	}

	f.tokens.On("GetByToken", mock.Anything, old.Token).Return(old, nil)
	f.tokens.On("Delete", mock.Anything, old.Token).Return(nil)

	_, err := f.svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: old.Token})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSetActingRole(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{ID: uuid.New(), IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.assignments.On("ListActiveByIdentity", mock.Anything, identity.ID).Return([]model.RoleAssignment{
		{IdentityID: identity.ID, Role: string(access.RoleResident), IsActive: true},
		{IdentityID: identity.ID, Role: string(access.RoleSecurityOfficer), IsActive: true},
	}, nil)
	f.identities.On("Update", mock.Anything, mock.MatchedBy(func(i *model.Identity) bool {
		return i.ActingRole == string(access.RoleSecurityOfficer)
	})).Return(nil)

	res, err := f.svc.SetActingRole(context.Background(), identity.ID.String(), SetActingRoleRequest{
		Role: string(access.RoleSecurityOfficer),
	})
	require.NoError(t, err)
	assert.Equal(t, string(access.RoleSecurityOfficer), res.ActingRole)
}

func TestSetActingRole_RoleNotHeld(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{ID: uuid.New(), IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)
	f.assignments.On("ListActiveByIdentity", mock.Anything, identity.ID).Return([]model.RoleAssignment{
		{IdentityID: identity.ID, Role: string(access.RoleResident), IsActive: true},
	}, nil)

	_, err := f.svc.SetActingRole(context.Background(), identity.ID.String(), SetActingRoleRequest{
		Role: string(access.RoleStateAdmin),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "role not held")
	f.identities.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetActingRole_UnknownRole(t *testing.T) {
	f := newIdentityFixture()
	identity := &model.Identity{ID: uuid.New(), IsActive: true}

	f.identities.On("GetByID", mock.Anything, identity.ID.String()).Return(identity, nil)

	_, err := f.svc.SetActingRole(context.Background(), identity.ID.String(), SetActingRoleRequest{
		Role: "superuser",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
