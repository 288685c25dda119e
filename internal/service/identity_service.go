package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"regexp"
	"time"

	"backend/internal/access"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type RegisterRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"required,min=6"`
	CommunityID string `json:"community_id"`
	DistrictID  string `json:"district_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	Language         string `json:"language"`
	Theme            string `json:"theme"`
	Address          string `json:"address"`
	VehiclePlates    string `json:"vehicle_plates"`
	EmergencyContact string `json:"emergency_contact"`
}

type SetActingRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// IdentityResponse returns an Identity without exposing sensitive data
type IdentityResponse struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Language         string    `json:"language"`
	Theme            string    `json:"theme"`
	Address          string    `json:"address"`
	VehiclePlates    string    `json:"vehicle_plates"`
	EmergencyContact string    `json:"emergency_contact"`
	CommunityID      string    `json:"community_id,omitempty"`
	DistrictID       string    `json:"district_id,omitempty"`
	ActingRole       string    `json:"acting_role"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

// IdentityService defines the interface for account lifecycle and session
// business logic
type IdentityService interface {
	Register(ctx context.Context, req RegisterRequest) (*IdentityResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetByID(ctx context.Context, id string) (*IdentityResponse, error)
	ListIdentities(ctx context.Context, page, limit int) ([]IdentityResponse, int64, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*IdentityResponse, error)
	SetActingRole(ctx context.Context, id string, req SetActingRoleRequest) (*IdentityResponse, error)
	BootstrapAdmin(ctx context.Context, req RegisterRequest) (*IdentityResponse, error)
}

type identityService struct {
	identities  repository.IdentityRepository
	assignments repository.RoleAssignmentRepository
	tokens      repository.TokenRepository
	tx          repository.TransactionManager
}

// NewIdentityService returns a new instance of IdentityService
func NewIdentityService(
	identities repository.IdentityRepository,
	assignments repository.RoleAssignmentRepository,
	tokens repository.TokenRepository,
	tx repository.TransactionManager,
) IdentityService {
	return &identityService{
		identities:  identities,
		assignments: assignments,
		tokens:      tokens,
		tx:          tx,
	}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Helper: parse model to standard json API response
func mapToIdentityResponse(identity *model.Identity) *IdentityResponse {
	res := &IdentityResponse{
		ID:               identity.ID,
		FullName:         identity.FullName,
		Email:            identity.Email,
		Phone:            identity.Phone,
		Language:         identity.Language,
		Theme:            identity.Theme,
		Address:          identity.Address,
		VehiclePlates:    identity.VehiclePlates,
		EmergencyContact: identity.EmergencyContact,
		ActingRole:       identity.ActingRole,
		IsActive:         identity.IsActive,
		CreatedAt:        identity.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        identity.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if identity.CommunityID != nil {
		res.CommunityID = identity.CommunityID.String()
	}
	if identity.DistrictID != nil {
		res.DistrictID = identity.DistrictID.String()
	}
	return res
}

func (s *identityService) buildIdentity(req RegisterRequest) (*model.Identity, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, errors.New("invalid email format")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	identity := &model.Identity{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		IsActive: true,
	}

	if req.CommunityID != "" {
		communityID, parseErr := uuid.Parse(req.CommunityID)
		if parseErr != nil {
			return nil, errors.New("invalid community_id")
		}
		identity.CommunityID = &communityID
	}
	if req.DistrictID != "" {
		districtID, parseErr := uuid.Parse(req.DistrictID)
		if parseErr != nil {
			return nil, errors.New("invalid district_id")
		}
		identity.DistrictID = &districtID
	}

	return identity, nil
}

// Register creates a new identity. No role assignment is created here: an
// administrator grants roles afterwards, so a fresh account cannot pass any
// access check.
func (s *identityService) Register(ctx context.Context, req RegisterRequest) (*IdentityResponse, error) {
	if _, err := s.identities.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	identity, err := s.buildIdentity(req)
	if err != nil {
		return nil, err
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	return mapToIdentityResponse(identity), nil
}

// BootstrapAdmin creates a state_admin identity without authentication.
// FOR DEVELOPMENT ONLY, mirrored by the /bootstrap-admin route.
func (s *identityService) BootstrapAdmin(ctx context.Context, req RegisterRequest) (*IdentityResponse, error) {
	if _, err := s.identities.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	identity, err := s.buildIdentity(req)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.identities.Create(txCtx, identity); createErr != nil {
			return createErr
		}
		assignment := &model.RoleAssignment{
			IdentityID: identity.ID,
			Role:       string(access.RoleStateAdmin),
			IsActive:   true,
			Notes:      "bootstrap admin",
		}
		return s.assignments.Upsert(txCtx, assignment)
	})
	if err != nil {
		return nil, err
	}

	return mapToIdentityResponse(identity), nil
}

func (s *identityService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	identity, err := s.identities.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !identity.IsActive {
		return nil, errors.New("account is deactivated")
	}

	return s.issueTokens(ctx, identity)
}

// RefreshToken rotates the refresh token and issues a fresh access token.
func (s *identityService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	row, err := s.tokens.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if time.Now().After(row.ExpiresAt) {
		_ = s.tokens.Delete(ctx, row.Token)
		return nil, errors.New("refresh token expired")
	}

	identity, err := s.identities.GetByID(ctx, row.IdentityID.String())
	if err != nil || !identity.IsActive {
		return nil, errors.New("account unavailable")
	}

	if err := s.tokens.Delete(ctx, row.Token); err != nil {
		return nil, errors.New("failed to rotate refresh token")
	}

	return s.issueTokens(ctx, identity)
}

func (s *identityService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Delete(ctx, refreshToken)
}

func (s *identityService) issueTokens(ctx context.Context, identity *model.Identity) (*TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   identity.ID.String(),
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
	})

	// Same fallback strategy as the middleware
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.New("failed to generate refresh token")
	}
	refresh := hex.EncodeToString(raw)

	if err := s.tokens.Create(ctx, &model.RefreshToken{
		IdentityID: identity.ID,
		Token:      refresh,
		ExpiresAt:  now.Add(7 * 24 * time.Hour),
	}); err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &TokenResponse{Token: tokenString, RefreshToken: refresh}, nil
}

func (s *identityService) GetByID(ctx context.Context, id string) (*IdentityResponse, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("identity not found")
	}
	return mapToIdentityResponse(identity), nil
}

func (s *identityService) ListIdentities(ctx context.Context, page, limit int) ([]IdentityResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	identities, total, err := s.identities.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		responses = append(responses, *mapToIdentityResponse(&identity))
	}

	return responses, total, nil
}

func (s *identityService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*IdentityResponse, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("identity not found")
	}

	if req.FullName != "" {
		identity.FullName = req.FullName
	}
	if req.Phone != "" {
		identity.Phone = req.Phone
	}
	if req.Language != "" {
		identity.Language = req.Language
	}
	if req.Theme != "" {
		identity.Theme = req.Theme
	}
	if req.Address != "" {
		identity.Address = req.Address
	}
	if req.VehiclePlates != "" {
		identity.VehiclePlates = req.VehiclePlates
	}
	if req.EmergencyContact != "" {
		identity.EmergencyContact = req.EmergencyContact
	}

	if err := s.identities.Update(ctx, identity); err != nil {
		return nil, err
	}

	return mapToIdentityResponse(identity), nil
}

// SetActingRole pins which dashboard renders for a multi-role identity. The
// chosen role must be one the identity actively holds; it never changes the
// permission union used by guards.
func (s *identityService) SetActingRole(ctx context.Context, id string, req SetActingRoleRequest) (*IdentityResponse, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("identity not found")
	}

	if !access.Valid(access.Role(req.Role)) {
		return nil, errors.New("unknown role: " + req.Role)
	}

	active, err := s.assignments.ListActiveByIdentity(ctx, identity.ID)
	if err != nil {
		return nil, errors.New("failed to load role assignments")
	}

	held := false
	for _, a := range active {
		if a.Role == req.Role {
			held = true
			break
		}
	}
	if !held {
		return nil, errors.New("role not held: acting role must be one of your active roles")
	}

	identity.ActingRole = req.Role
	if err := s.identities.Update(ctx, identity); err != nil {
		return nil, err
	}

	return mapToIdentityResponse(identity), nil
}
