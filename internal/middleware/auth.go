package middleware

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"

	"backend/internal/access"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, refresh_token: 7 days
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// SnapshotProvider resolves permission snapshots for guards. Implemented by
// the access service; set via InitAccessMiddleware.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, identityID uuid.UUID) (access.Snapshot, error)
}

var snapshots SnapshotProvider

// InitAccessMiddleware sets the snapshot provider for the guard middlewares
func InitAccessMiddleware(provider SnapshotProvider) {
	snapshots = provider
}

const identityIDKey = "identityID"

// CurrentIdentityID returns the authenticated identity id set by RequireAuth.
func CurrentIdentityID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(identityIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// parseIdentity extracts and validates the JWT (cookie first, Authorization
// header fallback) and returns the subject identity id.
func parseIdentity(c *gin.Context) (uuid.UUID, error) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return uuid.Nil, access.ErrAuthenticationRequired
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return uuid.Nil, access.ErrAuthenticationRequired
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, access.ErrAuthenticationRequired
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, access.ErrAuthenticationRequired
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, access.ErrAuthenticationRequired
	}

	identityID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, access.ErrAuthenticationRequired
	}

	return identityID, nil
}

// RequireAuth validates the session and stores the identity id in the
// context. Missing or invalid credentials yield a login prompt, never a
// permission denial.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identityID, err := parseIdentity(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, access.ErrAuthenticationRequired.Error()))
			return
		}
		c.Set(identityIDKey, identityID)
		c.Next()
	}
}

// Requirements composes multiple checks; every supplied dimension must pass
// and zero-valued dimensions auto-pass.
type Requirements struct {
	Level    int
	Function access.Function
	Scope    access.Scope
	Module   string
}

// Protect authenticates and enforces all supplied requirements against the
// identity's resolved snapshot. A snapshot load failure denies with a
// retryable 503 — fail-closed, but distinguishable from a real rejection.
func Protect(req Requirements) gin.HandlerFunc {
	return func(c *gin.Context) {
		identityID, err := parseIdentity(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, access.ErrAuthenticationRequired.Error()))
			return
		}
		c.Set(identityIDKey, identityID)

		if snapshots == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "access middleware not initialized"))
			return
		}

		snap, err := snapshots.Snapshot(c.Request.Context(), identityID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "permission check temporarily unavailable, retry shortly"))
			return
		}

		if req.Level > 0 && !snap.CanAccessLevel(req.Level) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
				access.ErrInsufficientRole.Error()+": requires level "+strconv.Itoa(req.Level)))
			return
		}

		if req.Function != "" && !snap.CanAccessFunction(req.Function) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
				access.ErrInsufficientFunction.Error()+": requires function '"+string(req.Function)+"'"))
			return
		}

		if req.Scope != "" && !snap.CanAccessScope(req.Scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
				access.ErrInsufficientScope.Error()+": requires scope '"+string(req.Scope)+"'"))
			return
		}

		if req.Module != "" && !snap.IsModuleEnabled(req.Module) {
			msg := "module '" + req.Module + "' is not enabled"
			if info, ok := access.LookupModule(req.Module); ok && info.CommunityControlled && snap.CommunityID == nil {
				// Remediation hint so admins can self-diagnose scope problems
				msg = access.ErrProfileIncomplete.Error()
			}
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, msg))
			return
		}

		c.Next()
	}
}

// RequireLevel enforces a minimum permission level across the identity's
// active role union.
func RequireLevel(level int) gin.HandlerFunc {
	return Protect(Requirements{Level: level})
}

// RequireFunction enforces access to one functional area.
func RequireFunction(fn access.Function) gin.HandlerFunc {
	return Protect(Requirements{Function: fn})
}

// RequireScope enforces geographic scope.
func RequireScope(scope access.Scope) gin.HandlerFunc {
	return Protect(Requirements{Scope: scope})
}

// RequireModule enforces module visibility.
func RequireModule(module string) gin.HandlerFunc {
	return Protect(Requirements{Module: module})
}
