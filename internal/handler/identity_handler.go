package handler

import (
	"net/http"
	"strconv"

	"backend/internal/access"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	identityService service.IdentityService
}

// NewIdentityHandler sets up the routing dependencies for identity endpoints
func NewIdentityHandler(identityService service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *IdentityHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/refresh", h.RefreshToken)
	router.POST("/logout", h.Logout)

	// Temp route for first-admin creation
	router.POST("/bootstrap-admin", h.BootstrapAdmin)

	// Me routes (authenticated — any valid session)
	me := router.Group("/api/me")
	me.Use(middleware.RequireAuth())
	{
		me.GET("", h.GetMe)
		me.PUT("/profile", h.UpdateProfile)
		me.PUT("/acting-role", h.SetActingRole)
	}

	// Administrative identity listing
	identities := router.Group("/api/identities")
	{
		identities.GET("", middleware.Protect(middleware.Requirements{
			Level:    access.LevelCommunityAdmin,
			Function: access.FunctionAdministration,
		}), h.ListIdentities)
		identities.GET("/:id", middleware.Protect(middleware.Requirements{
			Level:    access.LevelCommunityAdmin,
			Function: access.FunctionAdministration,
		}), h.GetIdentityByID)
	}
}

// Register creates a new identity account
// @Summary      Register
// @Description  Creates a new identity. Role assignments are granted separately by an administrator.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration Payload"
// @Success      201      {object}  response.Response{data=service.IdentityResponse}
// @Failure      400      {object}  response.Response
// @Router       /register [post]
func (h *IdentityHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	identity, err := h.identityService.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, identity))
}

// BootstrapAdmin creates a state admin without authentication
// @Summary      Bootstrap admin
// @Description  Creates a state_admin identity without requiring authentication. FOR DEVELOPMENT ONLY.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Bootstrap Payload"
// @Success      201      {object}  response.Response{data=service.IdentityResponse}
// @Failure      400      {object}  response.Response
// @Router       /bootstrap-admin [post]
func (h *IdentityHandler) BootstrapAdmin(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	identity, err := h.identityService.BootstrapAdmin(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, identity))
}

// Login exchanges credentials for tokens
// @Summary      Login
// @Description  Validates credentials and issues access and refresh tokens as HttpOnly cookies
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Payload"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *IdentityHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.identityService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	// Set tokens as HttpOnly cookies
	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// RefreshToken handles POST /refresh to issue new access and refresh tokens
// @Summary      Refresh token
// @Description  Issues a new access token and refresh token using a valid refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest   true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /refresh [post]
func (h *IdentityHandler) RefreshToken(c *gin.Context) {
	// Try reading refresh_token from cookie first, fallback to body
	refreshToken, cookieErr := c.Cookie("refresh_token")
	var req service.RefreshTokenRequest

	if cookieErr != nil || refreshToken == "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
			return
		}
	} else {
		req = service.RefreshTokenRequest{RefreshToken: refreshToken}
	}

	tokenRes, err := h.identityService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	middleware.SetTokenCookies(c, tokenRes.Token, tokenRes.RefreshToken)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout handles POST /logout to revoke the refresh token and clear cookies
func (h *IdentityHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie("refresh_token"); err == nil {
		_ = h.identityService.Logout(c.Request.Context(), refreshToken)
	}
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe returns the authenticated identity's profile
func (h *IdentityHandler) GetMe(c *gin.Context) {
	identityID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	identity, err := h.identityService.GetByID(c.Request.Context(), identityID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Identity not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, identity))
}

// UpdateProfile updates the authenticated identity's profile fields
func (h *IdentityHandler) UpdateProfile(c *gin.Context) {
	identityID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	identity, err := h.identityService.UpdateProfile(c.Request.Context(), identityID.String(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, identity))
}

// SetActingRole pins the dashboard role for a multi-role identity
// @Summary      Switch acting role
// @Description  Selects which dashboard renders. Does not change permission checks.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SetActingRoleRequest  true  "Acting Role"
// @Success      200      {object}  response.Response{data=service.IdentityResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/me/acting-role [put]
func (h *IdentityHandler) SetActingRole(c *gin.Context) {
	identityID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.SetActingRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	identity, err := h.identityService.SetActingRole(c.Request.Context(), identityID.String(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, identity))
}

// ListIdentities handles GET /api/identities with pagination controls
func (h *IdentityHandler) ListIdentities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	identities, total, err := h.identityService.ListIdentities(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": identities,
		"total": total,
		"page":  page,
		"limit": limit,
	}))
}

// GetIdentityByID returns one identity by id
func (h *IdentityHandler) GetIdentityByID(c *gin.Context) {
	identity, err := h.identityService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, identity))
}
