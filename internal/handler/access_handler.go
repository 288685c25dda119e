package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccessHandler struct {
	accessService service.AccessService
}

func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

func (h *AccessHandler) RegisterRoutes(router *gin.RouterGroup) {
	acl := router.Group("/api/access")
	acl.Use(middleware.RequireAuth())
	{
		acl.GET("/me", h.ResolveMe)
		acl.GET("/diagnostics", h.Diagnostics)
	}
}

// ResolveMe returns the full resolved access view for the session
// @Summary      Resolve my access
// @Description  Returns roles, permission level, reachable functions and scopes, and enabled modules for the authenticated identity.
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ResolvedAccess}
// @Failure      503  {object}  response.Response
// @Router       /api/access/me [get]
func (h *AccessHandler) ResolveMe(c *gin.Context) {
	identityID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	resolved, err := h.accessService.Resolve(c.Request.Context(), identityID)
	if err != nil {
		// Fail closed but retryable: the client must not treat this as a
		// definitive denial.
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "access resolution temporarily unavailable"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, resolved))
}

// Diagnostics explains why checks may deny: missing roles, missing
// community/district assignment.
func (h *AccessHandler) Diagnostics(c *gin.Context) {
	identityID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	diag, err := h.accessService.Describe(c.Request.Context(), identityID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "access resolution temporarily unavailable"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, diag))
}
