package handler

import (
	"net/http"

	"backend/internal/access"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	communityService service.CommunityService
}

func NewCommunityHandler(communityService service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

func (h *CommunityHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.Protect(middleware.Requirements{
		Level:    access.LevelCommunityAdmin,
		Function: access.FunctionAdministration,
	})

	communities := router.Group("/api/communities/:id")
	{
		// Flag state is readable by any authenticated identity; only admins mutate
		communities.GET("/modules", middleware.RequireAuth(), h.ListModuleFlags)
		communities.PUT("/modules", adminOnly, h.SetModuleFlag)
		communities.GET("/guest-permissions", middleware.RequireAuth(), h.ListGuestPermissions)
		communities.PUT("/guest-permissions", adminOnly, h.SetGuestPermission)
	}
}

// ListModuleFlags returns the community-controlled module catalog with state
// @Summary      List module flags
// @Tags         communities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Community ID"
// @Success      200  {object}  response.Response{data=[]service.ModuleFlagResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/communities/{id}/modules [get]
func (h *CommunityHandler) ListModuleFlags(c *gin.Context) {
	flags, err := h.communityService.ListModuleFlags(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, flags))
}

// SetModuleFlag toggles one community-controlled module
// @Summary      Set module flag
// @Description  Enables or disables a community-controlled module. Cached permission snapshots for the community are invalidated immediately.
// @Tags         communities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Community ID"
// @Param        payload  body      service.SetModuleFlagRequest   true  "Flag Payload"
// @Success      200      {object}  response.Response{data=service.ModuleFlagResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/communities/{id}/modules [put]
func (h *CommunityHandler) SetModuleFlag(c *gin.Context) {
	actorID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.SetModuleFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	flag, err := h.communityService.SetModuleFlag(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, flag))
}

// ListGuestPermissions returns the guest overlay state for a community
func (h *CommunityHandler) ListGuestPermissions(c *gin.Context) {
	perms, err := h.communityService.ListGuestPermissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// SetGuestPermission toggles one guest overlay feature
func (h *CommunityHandler) SetGuestPermission(c *gin.Context) {
	actorID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.SetGuestPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	perm, err := h.communityService.SetGuestPermission(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, perm))
}
