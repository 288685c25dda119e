package handler

import (
	"errors"
	"net/http"

	"backend/internal/access"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type HouseholdHandler struct {
	householdService service.HouseholdService
}

func NewHouseholdHandler(householdService service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService}
}

func (h *HouseholdHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Household delegation is self-service for resident-tier identities
	household := router.Group("/api/household")
	household.Use(middleware.RequireLevel(access.LevelResident))
	{
		household.GET("", h.ListAccounts)
		household.POST("/spouse", h.CreateSpouseAccount)
		household.POST("/tenants", h.CreateTenantAccount)
		household.PUT("/:id/permissions", h.UpdatePermissions)
		household.DELETE("/:id", h.RemoveAccount)
	}
}

// ListAccounts returns the caller's active household links
// @Summary      List household accounts
// @Tags         household
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.HouseholdLinkResponse}
// @Router       /api/household [get]
func (h *HouseholdHandler) ListAccounts(c *gin.Context) {
	primaryID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	links, err := h.householdService.ListAccounts(c.Request.Context(), primaryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, links))
}

// CreateSpouseAccount provisions a spouse linked account
// @Summary      Create spouse account
// @Description  Provisions a linked spouse identity. Fails if an active spouse link already exists.
// @Tags         household
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateLinkedAccountRequest  true  "Spouse Payload"
// @Success      201      {object}  response.Response{data=service.HouseholdLinkResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/household/spouse [post]
func (h *HouseholdHandler) CreateSpouseAccount(c *gin.Context) {
	primaryID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.CreateLinkedAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	link, err := h.householdService.CreateSpouseAccount(c.Request.Context(), primaryID, req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRelationship) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, link))
}

// CreateTenantAccount provisions a tenant linked account
// @Summary      Create tenant account
// @Description  Provisions a linked tenant identity with default grants merged with overrides. Multiple tenants are permitted.
// @Tags         household
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateLinkedAccountRequest  true  "Tenant Payload"
// @Success      201      {object}  response.Response{data=service.HouseholdLinkResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/household/tenants [post]
func (h *HouseholdHandler) CreateTenantAccount(c *gin.Context) {
	primaryID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.CreateLinkedAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	link, err := h.householdService.CreateTenantAccount(c.Request.Context(), primaryID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, link))
}

// UpdatePermissions merges a partial grant set into a link's permissions
func (h *HouseholdHandler) UpdatePermissions(c *gin.Context) {
	primaryID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var patch service.HouseholdPermissionsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	link, err := h.householdService.UpdatePermissions(c.Request.Context(), primaryID, c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, service.ErrNotLinkPrimary) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, link))
}

// RemoveAccount soft-deactivates a household link
func (h *HouseholdHandler) RemoveAccount(c *gin.Context) {
	primaryID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	if err := h.householdService.RemoveAccount(c.Request.Context(), primaryID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotLinkPrimary) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Household link deactivated"}))
}
