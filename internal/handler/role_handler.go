package handler

import (
	"net/http"

	"backend/internal/access"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Role assignment mutations require community admin or above
	adminOnly := middleware.Protect(middleware.Requirements{
		Level:    access.LevelCommunityAdmin,
		Function: access.FunctionAdministration,
	})

	roles := router.Group("/api/identities/:id/roles")
	roles.Use(adminOnly)
	{
		roles.GET("", h.ListAssignments)
		roles.POST("", h.AssignRole)
		roles.DELETE("/:role", h.DeactivateRole)
	}

	// Role catalog is readable by any authenticated identity
	router.GET("/api/roles", middleware.RequireAuth(), h.ListRoleCatalog)
}

// ListAssignments returns all role assignments of an identity
// @Summary      List role assignments
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Identity ID"
// @Success      200  {object}  response.Response{data=[]service.RoleAssignmentResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/identities/{id}/roles [get]
func (h *RoleHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.roleService.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignments))
}

// AssignRole grants (or reactivates) a role assignment
// @Summary      Assign role
// @Description  Grants a role to an identity. Re-assigning an existing role reactivates it.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Identity ID"
// @Param        payload  body      service.AssignRoleRequest   true  "Assignment Payload"
// @Success      201      {object}  response.Response{data=service.RoleAssignmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/identities/{id}/roles [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	actorID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	assignment, err := h.roleService.AssignRole(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, assignment))
}

// DeactivateRole flips an assignment inactive; it stops counting toward any
// access decision once the identity's cached snapshot is invalidated.
func (h *RoleHandler) DeactivateRole(c *gin.Context) {
	actorID, ok := middleware.CurrentIdentityID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not found in context"))
		return
	}

	if err := h.roleService.DeactivateRole(c.Request.Context(), actorID, c.Param("id"), c.Param("role")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deactivated"}))
}

// ListRoleCatalog exposes the role vocabulary with levels and grants
func (h *RoleHandler) ListRoleCatalog(c *gin.Context) {
	catalog := make([]gin.H, 0)
	for _, role := range access.AllRoles() {
		grant := access.GrantFor(role)
		functions := make([]string, 0, len(grant.Functions))
		for _, fn := range grant.Functions {
			functions = append(functions, string(fn))
		}
		catalog = append(catalog, gin.H{
			"role":      string(role),
			"level":     grant.Level,
			"functions": functions,
			"modules":   grant.Modules,
		})
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, catalog))
}
