package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
)

// ListRoles returns the defined RBAC roles.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role list failed", err)
		return
	}

	response.Success(c, gin.H{"roles": roles})
}

// GetRolePolicies returns the policies attached to one role.
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeInternal, "policy list failed", err)
		return
	}

	response.Success(c, gin.H{"policies": policies})
}

// RolePolicyRequest grants or revokes one policy on a role.
type RolePolicyRequest struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantRolePolicy attaches a policy to a role, creating the role if
// needed.
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(c.Param("role"), req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "policy grant failed", err)
		return
	}

	response.Success(c, gin.H{"granted": true})
}

// RevokeRolePolicy detaches a policy from a role.
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(c.Param("role"), req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "policy revoke failed", err)
		return
	}

	response.Success(c, gin.H{"revoked": true})
}

// SetUserRolesRequest replaces a user's role grants.
type SetUserRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetUserRoles replaces the role set of one user.
func (h *Handler) SetUserRoles(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SetUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AuthzService.SetUserRoles(userID, req.Roles); err != nil {
		respondError(c, response.CodeInternal, "role assignment failed", err)
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// GetUserRoles returns the roles granted to one user.
func (h *Handler) GetUserRoles(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}

	response.Success(c, gin.H{"roles": roles})
}
