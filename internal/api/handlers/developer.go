package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// PromoteDeveloper handles POST /v1/developers/:uuid.
func (s *Server) PromoteDeveloper(c *gin.Context) {
	developerUUID := c.Param("uuid")
	if !domain.CanManageDeveloper(principalFrom(c), developerUUID) {
		c.Error(apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to manage this developer"))
		return
	}
	if err := s.developers.Promote(c.Request.Context(), developerUUID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusCreated)
}

// DemoteDeveloper handles DELETE /v1/developers/:uuid.
func (s *Server) DemoteDeveloper(c *gin.Context) {
	developerUUID := c.Param("uuid")
	if !domain.CanManageDeveloper(principalFrom(c), developerUUID) {
		c.Error(apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to manage this developer"))
		return
	}
	if err := s.developers.Demote(c.Request.Context(), developerUUID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
