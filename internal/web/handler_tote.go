package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/totelink/totelink/internal/domain"
)

type createToteRequest struct {
	UserID      string  `json:"user_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Icon        string  `json:"icon"`
}

func (s *Server) handleListTotes(c *gin.Context) {
	totes, err := s.service.ListTotes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if totes == nil {
		totes = []*domain.Tote{}
	}
	c.JSON(http.StatusOK, totes)
}

func (s *Server) handleCreateTote(c *gin.Context) {
	var req createToteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	tote, err := s.service.CreateTote(c.Request.Context(), req.UserID, req.Name, req.Description, req.Category, req.Icon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tote)
}

func (s *Server) handleGetTote(c *gin.Context) {
	tote, err := s.service.GetTote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tote)
}

func (s *Server) handleUpdateTote(c *gin.Context) {
	var patch domain.TotePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	tote, err := s.service.UpdateTote(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tote)
}

func (s *Server) handleDeleteTote(c *gin.Context) {
	if err := s.service.DeleteTote(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
