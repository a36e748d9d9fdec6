package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/totelink/totelink/internal/domain"
)

type createItemRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListItems(c *gin.Context) {
	items, err := s.service.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []*domain.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleCreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	item, err := s.service.CreateItem(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var patch domain.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	item, err := s.service.UpdateItem(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// handleDeleteItem always returns 204; deleting an id that no longer exists
// is fine from the client's point of view.
func (s *Server) handleDeleteItem(c *gin.Context) {
	if err := s.service.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
