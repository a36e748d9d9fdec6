package web

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/totelink/totelink/internal/domain"
	"github.com/totelink/totelink/internal/service"
)

const maxImageSize = 50 * 1024 * 1024 // 50 MB

func (s *Server) handleListToteImages(c *gin.Context) {
	images, err := s.service.ListToteImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if images == nil {
		images = []*domain.ToteImage{}
	}
	c.JSON(http.StatusOK, images)
}

func (s *Server) handleUploadToteImage(c *gin.Context) {
	header, userID, ok := s.uploadFields(c)
	if !ok {
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return
	}
	defer closeWithLog(f, "upload file", s.logger)

	img, err := s.service.UploadToteImage(c.Request.Context(), c.Param("id"), userID, header.Filename, f, header.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (s *Server) handleDeleteToteImage(c *gin.Context) {
	if err := s.service.DeleteToteImage(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleFetchImageFile streams raw blob bytes. The wildcard keeps the slash
// inside stored paths like {toteId}/{imageId}.jpg.
func (s *Server) handleFetchImageFile(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")

	reader, info, err := s.service.FetchImage(c.Request.Context(), path)
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, map[string]string{
		"ETag": info.ETag,
	})
}

func (s *Server) handleListItemImages(c *gin.Context) {
	images, err := s.service.ListItemImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if images == nil {
		images = []*domain.ItemImage{}
	}
	c.JSON(http.StatusOK, images)
}

func (s *Server) handleUploadItemImage(c *gin.Context) {
	header, userID, ok := s.uploadFields(c)
	if !ok {
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return
	}
	defer closeWithLog(f, "upload file", s.logger)

	img, err := s.service.UploadItemImage(c.Request.Context(), c.Param("id"), userID, header.Filename, f, header.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (s *Server) handleDeleteItemImage(c *gin.Context) {
	if err := s.service.DeleteItemImage(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadFields pulls the multipart file and owner identity out of an image
// upload request, rejecting the request when either is missing.
func (s *Server) uploadFields(c *gin.Context) (*multipart.FileHeader, string, bool) {
	if c.Request.ContentLength > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return nil, "", false
	}

	header, err := c.FormFile("file")
	if err != nil {
		writeError(c, service.ErrMissingUpload)
		return nil, "", false
	}
	userID := c.PostForm("user_id")
	if userID == "" {
		writeError(c, service.ErrMissingUpload)
		return nil, "", false
	}
	return header, userID, true
}

func closeWithLog(closer interface{ Close() error }, label string, logger *slog.Logger) {
	if err := closer.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
