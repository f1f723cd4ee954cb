package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"property-listings/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StaticHandler serves stored image files at /images/:name
type StaticHandler struct {
	blobs  storage.BlobStore
	logger logrus.FieldLogger
}

func NewStaticHandler(blobs storage.BlobStore, logger logrus.FieldLogger) *StaticHandler {
	return &StaticHandler{blobs: blobs, logger: logger}
}

func (h *StaticHandler) Serve(c *gin.Context) {
	name := c.Param("name")
	rc, info, err := h.blobs.Open(c.Request.Context(), name)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidName):
		c.Status(http.StatusNotFound)
		return
	case err != nil:
		h.logger.WithError(err).WithField("stored_file_name", name).Error("Failed to open stored file")
		c.Status(http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, info.Size, servedContentType(name), rc, map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"Last-Modified":          info.ModTime.UTC().Format(http.TimeFormat),
		"X-Content-Type-Options": "nosniff",
	})
}

// servedContentType maps the stored name's extension to a content type.
// Only raster image types are passed through; anything else, SVG included,
// is sent as an opaque download so a browser never renders it as a page.
func servedContentType(name string) string {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") || mediaType == "image/svg+xml" {
		return "application/octet-stream"
	}
	return contentType
}
