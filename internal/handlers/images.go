package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"property-listings/internal/apperror"
	"property-listings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImageHandler serves the image routes under /api/properties
type ImageHandler struct {
	properties     *service.PropertyService
	images         *service.ImageService
	maxUploadBytes int64
	logger         logrus.FieldLogger
}

func NewImageHandler(properties *service.PropertyService, images *service.ImageService, maxUploadBytes int64, logger logrus.FieldLogger) *ImageHandler {
	return &ImageHandler{
		properties:     properties,
		images:         images,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// List returns a property's images in display order
func (h *ImageHandler) List(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	images, err := h.properties.Images(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Upload accepts multipart form data: file, and optionally description and displayOrder
func (h *ImageHandler) Upload(c *gin.Context) {
	propertyID, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.logger, apperror.Invalid("file", "exceeds the maximum upload size of "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes"))
			return
		}
		respondError(c, h.logger, apperror.Invalid("file", "is required"))
		return
	}

	upload := service.ImageUpload{
		OriginalFileName: header.Filename,
	}
	if v, ok := c.GetPostForm("description"); ok {
		upload.Description = &v
	}
	if upload.DisplayOrder, err = displayOrder(c.GetPostForm("displayOrder")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, apperror.Internal(err, "failed to open uploaded file"))
		return
	}
	defer file.Close()
	upload.Data = file

	if err := upload.Validate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	image, err := h.properties.AddImage(c.Request.Context(), propertyID, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

// Update overwrites description and displayOrder, read from the query string or form
func (h *ImageHandler) Update(c *gin.Context) {
	imageID, err := pathID(c, "imageId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var description *string
	if v, ok := formValue(c, "description"); ok {
		description = &v
	}
	order, err := displayOrder(formValue(c, "displayOrder"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := service.ValidateImageMetadata(description); err != nil {
		respondError(c, h.logger, err)
		return
	}

	image, err := h.images.UpdateMetadata(c.Request.Context(), imageID, description, order)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (h *ImageHandler) Delete(c *gin.Context) {
	imageID, err := pathID(c, "imageId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.images.Delete(c.Request.Context(), imageID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// displayOrder parses an optional displayOrder parameter
func displayOrder(raw string, present bool) (*int, error) {
	if !present || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.Invalid("displayOrder", "must be an integer")
	}
	return &v, nil
}
