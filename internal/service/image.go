package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"property-listings/internal/apperror"
	"property-listings/internal/database"
	"property-listings/internal/models"
	"property-listings/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

const (
	// sniffLen is how much of an upload is inspected to detect its content type
	sniffLen = 3072

	imageDescriptionMaxLength = 1000
)

// ImageUpload is one uploaded file plus its optional metadata
type ImageUpload struct {
	Data             io.Reader
	OriginalFileName string
	Description      *string
	DisplayOrder     *int
}

// Validate reports every violated field of the upload
func (u ImageUpload) Validate() error {
	var fields []apperror.FieldError
	if u.Data == nil {
		fields = append(fields, apperror.FieldError{Field: "file", Message: "is required"})
	}
	fields = append(fields, descriptionViolations(u.Description)...)
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

// ValidateImageMetadata checks the metadata accepted by an image update
func ValidateImageMetadata(description *string) error {
	if fields := descriptionViolations(description); len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func descriptionViolations(description *string) []apperror.FieldError {
	if description != nil && utf8.RuneCountInString(*description) > imageDescriptionMaxLength {
		return []apperror.FieldError{{Field: "description", Message: "must be at most 1000 characters"}}
	}
	return nil
}

// ImageService keeps Blob Store files and property_images rows in step
type ImageService struct {
	db      *database.GormDB
	blobs   storage.BlobStore
	baseURL string
	logger  *logrus.Entry
}

// NewImageService returns an ImageService. baseURL is the public prefix under
// which stored files are served, e.g. http://localhost:8081/images.
func NewImageService(db *database.GormDB, blobs storage.BlobStore, baseURL string, logger logrus.FieldLogger) *ImageService {
	return &ImageService{
		db:      db,
		blobs:   blobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.WithField("component", "images"),
	}
}

// URLFor composes the externally resolvable URL of a stored file
func (s *ImageService) URLFor(storedFileName string) string {
	return s.baseURL + "/" + url.PathEscape(storedFileName)
}

// List returns a property's images ordered by display order
func (s *ImageService) List(ctx context.Context, propertyID uint) ([]models.PropertyImage, error) {
	images, err := s.db.ListImages(ctx, propertyID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list images")
	}
	return images, nil
}

func (s *ImageService) Get(ctx context.Context, id uint) (*models.PropertyImage, error) {
	image, err := s.db.GetImage(ctx, id)
	if err != nil {
		return nil, storeError(err, "Image not found with ID: %d", id)
	}
	return image, nil
}

// Upload stores the file under a generated name, records the image row and
// attaches it to property. The file write is not covered by the database
// transaction: a failed insert leaves the written file behind.
func (s *ImageService) Upload(ctx context.Context, property *models.Property, upload ImageUpload) (*models.PropertyImage, error) {
	name := storage.GenerateName(upload.OriginalFileName)
	log := s.logger.WithFields(logrus.Fields{
		"property_id":      property.ID,
		"stored_file_name": name,
	})

	data, contentType, err := sniffImage(upload.Data)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.WithError(err).Error("Failed to read upload")
		}
		return nil, err
	}

	size, err := s.blobs.Store(ctx, name, data)
	if err != nil {
		log.WithError(err).Error("Failed to store image file")
		return nil, apperror.Internal(err, "failed to store image file")
	}

	image := &models.PropertyImage{
		PropertyID:       property.ID,
		StoredFileName:   name,
		OriginalFileName: upload.OriginalFileName,
		FileSizeBytes:    size,
		ContentType:      contentType,
		ImageURL:         s.URLFor(name),
		Description:      models.DefaultImageDescription,
		DisplayOrder:     0,
	}
	if upload.Description != nil {
		image.Description = *upload.Description
	}
	if upload.DisplayOrder != nil {
		image.DisplayOrder = *upload.DisplayOrder
	}

	if err := s.db.CreateImage(ctx, image); err != nil {
		log.WithError(err).Warn("Image row insert failed, stored file is orphaned")
		return nil, apperror.Internal(err, "failed to save image metadata")
	}

	property.AttachImage(*image)

	log.WithFields(logrus.Fields{
		"image_id": image.ID,
		"size":     size,
	}).Info("Image uploaded")
	return image, nil
}

// sniffImage reads the head of r to detect its content type and returns a
// reader over the full upload. Only raster image types are accepted; SVG is
// refused because it can carry script.
func sniffImage(r io.Reader) (io.Reader, string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", apperror.Internal(err, "failed to read upload")
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mtype.Is("image/svg+xml") {
		for m := mtype; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "image/") {
				return io.MultiReader(bytes.NewReader(head), r), mtype.String(), nil
			}
		}
	}
	return nil, "", apperror.Invalid("file", "must be an image, got "+mtype.String())
}
