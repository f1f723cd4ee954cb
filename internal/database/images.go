package database

import (
	"context"

	"property-listings/internal/models"
)

// ListImages retrieves a property's images ordered by display order
func (gdb *GormDB) ListImages(ctx context.Context, propertyID uint) ([]models.PropertyImage, error) {
	images := []models.PropertyImage{}
	err := gdb.conn(ctx).
		Where("property_id = ?", propertyID).
		Order("display_order ASC").Order("id ASC").
		Find(&images).Error
	return images, err
}

func (gdb *GormDB) GetImage(ctx context.Context, id uint) (*models.PropertyImage, error) {
	var image models.PropertyImage
	if err := gdb.conn(ctx).First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (gdb *GormDB) CreateImage(ctx context.Context, image *models.PropertyImage) error {
	return gdb.conn(ctx).Create(image).Error
}

// UpdateImageMetadata overwrites description and display order, zero values included
func (gdb *GormDB) UpdateImageMetadata(ctx context.Context, image *models.PropertyImage) error {
	return gdb.conn(ctx).Model(image).
		Select("description", "display_order").
		Updates(map[string]interface{}{
			"description":   image.Description,
			"display_order": image.DisplayOrder,
		}).Error
}

func (gdb *GormDB) DeleteImage(ctx context.Context, id uint) error {
	return gdb.conn(ctx).Delete(&models.PropertyImage{}, id).Error
}

// DeleteImagesForProperty removes every image row of the property
func (gdb *GormDB) DeleteImagesForProperty(ctx context.Context, propertyID uint) error {
	return gdb.conn(ctx).Where("property_id = ?", propertyID).Delete(&models.PropertyImage{}).Error
}

// StoredFileNames returns the set of blob names referenced by image rows
func (gdb *GormDB) StoredFileNames(ctx context.Context) (map[string]struct{}, error) {
	var names []string
	if err := gdb.conn(ctx).Model(&models.PropertyImage{}).Pluck("stored_file_name", &names).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}
