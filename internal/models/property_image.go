package models

import "time"

// DefaultImageDescription is stored when an upload carries no description
const DefaultImageDescription = "Property Image"

// PropertyImage represents an uploaded image file owned by a property.
// StoredFileName is the Blob Store key; the row and the file live and die together.
type PropertyImage struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID       uint      `gorm:"not null;index" json:"propertyId"`
	StoredFileName   string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"storedFileName"`
	OriginalFileName string    `gorm:"type:varchar(255)" json:"originalFileName"`
	FileSizeBytes    int64     `gorm:"not null;default:0" json:"fileSizeBytes"`
	ContentType      string    `gorm:"type:varchar(100)" json:"contentType"`
	ImageURL         string    `gorm:"type:varchar(1024);not null" json:"imageUrl"`
	Description      string    `gorm:"type:varchar(1000)" json:"description"`
	DisplayOrder     int       `gorm:"not null;default:0;index" json:"displayOrder"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}
