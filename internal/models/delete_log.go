package models

import "time"

// DeleteLog is an audit record of a physically deleted property, image or blob
type DeleteLog struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType     string    `gorm:"type:varchar(20);not null;index" json:"entityType"`
	EntityID       uint      `gorm:"index" json:"entityId,omitempty"`
	Label          string    `gorm:"type:varchar(255)" json:"label,omitempty"`
	StoredFileName string    `gorm:"type:varchar(255)" json:"storedFileName,omitempty"`
	Reason         string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"deletedAt"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// Entity types
const (
	EntityProperty = "property"
	EntityImage    = "image"
	EntityBlob     = "blob"
)

// DeleteReason constants
const (
	DeleteReasonManual   = "manual_deletion"
	DeleteReasonCascade  = "property_deleted"
	DeleteReasonOrphaned = "orphaned_blob"
)
