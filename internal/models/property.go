package models

import "time"

// DescriptionMaxLength bounds Property.Description
const DescriptionMaxLength = 2000

type Property struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description string  `gorm:"type:varchar(2000);not null" json:"description"`
	Price       float64 `gorm:"not null;index" json:"price"`
	Type        string  `gorm:"type:varchar(50);not null;index" json:"type"`
	Location    string  `gorm:"type:varchar(255);not null" json:"location"`

	// 担当エージェント（削除は参照がある限り不可）
	AgentID uint  `gorm:"not null;index" json:"-"`
	Agent   Agent `gorm:"foreignKey:AgentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"agent"`

	// 画像は display_order 昇順で読み出す
	Images []PropertyImage `gorm:"foreignKey:PropertyID" json:"images"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// Property types conventionally used by clients. Type is free text and not
// restricted to these values.
const (
	PropertyTypeRent = "rent"
	PropertyTypeSale = "sale"
)

// TableName はテーブル名を明示的に指定
func (Property) TableName() string {
	return "properties"
}

// HasImage reports whether an image with the given ID is already attached
func (p *Property) HasImage(id uint) bool {
	for _, img := range p.Images {
		if img.ID == id {
			return true
		}
	}
	return false
}

// AttachImage appends img to the in-memory image list unless it is already present
func (p *Property) AttachImage(img PropertyImage) {
	if p.HasImage(img.ID) {
		return
	}
	p.Images = append(p.Images, img)
}
