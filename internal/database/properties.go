package database

import (
	"context"
	"strings"

	"property-listings/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// assembled preloads the agent and the images ordered for display
func (gdb *GormDB) assembled(ctx context.Context) *gorm.DB {
	return gdb.conn(ctx).
		Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC").Order("id ASC")
		})
}

func (gdb *GormDB) findProperties(q *gorm.DB) ([]models.Property, error) {
	properties := []models.Property{}
	err := q.Order("id ASC").Find(&properties).Error
	return properties, err
}

// ListProperties retrieves all properties with agent and images
func (gdb *GormDB) ListProperties(ctx context.Context) ([]models.Property, error) {
	return gdb.findProperties(gdb.assembled(ctx))
}

// GetProperty retrieves a property by ID with agent and images
func (gdb *GormDB) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := gdb.assembled(ctx).First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// CreateProperty inserts the property row only; associations are never upserted
func (gdb *GormDB) CreateProperty(ctx context.Context, p *models.Property) error {
	return gdb.conn(ctx).Omit(clause.Associations).Create(p).Error
}

// SaveProperty overwrites the scalar columns and the agent reference
func (gdb *GormDB) SaveProperty(ctx context.Context, p *models.Property) error {
	return gdb.conn(ctx).Model(p).
		Select("title", "description", "price", "type", "location", "agent_id").
		Updates(map[string]interface{}{
			"title":       p.Title,
			"description": p.Description,
			"price":       p.Price,
			"type":        p.Type,
			"location":    p.Location,
			"agent_id":    p.AgentID,
		}).Error
}

func (gdb *GormDB) DeleteProperty(ctx context.Context, id uint) error {
	return gdb.conn(ctx).Delete(&models.Property{}, id).Error
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching keyword anywhere, with
// wildcard characters in keyword taken literally (escape character '!').
// Case is left alone so the database folds pattern and column the same way.
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

// SearchProperties matches keyword case-insensitively against title, description or location
func (gdb *GormDB) SearchProperties(ctx context.Context, keyword string) ([]models.Property, error) {
	pattern := containsPattern(keyword)
	q := gdb.assembled(ctx).Where(
		"LOWER(title) LIKE LOWER(?) ESCAPE '!' OR LOWER(description) LIKE LOWER(?) ESCAPE '!' OR LOWER(location) LIKE LOWER(?) ESCAPE '!'",
		pattern, pattern, pattern,
	)
	return gdb.findProperties(q)
}

// PropertiesByType retrieves properties whose type matches exactly
func (gdb *GormDB) PropertiesByType(ctx context.Context, propertyType string) ([]models.Property, error) {
	return gdb.findProperties(gdb.assembled(ctx).Where("type = ?", propertyType))
}

// PropertiesByAgent retrieves the properties referencing the agent
func (gdb *GormDB) PropertiesByAgent(ctx context.Context, agentID uint) ([]models.Property, error) {
	return gdb.findProperties(gdb.assembled(ctx).Where("agent_id = ?", agentID))
}

// PropertiesByMaxPrice retrieves properties priced at or below maxPrice
func (gdb *GormDB) PropertiesByMaxPrice(ctx context.Context, maxPrice float64) ([]models.Property, error) {
	return gdb.findProperties(gdb.assembled(ctx).Where("price <= ?", maxPrice))
}

// TypeCount is the number of properties of one type
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// PropertyCountsByType groups properties by type, most common first
func (gdb *GormDB) PropertyCountsByType(ctx context.Context) ([]TypeCount, error) {
	counts := []TypeCount{}
	err := gdb.conn(ctx).Model(&models.Property{}).
		Select("type, count(*) as count").
		Group("type").
		Order("count DESC").Order("type ASC").
		Scan(&counts).Error
	return counts, err
}
