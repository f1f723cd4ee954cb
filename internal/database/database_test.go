package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"property-listings/internal/config"
	"property-listings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	require.NoError(t, db.InitSchema())
	return db
}

func seedAgent(t *testing.T, db *GormDB, email string) *models.Agent {
	t.Helper()
	agent := &models.Agent{Name: "Agent " + email, Email: email}
	require.NoError(t, db.CreateAgent(context.Background(), agent))
	return agent
}

func seedProperty(t *testing.T, db *GormDB, agentID uint, title, location string, price float64, propertyType string) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:       title,
		Description: "Description of " + title,
		Price:       price,
		Type:        propertyType,
		Location:    location,
		AgentID:     agentID,
	}
	require.NoError(t, db.CreateProperty(context.Background(), p))
	return p
}

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "app.db")
	db, err := Open(config.DatabaseConfig{
		Type:   config.DatabaseSQLite,
		SQLite: config.SQLiteConfig{Path: path},
	})
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, db.InitSchema())
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestAgents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	jane := seedAgent(t, db, "jane@x.com")
	seedAgent(t, db, "john@x.com")

	all, err := db.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := db.FindAgentsByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, jane.ID, found[0].ID)

	none, err := db.FindAgentsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)

	exists, err := db.AgentEmailExists(ctx, "jane@x.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = db.AgentEmailExists(ctx, "jane@x.com", jane.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = db.GetAgent(ctx, 999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAgents_DuplicateEmailTranslated(t *testing.T) {
	db := newTestDB(t)
	seedAgent(t, db, "dup@x.com")

	err := db.CreateAgent(context.Background(), &models.Agent{Name: "Other", Email: "dup@x.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGetProperty_AssemblesAgentAndOrderedImages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	agent := seedAgent(t, db, "a@x.com")
	p := seedProperty(t, db, agent.ID, "Loft", "City", 1000, "rent")

	for i, order := range []int{2, 0, 1} {
		img := &models.PropertyImage{
			PropertyID:     p.ID,
			StoredFileName: []string{"b.jpg", "c.jpg", "a.jpg"}[i],
			ImageURL:       "http://localhost/images/x",
			DisplayOrder:   order,
		}
		require.NoError(t, db.CreateImage(ctx, img))
	}

	got, err := db.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Agent.Email)
	require.Len(t, got.Images, 3)
	assert.Equal(t, 0, got.Images[0].DisplayOrder)
	assert.Equal(t, 1, got.Images[1].DisplayOrder)
	assert.Equal(t, 2, got.Images[2].DisplayOrder)

	images, err := db.ListImages(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{images[0].DisplayOrder, images[1].DisplayOrder, images[2].DisplayOrder})

	names, err := db.StoredFileNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "a.jpg")
	assert.Len(t, names, 3)
}

func TestSearchProperties(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	agent := seedAgent(t, db, "a@x.com")
	seedProperty(t, db, agent.ID, "Sunny Loft", "Downtown", 1000, "rent")
	seedProperty(t, db, agent.ID, "Family House", "Suburbia", 250000, "sale")
	seedProperty(t, db, agent.ID, "100% Garden", "Village", 500, "rent")
	seedProperty(t, db, agent.ID, "ÉCOLE Loft", "Quartier Latin", 900, "rent")

	all, err := db.SearchProperties(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// Non-ASCII keywords match when keyword and column fold the same way
	accented, err := db.SearchProperties(ctx, "ÉCOLE")
	require.NoError(t, err)
	require.Len(t, accented, 1)
	assert.Equal(t, "ÉCOLE Loft", accented[0].Title)

	mixed, err := db.SearchProperties(ctx, "École loft")
	require.NoError(t, err)
	require.Len(t, mixed, 1)

	byTitle, err := db.SearchProperties(ctx, "SUNNY LOFT")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Sunny Loft", byTitle[0].Title)
	assert.Equal(t, "a@x.com", byTitle[0].Agent.Email)

	byLocation, err := db.SearchProperties(ctx, "suburb")
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Family House", byLocation[0].Title)

	byDescription, err := db.SearchProperties(ctx, "description of family")
	require.NoError(t, err)
	assert.Len(t, byDescription, 1)

	literalPercent, err := db.SearchProperties(ctx, "0%")
	require.NoError(t, err)
	require.Len(t, literalPercent, 1)
	assert.Equal(t, "100% Garden", literalPercent[0].Title)

	none, err := db.SearchProperties(ctx, "castle")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPropertyFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	a1 := seedAgent(t, db, "a1@x.com")
	a2 := seedAgent(t, db, "a2@x.com")
	cheap := seedProperty(t, db, a1.ID, "Cheap", "City", 100, "rent")
	seedProperty(t, db, a2.ID, "Pricey", "City", 600, "sale")

	byPrice, err := db.PropertiesByMaxPrice(ctx, 500)
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, cheap.ID, byPrice[0].ID)

	byType, err := db.PropertiesByType(ctx, "sale")
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Pricey", byType[0].Title)

	byAgent, err := db.PropertiesByAgent(ctx, a1.ID)
	require.NoError(t, err)
	require.Len(t, byAgent, 1)
	assert.Equal(t, "Cheap", byAgent[0].Title)

	empty, err := db.PropertiesByType(ctx, "lease")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	count, err := db.CountPropertiesForAgent(ctx, a1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSaveProperty_OverwritesFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	a1 := seedAgent(t, db, "a1@x.com")
	a2 := seedAgent(t, db, "a2@x.com")
	p := seedProperty(t, db, a1.ID, "Old", "Old Town", 100, "rent")

	p.Title = "New"
	p.Price = 200
	p.AgentID = a2.ID
	require.NoError(t, db.SaveProperty(ctx, p))

	got, err := db.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, 200.0, got.Price)
	assert.Equal(t, a2.ID, got.Agent.ID)
}

func TestTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := db.Transaction(ctx, func(tx *GormDB) error {
		require.NoError(t, tx.CreateAgent(ctx, &models.Agent{Name: "Temp", Email: "temp@x.com"}))
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")

	agents, err := db.ListAgents(ctx)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestDeleteLogsAndCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	agent := seedAgent(t, db, "a@x.com")
	seedProperty(t, db, agent.ID, "Loft", "City", 1000, "rent")

	require.NoError(t, db.CreateDeleteLogs(ctx, []models.DeleteLog{
		{EntityType: models.EntityImage, EntityID: 1, Reason: models.DeleteReasonManual},
		{EntityType: models.EntityBlob, StoredFileName: "x.png", Reason: models.DeleteReasonOrphaned},
	}))
	require.NoError(t, db.CreateDeleteLogs(ctx, nil))

	logs, err := db.RecentDeleteLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EntityBlob, logs[0].EntityType)

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Agents: 1, Properties: 1, Images: 0, DeleteLogs: 2}, counts)
}
