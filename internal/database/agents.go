package database

import (
	"context"

	"property-listings/internal/models"
)

// ListAgents retrieves every agent ordered by id
func (gdb *GormDB) ListAgents(ctx context.Context) ([]models.Agent, error) {
	agents := []models.Agent{}
	err := gdb.conn(ctx).Order("id ASC").Find(&agents).Error
	return agents, err
}

// FindAgentsByEmail returns the agents whose email matches exactly
func (gdb *GormDB) FindAgentsByEmail(ctx context.Context, email string) ([]models.Agent, error) {
	agents := []models.Agent{}
	err := gdb.conn(ctx).Where("email = ?", email).Order("id ASC").Find(&agents).Error
	return agents, err
}

// GetAgent retrieves an agent by ID
func (gdb *GormDB) GetAgent(ctx context.Context, id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := gdb.conn(ctx).First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// AgentEmailExists reports whether another agent (excluding excludeID, 0 for none) uses email
func (gdb *GormDB) AgentEmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	q := gdb.conn(ctx).Model(&models.Agent{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (gdb *GormDB) CreateAgent(ctx context.Context, agent *models.Agent) error {
	return gdb.conn(ctx).Create(agent).Error
}

func (gdb *GormDB) SaveAgent(ctx context.Context, agent *models.Agent) error {
	return gdb.conn(ctx).Save(agent).Error
}

func (gdb *GormDB) DeleteAgent(ctx context.Context, id uint) error {
	return gdb.conn(ctx).Delete(&models.Agent{}, id).Error
}

// CountPropertiesForAgent returns how many properties reference the agent
func (gdb *GormDB) CountPropertiesForAgent(ctx context.Context, agentID uint) (int64, error) {
	var count int64
	err := gdb.conn(ctx).Model(&models.Property{}).Where("agent_id = ?", agentID).Count(&count).Error
	return count, err
}
