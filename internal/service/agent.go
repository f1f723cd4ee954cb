package service

import (
	"context"
	"errors"
	"strings"

	"property-listings/internal/apperror"
	"property-listings/internal/database"
	"property-listings/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AgentInput is the writable shape of an Agent
type AgentInput struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Email string `json:"email" validate:"notblank,email,max=255"`
	Phone string `json:"phone" validate:"max=50"`
}

// Validate reports every violated field of the input
func (in AgentInput) Validate() error {
	return validateStruct(in)
}

// AgentService manages Agent records and their email uniqueness
type AgentService struct {
	db     *database.GormDB
	logger *logrus.Entry
}

func NewAgentService(db *database.GormDB, logger logrus.FieldLogger) *AgentService {
	return &AgentService{db: db, logger: logger.WithField("component", "agents")}
}

// List returns all agents, or only those whose email equals emailFilter when it is not blank
func (s *AgentService) List(ctx context.Context, emailFilter string) ([]models.Agent, error) {
	var (
		agents []models.Agent
		err    error
	)
	if email := strings.TrimSpace(emailFilter); email != "" {
		agents, err = s.db.FindAgentsByEmail(ctx, email)
	} else {
		agents, err = s.db.ListAgents(ctx)
	}
	if err != nil {
		return nil, apperror.Internal(err, "failed to list agents")
	}
	return agents, nil
}

func (s *AgentService) Get(ctx context.Context, id uint) (*models.Agent, error) {
	agent, err := s.db.GetAgent(ctx, id)
	if err != nil {
		return nil, storeError(err, "Agent not found with ID: %d", id)
	}
	return agent, nil
}

func (s *AgentService) Create(ctx context.Context, in AgentInput) (*models.Agent, error) {
	exists, err := s.db.AgentEmailExists(ctx, in.Email, 0)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check agent email")
	}
	if exists {
		return nil, apperror.Conflict("Email already in use: %s", in.Email)
	}

	agent := &models.Agent{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.db.CreateAgent(ctx, agent); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Email already in use: %s", in.Email)
		}
		return nil, apperror.Internal(err, "failed to create agent")
	}

	s.logger.WithField("agent_id", agent.ID).Info("Agent created")
	return agent, nil
}

// Update overwrites name, email and phone. A changed email must not belong to another agent.
func (s *AgentService) Update(ctx context.Context, id uint, in AgentInput) (*models.Agent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if agent.Email != in.Email {
		exists, err := s.db.AgentEmailExists(ctx, in.Email, id)
		if err != nil {
			return nil, apperror.Internal(err, "failed to check agent email")
		}
		if exists {
			return nil, apperror.Conflict("Email already in use: %s", in.Email)
		}
	}

	agent.Name = in.Name
	agent.Email = in.Email
	agent.Phone = in.Phone
	if err := s.db.SaveAgent(ctx, agent); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Email already in use: %s", in.Email)
		}
		return nil, apperror.Internal(err, "failed to update agent")
	}

	s.logger.WithField("agent_id", agent.ID).Info("Agent updated")
	return agent, nil
}

// Delete removes an agent. Agents still assigned to properties cannot be deleted.
func (s *AgentService) Delete(ctx context.Context, id uint) error {
	err := s.db.Transaction(ctx, func(tx *database.GormDB) error {
		if _, err := tx.GetAgent(ctx, id); err != nil {
			return storeError(err, "Agent not found with ID: %d", id)
		}
		count, err := tx.CountPropertiesForAgent(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to count agent properties")
		}
		if count > 0 {
			return apperror.Conflict("Agent %d is still assigned to %d properties", id, count)
		}
		if err := tx.DeleteAgent(ctx, id); err != nil {
			return apperror.Internal(err, "failed to delete agent")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("agent_id", id).Info("Agent deleted")
	return nil
}
