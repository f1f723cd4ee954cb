package service

import (
	"context"

	"property-listings/internal/apperror"
	"property-listings/internal/database"
	"property-listings/internal/models"

	"github.com/sirupsen/logrus"
)

// AgentRef references an existing agent by ID
type AgentRef struct {
	ID uint `json:"id"`
}

// PropertyInput is the writable shape of a Property. The agent may be given
// either as agentId or as agent.id.
type PropertyInput struct {
	Title       string    `json:"title" validate:"notblank,max=255"`
	Description string    `json:"description" validate:"notblank,max=2000"`
	Price       *float64  `json:"price" validate:"required,gt=0"`
	Type        string    `json:"type" validate:"notblank,max=50"`
	Location    string    `json:"location" validate:"notblank,max=255"`
	AgentID     *uint     `json:"agentId"`
	Agent       *AgentRef `json:"agent"`
}

// AgentRefID returns the referenced agent ID and whether one was supplied
func (in PropertyInput) AgentRefID() (uint, bool) {
	if in.AgentID != nil {
		return *in.AgentID, true
	}
	if in.Agent != nil {
		return in.Agent.ID, true
	}
	return 0, false
}

// ValidateForCreate reports every violated field; an agent reference is required
func (in PropertyInput) ValidateForCreate() error {
	var extra []apperror.FieldError
	if id, ok := in.AgentRefID(); !ok || id == 0 {
		extra = append(extra, apperror.FieldError{Field: "agentId", Message: "is required"})
	}
	return validateStruct(in, extra...)
}

// ValidateForUpdate reports every violated field; the agent reference is optional
func (in PropertyInput) ValidateForUpdate() error {
	var extra []apperror.FieldError
	if id, ok := in.AgentRefID(); ok && id == 0 {
		extra = append(extra, apperror.FieldError{Field: "agentId", Message: "must reference an agent"})
	}
	return validateStruct(in, extra...)
}

// PropertyService manages properties and assembles them with their agent and
// ordered images on every read
type PropertyService struct {
	db     *database.GormDB
	agents *AgentService
	images *ImageService
	logger *logrus.Entry
}

func NewPropertyService(db *database.GormDB, agents *AgentService, images *ImageService, logger logrus.FieldLogger) *PropertyService {
	return &PropertyService{
		db:     db,
		agents: agents,
		images: images,
		logger: logger.WithField("component", "properties"),
	}
}

func (s *PropertyService) List(ctx context.Context) ([]models.Property, error) {
	properties, err := s.db.ListProperties(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list properties")
	}
	return properties, nil
}

func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.db.GetProperty(ctx, id)
	if err != nil {
		return nil, storeError(err, "Property not found with ID: %d", id)
	}
	return property, nil
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	agentID, _ := in.AgentRefID()
	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	property := &models.Property{
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Type:        in.Type,
		Location:    in.Location,
		AgentID:     agent.ID,
	}
	if err := s.db.CreateProperty(ctx, property); err != nil {
		return nil, apperror.Internal(err, "failed to create property")
	}
	property.Agent = *agent
	property.Images = []models.PropertyImage{}

	s.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"agent_id":    agent.ID,
	}).Info("Property created")
	return property, nil
}

// Update overwrites the scalar fields and, when an agent reference is given,
// reassigns the agent. Images are left untouched.
func (s *PropertyService) Update(ctx context.Context, id uint, in PropertyInput) (*models.Property, error) {
	var updated *models.Property
	err := s.db.Transaction(ctx, func(tx *database.GormDB) error {
		property, err := tx.GetProperty(ctx, id)
		if err != nil {
			return storeError(err, "Property not found with ID: %d", id)
		}

		property.Title = in.Title
		property.Description = in.Description
		property.Price = *in.Price
		property.Type = in.Type
		property.Location = in.Location

		if agentID, ok := in.AgentRefID(); ok {
			agent, err := tx.GetAgent(ctx, agentID)
			if err != nil {
				return storeError(err, "Agent not found with ID: %d", agentID)
			}
			property.AgentID = agent.ID
			property.Agent = *agent
		}

		if err := tx.SaveProperty(ctx, property); err != nil {
			return apperror.Internal(err, "failed to update property")
		}
		updated = property
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("property_id", id).Info("Property updated")
	return updated, nil
}

// Delete removes a property together with every image it owns. Image files
// are deleted before any row so a failure never leaves files without owners.
func (s *PropertyService) Delete(ctx context.Context, id uint) error {
	err := s.db.Transaction(ctx, func(tx *database.GormDB) error {
		property, err := tx.GetProperty(ctx, id)
		if err != nil {
			return storeError(err, "Property not found with ID: %d", id)
		}

		if err := s.images.DeleteForProperty(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.DeleteProperty(ctx, id); err != nil {
			return apperror.Internal(err, "failed to delete property")
		}
		return tx.CreateDeleteLogs(ctx, []models.DeleteLog{{
			EntityType: models.EntityProperty,
			EntityID:   property.ID,
			Label:      property.Title,
			Reason:     models.DeleteReasonManual,
		}})
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			s.logger.WithError(err).WithField("property_id", id).Error("Failed to delete property")
		}
		return err
	}

	s.logger.WithField("property_id", id).Info("Property deleted")
	return nil
}

// Search matches keyword case-insensitively against title, description and location
func (s *PropertyService) Search(ctx context.Context, keyword string) ([]models.Property, error) {
	properties, err := s.db.SearchProperties(ctx, keyword)
	if err != nil {
		return nil, apperror.Internal(err, "failed to search properties")
	}
	return properties, nil
}

func (s *PropertyService) ByType(ctx context.Context, propertyType string) ([]models.Property, error) {
	properties, err := s.db.PropertiesByType(ctx, propertyType)
	if err != nil {
		return nil, apperror.Internal(err, "failed to filter properties by type")
	}
	return properties, nil
}

func (s *PropertyService) ByAgent(ctx context.Context, agentID uint) ([]models.Property, error) {
	properties, err := s.db.PropertiesByAgent(ctx, agentID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to filter properties by agent")
	}
	return properties, nil
}

func (s *PropertyService) ByMaxPrice(ctx context.Context, maxPrice float64) ([]models.Property, error) {
	properties, err := s.db.PropertiesByMaxPrice(ctx, maxPrice)
	if err != nil {
		return nil, apperror.Internal(err, "failed to filter properties by price")
	}
	return properties, nil
}

// Images lists a property's images in display order. An unknown property has none.
func (s *PropertyService) Images(ctx context.Context, propertyID uint) ([]models.PropertyImage, error) {
	return s.images.List(ctx, propertyID)
}

// AddImage resolves the property and uploads an image into it
func (s *PropertyService) AddImage(ctx context.Context, propertyID uint, upload ImageUpload) (*models.PropertyImage, error) {
	property, err := s.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return s.images.Upload(ctx, property, upload)
}
