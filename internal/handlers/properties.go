package handlers

import (
	"net/http"
	"strconv"

	"property-listings/internal/apperror"
	"property-listings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PropertyHandler serves /api/properties
type PropertyHandler struct {
	properties *service.PropertyService
	logger     logrus.FieldLogger
}

func NewPropertyHandler(properties *service.PropertyService, logger logrus.FieldLogger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: logger}
}

func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.properties.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	property, err := h.properties.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var in service.PropertyInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := in.ValidateForCreate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	property, err := h.properties.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var in service.PropertyInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := in.ValidateForUpdate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	property, err := h.properties.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// Delete removes the property together with all of its images
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.properties.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles ?keyword=; a missing keyword matches everything
func (h *PropertyHandler) Search(c *gin.Context) {
	properties, err := h.properties.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) ByType(c *gin.Context) {
	properties, err := h.properties.ByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) ByAgent(c *gin.Context) {
	agentID, err := pathID(c, "agentId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	properties, err := h.properties.ByAgent(c.Request.Context(), agentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) ByMaxPrice(c *gin.Context) {
	maxPrice, err := strconv.ParseFloat(c.Query("maxPrice"), 64)
	if err != nil {
		respondError(c, h.logger, apperror.Invalid("maxPrice", "must be a number"))
		return
	}
	properties, err := h.properties.ByMaxPrice(c.Request.Context(), maxPrice)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}
