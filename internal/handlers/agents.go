package handlers

import (
	"net/http"

	"property-listings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AgentHandler serves /api/agents
type AgentHandler struct {
	agents *service.AgentService
	logger logrus.FieldLogger
}

func NewAgentHandler(agents *service.AgentService, logger logrus.FieldLogger) *AgentHandler {
	return &AgentHandler{agents: agents, logger: logger}
}

// List returns all agents, or those matching ?email= exactly
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.agents.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

func (h *AgentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	agent, err := h.agents.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) Create(c *gin.Context) {
	var in service.AgentInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	agent, err := h.agents.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *AgentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	var in service.AgentInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	agent, err := h.agents.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.agents.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
