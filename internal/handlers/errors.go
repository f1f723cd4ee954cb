package handlers

import (
	"net/http"
	"strconv"

	"property-listings/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error  string                `json:"error"`
	Fields []apperror.FieldError `json:"fields,omitempty"`
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind. Internal causes are
// logged and never sent to the client.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusOf(kind), errorResponse{
		Error:  apperror.MessageOf(err),
		Fields: apperror.FieldsOf(err),
	})
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Invalid(name, "must be a positive integer")
	}
	return uint(id), nil
}

// bindJSON decodes the request body, reporting malformed input as a validation failure
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperror.Invalid("body", "malformed JSON: "+err.Error())
	}
	return nil
}

// formValue looks name up in the query string first and then in the form body
func formValue(c *gin.Context, name string) (string, bool) {
	if v, ok := c.GetQuery(name); ok {
		return v, true
	}
	return c.GetPostForm(name)
}
