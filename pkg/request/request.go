// Package request decodes path, query and body input for gin handlers and
// reports malformed input as validation errors.
package request

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/validate"
)

// BindJSON decodes the body into v and validates its struct tags.
func BindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request: "+err.Error(), err)
	}
	return validate.Struct(v)
}

// UUIDParam parses a path parameter as a UUID.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return parseUUID(c.Param(name), name)
}

// UUIDQuery parses a required query parameter as a UUID.
func UUIDQuery(c *gin.Context, name string) (uuid.UUID, error) {
	return parseUUID(c.Query(name), name)
}

func parseUUID(s, name string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, apperr.Validation(name + " is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// Int64Param parses a path parameter as a positive integer id.
func Int64Param(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// OptionalInt64Query parses an optional integer query parameter.
func OptionalInt64Query(c *gin.Context, name string) (*int64, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &n, nil
}

// DateQuery parses a required YYYY-MM-DD query parameter.
func DateQuery(c *gin.Context, name string) (models.Date, error) {
	s := c.Query(name)
	if s == "" {
		return models.Date{}, apperr.Validation(name + " is required")
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, apperr.Validation(name + " must be YYYY-MM-DD")
	}
	return d, nil
}
