package helpers

import (
	"strconv"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	ErrInvalidPagination = apperror.Validation("invalid_pagination", "skip and limit must be non-negative integers")
	ErrInvalidID         = apperror.Validation("invalid_id", "Invalid id")
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads the skip and limit query parameters. Missing values
// default to 0 and DefaultLimit; limit is capped at MaxLimit.
func ParsePagination(c *gin.Context) (skip, limit int, err error) {
	skip, limit = 0, DefaultLimit

	if raw, ok := c.GetQuery("skip"); ok {
		skip, err = StringToInt(raw)
		if err != nil || skip < 0 {
			return 0, 0, ErrInvalidPagination
		}
	}
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err = StringToInt(raw)
		if err != nil || limit < 0 {
			return 0, 0, ErrInvalidPagination
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit, nil
}

// ParseUUIDParam parses the named path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, ErrInvalidID.Withf("Invalid %s: %q", name, c.Param(name))
	}
	return id, nil
}
