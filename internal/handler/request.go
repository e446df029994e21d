// Package handler holds the request parsing shared by the HTTP handlers.
package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/internal/model"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
)

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, param, entityType string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(param, "must be a positive integer", entityType)
	}
	return id, nil
}

// Pagination reads page and page_size. Missing values take the defaults.
func Pagination(c *gin.Context, entityType string) (model.Pagination, error) {
	page, err := queryInt(c, "page", entityType)
	if err != nil {
		return model.Pagination{}, err
	}
	size, err := queryInt(c, "page_size", entityType)
	if err != nil {
		return model.Pagination{}, err
	}
	return model.Pagination{Page: page, PageSize: size}.Normalize(), nil
}

func queryInt(c *gin.Context, key, entityType string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validation(key, "must be a non-negative integer", entityType)
	}
	return n, nil
}

// BindJSON decodes the request body. Field rules are checked by the services.
func BindJSON(c *gin.Context, dst interface{}, entityType string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("body", "malformed request body: "+err.Error(), entityType)
	}
	return nil
}

// QueryTime parses an optional RFC3339 query value.
func QueryTime(c *gin.Context, key, entityType string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.Validation(key, "must be an RFC3339 timestamp", entityType)
	}
	return &t, nil
}
