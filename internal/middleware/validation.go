package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BindJSON decodes and validates the request body. On failure the response is
// already written and ok is false.
func BindJSON[T any](c *gin.Context) (*T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return nil, false
	}
	return &req, true
}

// BindForm decodes and validates a form or multipart body
func BindForm[T any](c *gin.Context) (*T, bool) {
	var req T
	if err := c.ShouldBind(&req); err != nil {
		HandleBindError(c, err)
		return nil, false
	}
	return &req, true
}

// UUIDParam reads a UUID path parameter
func UUIDParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if _, err := uuid.Parse(value); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithField(name).WithDetails("must be a valid UUID")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return value, true
}

// OptionalUUIDQuery reads a UUID query filter. A missing value is allowed and returned empty.
func OptionalUUIDQuery(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value == "" {
		return "", true
	}
	if _, err := uuid.Parse(value); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameter")
		errorDetail = errorDetail.WithField(name).WithDetails("must be a valid UUID")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return value, true
}

// ObjectIDParam reads a Mongo ObjectID path parameter
func ObjectIDParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if !primitive.IsValidObjectID(value) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithField(name).WithDetails("must be a 24 character hex id")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return value, true
}
