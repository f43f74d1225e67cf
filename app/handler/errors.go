package handler

import (
	"errors"
	"net/http"

	"surveyor/internal/model"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrExperimentNotFound),
		errors.Is(err, model.ErrProfileSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExpanded),
		errors.Is(err, model.ErrProfileSetExists),
		errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidDefinition),
		errors.Is(err, model.ErrEmptyDesign),
		errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, model.ErrUnknownInstrument),
		errors.Is(err, model.ErrUnknownEncoding),
		errors.Is(err, model.ErrUnknownProvider),
		errors.Is(err, model.ErrInvalidGroupBy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
