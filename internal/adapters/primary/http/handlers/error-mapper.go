package handlers

import (
	"errors"
	"net/http"

	"pos-nfc-api/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrCardNotFound),
		errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrArtifactMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrModelNameConflict),
		errors.Is(err, domain.ErrModelNotReady),
		errors.Is(err, domain.ErrNoDefaultModel):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidCardID),
		errors.Is(err, domain.ErrInvalidHolderName),
		errors.Is(err, domain.ErrInvalidPAN),
		errors.Is(err, domain.ErrInvalidExpiry),
		errors.Is(err, domain.ErrInvalidCVV),
		errors.Is(err, domain.ErrInvalidIssuerID),
		errors.Is(err, domain.ErrInvalidTrack),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDeviceID),
		errors.Is(err, domain.ErrInvalidAPDU),
		errors.Is(err, domain.ErrInvalidResponse),
		errors.Is(err, domain.ErrInvalidModelName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Not enough data to act on
	case errors.Is(err, domain.ErrInsufficientTrainingData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
