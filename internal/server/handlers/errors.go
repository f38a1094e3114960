package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/dashboard"
	"github.com/mamadbah2/household/internal/service/reminders"
	"github.com/mamadbah2/household/internal/service/statement"
	"github.com/mamadbah2/household/internal/service/whatsapp"
	"github.com/mamadbah2/household/pkg/clients/imagekit"
)

var validationErrors = []error{
	models.ErrUnknownServiceKind,
	models.ErrInvalidStatus,
	models.ErrInvalidQuantity,
	models.ErrInvalidAmount,
	models.ErrInvalidRate,
	models.ErrInvalidDate,
	models.ErrTooPrecise,
	reminders.ErrInvalidInput,
}

func statusFor(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrZeroRate), errors.Is(err, dashboard.ErrNothingOwed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reminders.ErrDisabled),
		errors.Is(err, statement.ErrExportDisabled),
		errors.Is(err, imagekit.ErrNotConfigured),
		errors.Is(err, whatsapp.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrStore), errors.Is(err, reminders.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the matching status. Server-side failures are
// logged and their details hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}

	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		message = "upstream service failed, please try again"
		if errors.Is(err, dashboard.ErrStore) {
			message = "the database could not be reached, nothing was changed"
		}
	case http.StatusInternalServerError:
		message = "internal error"
	}

	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
