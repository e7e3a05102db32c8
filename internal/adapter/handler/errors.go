package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/tripdesk/internal/adapter/backend"
	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/services"
)

func success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func failure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{domain.ErrTripNotFound, http.StatusNotFound, "TRIP_NOT_FOUND"},
	{domain.ErrLeadNotFound, http.StatusNotFound, "LEAD_NOT_FOUND"},
	{domain.ErrSessionClosed, http.StatusGone, "SESSION_CLOSED"},
	{domain.ErrInsufficientSeats, http.StatusConflict, "SEATS_UNAVAILABLE"},
	{domain.ErrTripUnavailable, http.StatusConflict, "TRIP_UNAVAILABLE"},
	{domain.ErrLockExpired, http.StatusConflict, "LOCK_EXPIRED"},
	{domain.ErrLockRequired, http.StatusConflict, "LOCK_REQUIRED"},
	{domain.ErrBusy, http.StatusConflict, "BUSY"},
	{domain.ErrInvalidStep, http.StatusConflict, "INVALID_STEP"},
	{domain.ErrVersionConflict, http.StatusConflict, "VERSION_CONFLICT"},
	{domain.ErrDateRequired, http.StatusBadRequest, "DATE_REQUIRED"},
	{domain.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{domain.ErrInvalidGroupSize, http.StatusBadRequest, "INVALID_GROUP_SIZE"},
	{domain.ErrRouteRequired, http.StatusBadRequest, "ROUTE_REQUIRED"},
	{domain.ErrUnknownRoute, http.StatusBadRequest, "UNKNOWN_ROUTE"},
	{domain.ErrNameRequired, http.StatusBadRequest, "NAME_REQUIRED"},
	{domain.ErrPhoneRequired, http.StatusBadRequest, "PHONE_REQUIRED"},
	{domain.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{domain.ErrInvalidStage, http.StatusBadRequest, "INVALID_STAGE"},
	{domain.ErrReasonRequired, http.StatusBadRequest, "REASON_REQUIRED"},
	{domain.ErrInvalidPreset, http.StatusBadRequest, "INVALID_PRESET"},
	{domain.ErrNoOwners, http.StatusUnprocessableEntity, "NO_OWNERS"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
}

// respondError maps a service error onto the response envelope. Unknown
// errors are logged with the request and hidden from the caller.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			failure(c, m.status, m.code, m.err.Error())
			return
		}
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "invalid input",
				"details": verr.Fields,
			},
		})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		_ = c.Error(err)
		failure(c, http.StatusBadGateway, "BACKEND_ERROR", "booking backend rejected the request")
		return
	}

	_ = c.Error(err)
	failure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func bindError(c *gin.Context, err error) {
	failure(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
}
