package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smbrine/exchange-api-test-task/internal/apperrors"
	portssvc "github.com/smbrine/exchange-api-test-task/internal/core/ports/services"
	"github.com/smbrine/exchange-api-test-task/internal/dto"
	"github.com/smbrine/exchange-api-test-task/internal/middleware"
)

// currencyNotFoundDetail is the contract body for an unresolvable pair.
const currencyNotFoundDetail = "Could not find one of the specified currencies (or neither of them)."

// rateHandler handles HTTP requests for currency conversion.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{
		rateService: rs,
	}
}

// registerRateRoutes registers routes related to rate conversion.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := newRateHandler(rateService)

	rg.GET("/rates", h.getRates)
}

// getRates godoc
// @Summary Convert a value between two currencies
// @Description Resolves the division rate for the requested pair and date, then returns value / rate rounded to two decimal places.
// @Tags rates
// @Produce json
// @Param from query string false "From currency code (3 letters)" default(USD)
// @Param to query string false "To currency code (3 letters)" default(RUB)
// @Param value query number false "Value to convert, must be positive" default(100)
// @Param date query string false "Exchange date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.RatesResponse
// @Failure 400 {object} dto.ErrorDetailResponse "Unknown currency or invalid parameters"
// @Failure 500 {object} map[string]string "Failed to convert currency"
// @Router /rates [get]
func (h *rateHandler) getRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.RatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	params.Normalize(time.Now())

	logger = logger.With(slog.String("from", params.From), slog.String("to", params.To))
	logger.Info("Received request to convert currency",
		slog.Float64("value", params.Value),
		slog.Time("date", params.Date),
	)

	result, err := h.rateService.Convert(c.Request.Context(), params.From, params.To, params.Value, params.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No division rate for pair", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, dto.ErrorDetailResponse{Detail: currencyNotFoundDetail})
		} else {
			logger.Error("Failed to convert currency", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert currency"})
		}
		return
	}

	logger.Info("Currency converted successfully", slog.Float64("result", result))
	c.JSON(http.StatusOK, dto.RatesResponse{Result: result})
}
