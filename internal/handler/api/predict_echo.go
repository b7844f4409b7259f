package api

import (
	"errors"
	"net/http"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictEchoHandler exposes the prediction pipeline over HTTP.
type PredictEchoHandler struct {
	logger  *xlogger.Logger
	predict *usecase.PredictUseCase
	candles *usecase.CandlesUseCase

	cache cache.Service
	ttl   time.Duration

	store domrepo.CandleStore
}

func NewPredictEchoHandler(logger *xlogger.Logger, predict *usecase.PredictUseCase, candles *usecase.CandlesUseCase) *PredictEchoHandler {
	return &PredictEchoHandler{logger: logger, predict: predict, candles: candles, ttl: 5 * time.Minute}
}

// SetCache enables report caching with the given TTL.
func (h *PredictEchoHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.ttl = ttl
	}
}

// SetStore wires the candle store for health checks.
func (h *PredictEchoHandler) SetStore(s domrepo.CandleStore) { h.store = s }

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predictions", h.Predictions)
	g.GET("/candles", h.Candles)
	e.GET("/health", h.Health)
}

func (h *PredictEchoHandler) Predictions(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	icfg := req.IndicatorConfig()

	key := cache.GenerateKeyWithParams("predictions", req.Symbol, icfg.Key())
	if h.cache != nil {
		var cached models.PredictionReport
		if err := h.cache.Get(c.Request().Context(), key, &cached); err == nil {
			return xhttp.SuccessResponse(c, &cached)
		}
	}

	report, err := h.predict.GetPredictions(c.Request().Context(), req.Symbol, icfg)
	if err != nil {
		h.logger.Error("prediction usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, predictionAppError(req.Symbol, err))
	}

	if h.cache != nil {
		if cerr := h.cache.Set(c.Request().Context(), key, report, h.ttl); cerr != nil {
			h.logger.Warn("prediction cache set failed", xlogger.Error(cerr))
		}
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *PredictEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	params := usecase.GetCandlesParams{
		Symbol: req.Symbol,
		From:   xhttp.ParseTimeDefault(req.From, now.AddDate(-1, 0, 0)),
		To:     xhttp.ParseTimeDefault(req.To, now),
		Limit:  req.Limit,
	}

	res, err := h.candles.GetCandles(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("candles usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, predictionAppError(req.Symbol, err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		status["store"] = "ok"
	}
	return c.JSON(http.StatusOK, status)
}

// predictionAppError maps pipeline errors to HTTP statuses: unknown symbols
// are 404, starved datasets 422, everything else stays 500.
func predictionAppError(symbol string, err error) error {
	var insufficient *models.InsufficientDataError
	switch {
	case errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundErrorf("no price history for %s", symbol).WithError(err)
	case errors.As(err, &insufficient):
		return xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	default:
		return err
	}
}
