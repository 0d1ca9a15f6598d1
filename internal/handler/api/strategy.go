// Package api exposes the strategy service over HTTP.
package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"QuantEase/internal/domain/models"
	domsvc "QuantEase/internal/domain/service"
	"QuantEase/internal/service/ratelimit"
	"QuantEase/internal/usecase"
	xhttp "QuantEase/pkg/http"
	xlogger "QuantEase/pkg/logger"
	"QuantEase/pkg/queue"
	"QuantEase/pkg/util"
)

// StrategyHandler implements the Echo HTTP surface of the service.
type StrategyHandler struct {
	logger   *xlogger.Logger
	runner   domsvc.StrategyRunner
	advisor  domsvc.PortfolioAdvisor
	conv     *usecase.Conversation
	recorder *usecase.RunRecorder // nil when archiving is disabled
	jobs     *usecase.JobTracker
	publish  queue.QueueService // nil when async runs are disabled
	rl       *ratelimit.Limiter
	seed     int64
}

func NewStrategyHandler(
	logger *xlogger.Logger,
	runner domsvc.StrategyRunner,
	advisor domsvc.PortfolioAdvisor,
	conv *usecase.Conversation,
	recorder *usecase.RunRecorder,
	jobs *usecase.JobTracker,
	publish queue.QueueService,
	seed int64,
) *StrategyHandler {
	return &StrategyHandler{
		logger:   logger,
		runner:   runner,
		advisor:  advisor,
		conv:     conv,
		recorder: recorder,
		jobs:     jobs,
		publish:  publish,
		rl:       ratelimit.New(),
		seed:     seed,
	}
}

func (h *StrategyHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	g := e.Group("/api")
	g.POST("/strategy/run", h.Run)
	g.GET("/strategy/jobs/:id", h.Job)
	g.GET("/strategy/history", h.History)
	g.POST("/conversation", h.CreateConversation)
	g.POST("/conversation/:id/message", h.Message)
	g.POST("/recommendation", h.Recommend)
}

// Index reports service identity and the available endpoints.
func (h *StrategyHandler) Index(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"service": "quantease",
		"endpoints": []string{
			"POST /api/strategy/run",
			"GET /api/strategy/jobs/:id",
			"GET /api/strategy/history",
			"POST /api/conversation",
			"POST /api/conversation/:id/message",
			"POST /api/recommendation",
		},
	})
}

// Run executes the strategy pipeline, synchronously by default or queued
// when async is requested and the queue is configured.
func (h *StrategyHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// POST bodies do not bind query params, so honor ?async=1 explicitly
	if q := c.QueryParam("async"); q == "1" || q == "true" {
		req.Async = true
	}
	if !h.rl.Allow(c.RealIP()+":run", 5, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many runs, slow down", http.StatusTooManyRequests))
	}

	params, err := h.paramsFromRequest(req)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}

	if req.Async && h.publish != nil {
		jobID := newJobID()
		h.jobs.Create(jobID)
		payload := usecase.RunJobPayload{JobID: jobID, Params: params}
		if err := h.publish.PublishMessage(c.Request().Context(), usecase.RunJobType, payload); err != nil {
			h.logger.Error("enqueue run failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("could not enqueue run").WithError(err))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, &models.JobResponse{JobID: jobID, Status: models.JobStatusQueued})
	}

	result, err := h.runner.Run(c.Request().Context(), params)
	if err != nil {
		return xhttp.AppErrorResponse(c, mapPipelineError(err))
	}
	return xhttp.SuccessResponse(c, result.ToResponse())
}

// Job reports the state of an async run.
func (h *StrategyHandler) Job(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("job id required"))
	}
	resp, ok := h.jobs.Get(id)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("job %s not found", id))
	}
	return xhttp.SuccessResponse(c, resp)
}

// History lists recent archived runs.
func (h *StrategyHandler) History(c echo.Context) error {
	if h.recorder == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("run archive disabled"))
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.recorder.History(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history unavailable").WithError(err))
	}
	if recs == nil {
		recs = []*models.RunRecord{}
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

// CreateConversation opens a scripted dialogue session.
func (h *StrategyHandler) CreateConversation(c echo.Context) error {
	req := &models.ConversationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	resp, err := h.conv.Create(req.UserID)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	return xhttp.CreatedResponse(c, resp)
}

// Message advances a dialogue session.
func (h *StrategyHandler) Message(c echo.Context) error {
	id := c.Param("id")
	req := &models.MessageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.conv.Process(c.Request().Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("conversation %s not found", id))
		}
		h.logger.Error("dialogue failed", xlogger.String("conversation_id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("dialogue failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, resp)
}

// Recommend builds a portfolio recommendation for a user profile.
func (h *StrategyHandler) Recommend(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.advisor.Recommend(c.Request().Context(), req.Profile())
	if err != nil {
		return xhttp.AppErrorResponse(c, mapPipelineError(err))
	}
	return xhttp.SuccessResponse(c, rec.ToResponse())
}

func (h *StrategyHandler) paramsFromRequest(req *models.RunRequest) (models.RunParams, error) {
	start, err := util.ParseDate(req.StartDate)
	if err != nil {
		return models.RunParams{}, fmt.Errorf("start_date: %w", err)
	}
	var end time.Time
	if req.EndDate != "" {
		end, err = util.ParseDate(req.EndDate)
		if err != nil {
			return models.RunParams{}, fmt.Errorf("end_date: %w", err)
		}
		if !end.After(start) {
			return models.RunParams{}, fmt.Errorf("end_date must be after start_date")
		}
	}
	return models.RunParams{
		Ticker:         req.Ticker,
		StartDate:      start,
		EndDate:        end,
		Model:          req.Model,
		Threshold:      req.Threshold,
		InitialCapital: req.InitialCapital,
		Seed:           h.seed,
	}, nil
}

// mapPipelineError converts domain errors to transport errors: missing data
// is 404, bad parameters and unusable histories are 422, the rest 500.
func mapPipelineError(err error) error {
	switch {
	case errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrUnsupportedModel),
		errors.Is(err, models.ErrInvalidThreshold):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrEmptySeries),
		errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.NewAppError("ERR_UNPROCESSABLE", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	default:
		return xhttp.InternalError("strategy run failed").WithError(err)
	}
}

func newJobID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("job-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
