package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sjoshi/otp/pkg/application/services"
	"github.com/sjoshi/otp/pkg/domain/entities"
)

// HealthChecker reports whether the supply backend is reachable
type HealthChecker func(ctx context.Context) error

// Handlers contains the HTTP handlers for the promise API
type Handlers struct {
	promise      *services.PromiseService
	apply        *services.ApplyService
	defaultRules entities.BusinessRules
	health       HealthChecker
}

// NewHandlers creates the API handlers. The apply service and health
// checker may be nil when write-back or the ERP backend is not wired.
func NewHandlers(promise *services.PromiseService, apply *services.ApplyService, defaultRules entities.BusinessRules, health HealthChecker) *Handlers {
	return &Handlers{
		promise:      promise,
		apply:        apply,
		defaultRules: defaultRules,
		health:       health,
	}
}

// Register attaches all routes to a gin engine
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/healthz", h.HandleHealth)

	v1 := router.Group("/v1")
	v1.POST("/promise", h.HandlePromise)
	v1.POST("/promise/apply", h.HandleApply)
	v1.POST("/procurement/suggest", h.HandleSuggest)
}

// NewRouter builds a gin engine with all routes registered
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router)
	return router
}

// HandlePromise handles POST /v1/promise
func (h *Handlers) HandlePromise(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePromise")

	var req PromiseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	plan, ok := h.computePlan(c, logger, &req)
	if !ok {
		return
	}

	logger.Info("promise computed",
		"customer", plan.Customer,
		"confidence", plan.Confidence.String(),
		"fully_fulfillable", plan.FullyFulfillable)
	c.JSON(http.StatusOK, planToDTO(plan))
}

// HandleApply handles POST /v1/promise/apply: computes a promise and
// writes it back onto the named sales order
func (h *Handlers) HandleApply(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleApply")

	if h.apply == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error: "write-back is not configured",
			Code:  "APPLY_NOT_CONFIGURED",
		})
		return
	}

	var req ApplyRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	plan, ok := h.computePlan(c, logger, &req.PromiseRequestDTO)
	if !ok {
		return
	}

	outcome, err := h.apply.ApplyPromise(c.Request.Context(), req.SalesOrderID, plan)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	logger.Info("promise applied", "sales_order", req.SalesOrderID, "actions", outcome.ActionsTaken)
	c.JSON(http.StatusOK, ApplyResponseDTO{
		SalesOrderID: req.SalesOrderID,
		ActionsTaken: outcome.ActionsTaken,
		Plan:         planToDTO(plan),
	})
}

// HandleSuggest handles POST /v1/procurement/suggest: computes a
// promise and raises a material request for any shortages
func (h *Handlers) HandleSuggest(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSuggest")

	if h.apply == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error: "procurement suggestions are not configured",
			Code:  "SUGGEST_NOT_CONFIGURED",
		})
		return
	}

	var req SuggestRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	plan, ok := h.computePlan(c, logger, &req.PromiseRequestDTO)
	if !ok {
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "Medium"
	}

	mrID, err := h.apply.SuggestProcurement(c.Request.Context(), plan, priority)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, SuggestResponseDTO{
		MaterialRequestID: mrID,
		Plan:              planToDTO(plan),
	})
}

// HandleHealth handles GET /healthz
func (h *Handlers) HandleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handlers) computePlan(c *gin.Context, logger *slog.Logger, req *PromiseRequestDTO) (*entities.PromisePlan, bool) {
	domainReq, err := req.toDomain(h.defaultRules)
	if err != nil {
		h.writeError(c, logger, err)
		return nil, false
	}

	plan, err := h.promise.ComputePromise(c.Request.Context(), domainReq)
	if err != nil {
		h.writeError(c, logger, err)
		return nil, false
	}
	return plan, true
}

// writeError maps domain errors onto HTTP statuses
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		validationErr *entities.ValidationError
		shortageErr   *entities.ShortageError
		supplyErr     *entities.SupplyUnavailableError
		writeBackErr  *entities.WriteBackError
	)

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("validation failed", "field", validationErr.Field, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
			Field: validationErr.Field,
		})
	case errors.As(err, &shortageErr):
		logger.Info("strict mode shortage", "item", shortageErr.ItemCode)
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SHORTAGE"})
	case errors.As(err, &supplyErr):
		logger.Error("supply backend unavailable", "item", supplyErr.ItemCode, "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "SUPPLY_UNAVAILABLE"})
	case errors.As(err, &writeBackErr):
		logger.Error("write-back failed", "sales_order", writeBackErr.SalesOrderID, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "WRITE_BACK_FAILED"})
	default:
		logger.Error("internal error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
	}
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
