package webhook

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/dispatch"
)

type Handler struct {
	targets    repository.WebhookTargetRepository
	deliveries repository.DeliveryLogRepository
	dispatcher *dispatch.Service
}

func NewHandler(
	targets repository.WebhookTargetRepository,
	deliveries repository.DeliveryLogRepository,
	dispatcher *dispatch.Service,
) *Handler {
	return &Handler{
		targets:    targets,
		deliveries: deliveries,
		dispatcher: dispatcher,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.GET("", h.ListTargets)
		webhooks.GET("/deliveries", h.ListDeliveries)
		webhooks.POST("/:id/test", h.TestTarget)
	}
}

func (h *Handler) ListTargets(c *gin.Context) {
	targets, err := h.targets.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(targets))
}

// TestTarget fires a generic envelope at the target so operators can
// verify configuration end-to-end, including retry and logging.
func (h *Handler) TestTarget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid target ID"))
		return
	}

	target, err := h.targets.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.ErrorStatus(err), handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.dispatcher.Dispatch(
		c.Request.Context(),
		target,
		target.EventType,
		gin.H{"test": true},
		"test-"+id.String(),
	)
	if err != nil {
		if dispatch.IsConfigurationError(err) {
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListDeliveries(c *gin.Context) {
	filter := repository.DeliveryLogFilter{
		EventType: model.EventType(c.Query("event_type")),
	}

	if raw := c.Query("target_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid target_id"))
			return
		}
		filter.TargetID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	attempts, err := h.deliveries.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(attempts))
}
