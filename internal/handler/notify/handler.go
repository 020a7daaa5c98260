package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/inspection"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/sophia"
)

// Handler exposes the notification trigger endpoints: the bulk sophia
// send and the water inspection report.
type Handler struct {
	sophiaSvc     *sophia.Service
	inspectionSvc *inspection.Service
}

func NewHandler(sophiaSvc *sophia.Service, inspectionSvc *inspection.Service) *Handler {
	return &Handler{
		sophiaSvc:     sophiaSvc,
		inspectionSvc: inspectionSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notify := r.Group("/notify")
	{
		notify.POST("/sophia", h.SendSophia)
		notify.POST("/inspection", h.ReportInspection)
	}
}

func (h *Handler) SendSophia(c *gin.Context) {
	report, err := h.sophiaSvc.SendPendingOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

type inspectionRequest struct {
	Readings []model.TankReading `json:"readings" binding:"required,min=1"`
}

func (h *Handler) ReportInspection(c *gin.Context) {
	var req inspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	alert, results, err := h.inspectionSvc.ReportWaterReadings(c.Request.Context(), req.Readings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	if alert == nil {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"alerts": 0}))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"alert":   alert,
		"results": results,
	}))
}
