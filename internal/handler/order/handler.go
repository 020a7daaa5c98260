package order

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/handler"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	orderService "github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/service/order"
)

type Handler struct {
	service orderService.Servicer
}

func NewHandler(service orderService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.POST("/bulk", h.CreateOrders)
		orders.GET("/:id", h.GetOrder)
	}
}

type createOrderRequest struct {
	StationID     string     `json:"station_id" binding:"required,uuid"`
	TankID        string     `json:"tank_id" binding:"required,uuid"`
	ProductType   string     `json:"product_type" binding:"required"`
	Quantity      float64    `json:"quantity" binding:"min=0"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Notes         string     `json:"notes"`
}

func (req *createOrderRequest) toModel() *model.Order {
	return &model.Order{
		StationID:     uuid.MustParse(req.StationID),
		TankID:        uuid.MustParse(req.TankID),
		ProductType:   req.ProductType,
		Quantity:      req.Quantity,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order := req.toModel()
	if err := h.service.CreateOrder(c.Request.Context(), order); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

type createOrdersRequest struct {
	Orders []createOrderRequest `json:"orders" binding:"required,min=1,dive"`
}

func (h *Handler) CreateOrders(c *gin.Context) {
	var req createOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	orders := make([]*model.Order, 0, len(req.Orders))
	for i := range req.Orders {
		orders = append(orders, req.Orders[i].toModel())
	}

	if err := h.service.CreateOrders(c.Request.Context(), orders); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{"created": len(orders)}))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid order ID"))
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.ErrorStatus(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}
