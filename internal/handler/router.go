package handler

import (
	"sheetproxy/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log), CORS())

	r.GET("/ping", Ping)

	api := r.Group("/api")
	api.GET("/products", h.ListHandler(model.ResourceProducts))
	api.GET("/products/:code", h.GetHandler(model.ResourceProducts, "code"))
	api.POST("/products", h.WriteHandler(model.ResourceProducts))

	api.GET("/orders", h.ListHandler(model.ResourceOrders))
	api.GET("/orders/:id", h.GetHandler(model.ResourceOrders, "id"))
	api.POST("/orders", h.WriteHandler(model.ResourceOrders))
	api.GET("/track-order/:orderId", h.GetHandler(model.ResourceOrders, "orderId"))

	api.GET("/agents", h.ListHandler(model.ResourceAgents))
	api.GET("/agents/:id", h.GetHandler(model.ResourceAgents, "id"))
	api.POST("/agents", h.WriteHandler(model.ResourceAgents))

	return r
}
