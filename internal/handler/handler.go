package handler

import (
	"bytes"
	"net/http"

	"sheetproxy/internal/model"
	"sheetproxy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const jsonContentType = "application/json; charset=utf-8"

// Handler dispatches inbound API calls to the upstream client of each resource.
type Handler struct {
	clients map[model.Resource]service.UpstreamClient
	audit   service.AuditLog
	log     *zap.Logger
}

func New(log *zap.Logger, audit service.AuditLog, clients ...service.UpstreamClient) *Handler {
	if audit == nil {
		audit = service.NopAuditLog{}
	}
	h := &Handler{
		clients: make(map[model.Resource]service.UpstreamClient, len(clients)),
		audit:   audit,
		log:     log,
	}
	for _, c := range clients {
		h.clients[c.Resource()] = c
	}
	return h
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func (h *Handler) ListHandler(resource model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := h.client(c, resource)
		if !ok {
			return
		}

		env, err := client.ReadAll(c.Request.Context())
		if err != nil {
			h.fail(c, resource, "read all", fetchFailed(resource), err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, env)
	}
}

// GetHandler looks up one record; param names the route parameter holding the id.
func (h *Handler) GetHandler(resource model.Resource, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := h.client(c, resource)
		if !ok {
			return
		}

		id := c.Param(param)
		if id == "" {
			c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Message: "Missing " + param})
			return
		}

		env, err := client.ReadByID(c.Request.Context(), id)
		if err != nil {
			h.fail(c, resource, "read by id", fetchFailed(resource), err, zap.String("id", id))
			return
		}

		c.Data(http.StatusOK, jsonContentType, env)
	}
}

// WriteHandler forwards an add/update/delete body and relays the upstream answer.
func (h *Handler) WriteHandler(resource model.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := h.client(c, resource)
		if !ok {
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Message: "Invalid request"})
			return
		}

		var req model.WriteRequest
		if !isJSONObject(body) {
			c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Message: "Invalid request: body must be a JSON object"})
			return
		}
		if err := binding.JSON.BindBody(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorEnvelope{Message: "Invalid request"})
			return
		}
		if req.Action == "" {
			h.log.Warn("Write request without action",
				zap.String("request_id", RequestIDFrom(c)),
				zap.String("resource", string(resource)))
		}

		res, err := client.Write(c.Request.Context(), body)
		h.recordWrite(c, resource, req.Action, err)
		if err != nil {
			h.fail(c, resource, "write", submitFailed(resource), err, zap.String("action", req.Action))
			return
		}

		if res.IsJSON {
			c.Data(http.StatusOK, jsonContentType, res.Body)
			return
		}

		contentType := res.ContentType
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		c.Data(http.StatusOK, contentType, res.Body)
	}
}

func (h *Handler) client(c *gin.Context, resource model.Resource) (service.UpstreamClient, bool) {
	client, ok := h.clients[resource]
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorEnvelope{Message: "Unknown resource " + string(resource)})
	}
	return client, ok
}

// fail logs err and answers with message only; err may carry the upstream URL.
func (h *Handler) fail(c *gin.Context, resource model.Resource, op, message string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("request_id", RequestIDFrom(c)),
		zap.String("resource", string(resource)),
		zap.String("op", op),
		zap.Error(err),
	)
	h.log.Error("Proxy request failed", fields...)

	c.JSON(http.StatusInternalServerError, model.ErrorEnvelope{Message: message})
}

func fetchFailed(resource model.Resource) string {
	return "Failed to fetch " + string(resource) + " data"
}

func submitFailed(resource model.Resource) string {
	return "Failed to submit " + string(resource) + " data"
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (h *Handler) recordWrite(c *gin.Context, resource model.Resource, action string, writeErr error) {
	entry := model.AuditEntry{
		RequestID: RequestIDFrom(c),
		Resource:  resource,
		Action:    action,
		Success:   writeErr == nil,
	}
	if writeErr != nil {
		entry.Message = writeErr.Error()
	}

	if err := h.audit.Record(c.Request.Context(), entry); err != nil {
		h.log.Warn("Failed to record audit entry",
			zap.String("request_id", entry.RequestID),
			zap.Error(err))
	}
}
