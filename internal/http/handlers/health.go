package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	// ping checks the snapshot/queue backend; nil means always ready.
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		pctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(pctx); err != nil {
			ctx.JSON(503, gin.H{"status": "not ready", "reason": "session backend unreachable"})
			return
		}
	}

	ctx.JSON(200, gin.H{"status": "ready"})
}
