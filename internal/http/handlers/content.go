package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bioassoc/memberhub/internal/content"
	domain "github.com/bioassoc/memberhub/internal/domain/content"
)

// ContentHandler serves the public catalog. Responses carry an ETag so
// browsers and the CDN can revalidate cheaply.
type ContentHandler struct {
	catalog content.Source
}

func NewContentHandler(catalog content.Source) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

func (h *ContentHandler) Projects(ctx *gin.Context) {
	items, err := h.catalog.Projects(ctx.Request.Context())
	respondList(ctx, items, err)
}

func (h *ContentHandler) Project(ctx *gin.Context) {
	item, err := h.catalog.Project(ctx.Request.Context(), ctx.Param("id"))
	respondItem(ctx, item, err)
}

func (h *ContentHandler) Events(ctx *gin.Context) {
	items, err := h.catalog.Events(ctx.Request.Context())
	respondList(ctx, items, err)
}

func (h *ContentHandler) Event(ctx *gin.Context) {
	item, err := h.catalog.Event(ctx.Request.Context(), ctx.Param("id"))
	respondItem(ctx, item, err)
}

func (h *ContentHandler) Services(ctx *gin.Context) {
	items, err := h.catalog.Services(ctx.Request.Context())
	respondList(ctx, items, err)
}

func (h *ContentHandler) Service(ctx *gin.Context) {
	item, err := h.catalog.Service(ctx.Request.Context(), ctx.Param("id"))
	respondItem(ctx, item, err)
}

func (h *ContentHandler) Posts(ctx *gin.Context) {
	items, err := h.catalog.Posts(ctx.Request.Context())
	respondList(ctx, items, err)
}

func (h *ContentHandler) Post(ctx *gin.Context) {
	item, err := h.catalog.Post(ctx.Request.Context(), ctx.Param("slug"))
	respondItem(ctx, item, err)
}

func (h *ContentHandler) Whitepapers(ctx *gin.Context) {
	items, err := h.catalog.Whitepapers(ctx.Request.Context())
	respondList(ctx, items, err)
}

func respondList[T any](ctx *gin.Context, items []T, err error) {
	if err != nil {
		RespondBadGateway(ctx, "Content is temporarily unavailable.")
		return
	}

	if items == nil {
		items = []T{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func respondItem[T any](ctx *gin.Context, item T, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		RespondNotFound(ctx, "No such content item.")
		return
	}

	if err != nil {
		RespondBadGateway(ctx, "Content is temporarily unavailable.")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, item)
}
