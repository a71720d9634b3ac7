// Package controller exposes the knowledge search pipeline over HTTP.
package controller

import (
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/dto"
	"github.com/flipbytes-dk/absolutely-you/internal/web/knowledge/service"
)

// webhookMissingQueryMsg is returned with HTTP 200 on the webhook route;
// the upstream caller does not always handle non-2xx responses.
const webhookMissingQueryMsg = "No query found in webhook payload."

// Knowledge handles the search endpoints.
type Knowledge struct {
	svc *service.Knowledge
}

// New creates the knowledge controller.
func New(svc *service.Knowledge) (*Knowledge, error) {
	if svc == nil {
		return nil, errors.New("knowledge service is required")
	}

	return &Knowledge{svc: svc}, nil
}

// RegisterRoutes mounts the search endpoints on the given router.
func (c *Knowledge) RegisterRoutes(router gin.IRouter) {
	router.POST("/search", c.Search)
	router.POST("/search/manual", c.SearchManual)
	router.POST("/webhook/search", c.WebhookSearch)
}

// Search accepts any tolerated payload shape. Normalization failures are
// client errors, engine failures are server errors.
func (c *Knowledge) Search(ctx *gin.Context) {
	req, ok := c.normalizeBody(ctx)
	if !ok {
		return
	}

	c.respond(ctx, req)
}

// SearchManual accepts only the flat {query} body.
func (c *Knowledge) SearchManual(ctx *gin.Context) {
	var body dto.ManualSearchRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest,
			dto.ErrorResponse{Detail: service.ErrMalformedPayload.Error()})
		return
	}

	query := strings.TrimSpace(body.Query)
	if query == "" {
		ctx.JSON(http.StatusBadRequest,
			dto.ErrorResponse{Detail: service.ErrEmptyQuery.Error()})
		return
	}

	c.respond(ctx, dto.NormalizedRequest{
		Query:      query,
		ToolCallID: body.ToolCallID,
	})
}

// WebhookSearch accepts any tolerated shape but reports a missing query as
// a soft error with HTTP 200, by design.
func (c *Knowledge) WebhookSearch(ctx *gin.Context) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusOK, dto.WebhookSoftError{Error: webhookMissingQueryMsg})
		return
	}

	req, err := service.Normalize(gmw.GetLogger(ctx).Named("normalize"), raw)
	if err != nil {
		gmw.GetLogger(ctx).Warn("webhook payload has no query", zap.Error(err))
		ctx.JSON(http.StatusOK, dto.WebhookSoftError{Error: webhookMissingQueryMsg})
		return
	}

	c.respond(ctx, req)
}

// normalizeBody reads and normalizes the request body, writing the HTTP 400
// failure response itself. The second return value reports success.
func (c *Knowledge) normalizeBody(ctx *gin.Context) (dto.NormalizedRequest, bool) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest,
			dto.ErrorResponse{Detail: service.ErrMalformedPayload.Error()})
		return dto.NormalizedRequest{}, false
	}

	req, err := service.Normalize(gmw.GetLogger(ctx).Named("normalize"), raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})
		return dto.NormalizedRequest{}, false
	}

	return req, true
}

// respond dispatches the query and writes the shaped envelope.
func (c *Knowledge) respond(ctx *gin.Context, req dto.NormalizedRequest) {
	items, err := c.svc.Search(ctx.Request.Context(), req.Query)
	if err != nil {
		gmw.GetLogger(ctx).Error("knowledge search failed",
			zap.Error(err), zap.String("query", req.Query))
		ctx.JSON(http.StatusInternalServerError,
			dto.ErrorResponse{Detail: errors.Wrap(err, "search failed").Error()})
		return
	}

	ctx.JSON(http.StatusOK, service.ShapeResponse(req, items))
}
