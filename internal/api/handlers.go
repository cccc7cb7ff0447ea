// Package api exposes the polarity pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/polarity/internal/clients"
	"github.com/spacesedan/polarity/internal/directory"
	"github.com/spacesedan/polarity/internal/logging"
	"github.com/spacesedan/polarity/internal/models"
	"github.com/spacesedan/polarity/internal/processing"
)

const (
	MsgInvalidDateRange = "Invalid date_range format. Use YYYYMMDD,YYYYMMDD format"
	MsgInvalidLimit     = "Invalid limit format. Use a positive integer"
	MsgUpstreamDown     = "upstream service unavailable"
	MsgInternal         = "something went wrong. Try again later"
)

type PolarityService interface {
	Polarity(ctx context.Context, subfeddit string, q models.QueryOptions) ([]models.ScoredComment, error)
}

type SubfedditNames interface {
	Names() []string
}

type PolarityHandler struct {
	Service         PolarityService
	Subfeddits      SubfedditNames
	UpstreamHealthy *atomic.Bool
}

func NewPolarityHandlers(svc PolarityService, subfeddits SubfedditNames, upstreamHealthy *atomic.Bool) *PolarityHandler {
	return &PolarityHandler{Service: svc, Subfeddits: subfeddits, UpstreamHealthy: upstreamHealthy}
}

func NewRouter(h *PolarityHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), logging.RequestLogger())

	engine.GET("/healthz", h.Healthz)
	engine.GET("/subfeddits", h.ListSubfeddits)
	engine.GET("/polarity/:subfeddit", h.GetPolarity)

	return engine
}

func (h *PolarityHandler) GetPolarity(c *gin.Context) {
	subfeddit := c.Param("subfeddit")

	opts, err := processing.ParseQueryOptions(c.Query("sort"), c.Query("limit"), c.Query("date_range"))
	if err != nil {
		c.JSON(errorCodeDefiner(err), gin.H{"error": errorMessage(err)})
		return
	}

	res, err := h.Service.Polarity(c.Request.Context(), subfeddit, opts)
	if err != nil {
		c.JSON(errorCodeDefiner(err), gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PolarityHandler) ListSubfeddits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subfeddits": h.Subfeddits.Names()})
}

func (h *PolarityHandler) Healthz(c *gin.Context) {
	if h.UpstreamHealthy != nil && !h.UpstreamHealthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "upstream": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "upstream": "healthy"})
}

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, processing.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, processing.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrUnknownSubfeddit):
		return http.StatusNotFound
	case errors.Is(err, clients.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	var notFound *directory.NotFoundError
	switch {
	case errors.Is(err, processing.ErrInvalidDateRange):
		return MsgInvalidDateRange
	case errors.Is(err, processing.ErrInvalidLimit):
		return MsgInvalidLimit
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.Is(err, clients.ErrUpstreamUnavailable):
		return MsgUpstreamDown
	}

	return MsgInternal
}
