package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"supplychain-analytics/internal/http/middleware"
	"supplychain-analytics/internal/model"
	"supplychain-analytics/internal/service"
	"supplychain-analytics/internal/source"
)

type Handler struct {
	queries *service.QueryService
	log     zerolog.Logger
}

func NewHandler(queries *service.QueryService, log zerolog.Logger) *Handler {
	return &Handler{queries: queries, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", h.healthz)

	protected := r.Group("/analytics")
	protected.Use(authMiddleware)

	protected.GET("/logistics", h.getLogistics)
	protected.GET("/inventory", h.getInventory)
	protected.GET("/dashboard", h.getDashboard)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getLogistics(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	spec := parseFilterSpec(c)

	view, err := h.queries.Logistics(c.Request.Context(), principal, spec)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) getInventory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	spec := parseFilterSpec(c)

	view, err := h.queries.Inventory(c.Request.Context(), principal, spec)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) getDashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	spec := parseFilterSpec(c)

	view, err := h.queries.Dashboard(c.Request.Context(), principal, spec)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func parseFilterSpec(c *gin.Context) model.FilterSpec {
	spec := model.FilterSpec{}

	if fromStr := strings.TrimSpace(c.Query("from")); fromStr != "" {
		if parsed, err := parseQueryTime(fromStr); err == nil {
			spec.Range.From = parsed
		}
	}
	if toStr := strings.TrimSpace(c.Query("to")); toStr != "" {
		if parsed, err := parseQueryTime(toStr); err == nil {
			spec.Range.To = parsed
		}
	}

	spec.Regions = splitList(c.Query("regions"))
	spec.States = splitList(c.Query("states"))

	switch strings.ToLower(strings.TrimSpace(c.Query("group_by"))) {
	case "week":
		spec.GroupBy = model.GroupByWeek
	default:
		spec.GroupBy = model.GroupByDay
	}

	return spec
}

func parseQueryTime(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, source.ErrSourceUnavailable):
		h.log.Error().Err(err).Msg("data source unavailable")
		c.JSON(http.StatusBadGateway, errorResponse("data source unavailable, retry later"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
