package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

// ChartRenderer turns a chart model into an image.
type ChartRenderer interface {
	Render(w io.Writer, c *walkplan.Chart, format chartimg.Format) error
}

// Handler wires the HTTP transport to the walk planner.
type Handler struct {
	planner walkplan.Service
	charts  ChartRenderer
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(planner walkplan.Service, charts ChartRenderer, logger *slog.Logger) *Handler {
	return &Handler{
		planner: planner,
		charts:  charts,
		logger:  logger.With("component", "http.handler"),
	}
}

// Plan runs one walk planning submission.
func (h *Handler) Plan(c *gin.Context) {
	var req walkplan.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.planner.Plan(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Surface returns what a surface currently displays.
func (h *Handler) Surface(c *gin.Context) {
	view, err := h.planner.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// SurfaceChart renders the chart of a surface as SVG.
func (h *Handler) SurfaceChart(c *gin.Context) {
	var buf bytes.Buffer
	err := h.planner.RenderChart(c.Request.Context(), c.Param("id"), func(chart *walkplan.Chart) error {
		return h.charts.Render(&buf, chart, chartimg.FormatSVG)
	})
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			abortWithError(c, fromAppError(err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "chart_render_failed", "could not render chart", err))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.MessageOf(err)
}
