// Package api exposes the small admin surface: health, the latest run
// snapshot and ad hoc scan triggering.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boampwatch/internal/anomaly"
	"boampwatch/internal/scheduler"
	"boampwatch/internal/watch"
	"boampwatch/platform/apperr"
	"boampwatch/platform/httpkit"
	"boampwatch/platform/logger"
	"boampwatch/platform/validator"
)

// RunSource reads run snapshots. Implemented by the watch runner.
type RunSource interface {
	LatestRun() (*watch.RunResult, bool)
}

// AnomalySource reads the collected data-quality findings. Implemented by
// the anomaly sink.
type AnomalySource interface {
	Recent() []anomaly.Finding
}

type Handler struct {
	runs      RunSource
	scans     scheduler.ScanScheduler
	anomalies AnomalySource
	validate  *validator.Validator
	log       *logger.Logger
}

func NewHandler(runs RunSource, scans scheduler.ScanScheduler, anomalies AnomalySource, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{runs: runs, scans: scans, anomalies: anomalies, validate: validate, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/runs/latest", h.latestRun)
	group.GET("/anomalies", h.listAnomalies)
	group.POST("/scans", h.triggerScan)
}

func (h *Handler) listAnomalies(c *gin.Context) {
	findings := h.anomalies.Recent()
	httpkit.OK(c, gin.H{"count": len(findings), "findings": findings})
}

func (h *Handler) latestRun(c *gin.Context) {
	result, ok := h.runs.LatestRun()
	if !ok {
		httpkit.HandleError(c, apperr.NotFound("no run recorded yet"))
		return
	}
	httpkit.OK(c, result)
}

type triggerScanRequest struct {
	Date   string `json:"date" validate:"required,scandate"`
	Select string `json:"select" validate:"omitempty,oneof=attribution ao rectificatif"`
}

func (h *Handler) triggerScan(c *gin.Context) {
	var req triggerScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	payload := scheduler.ScanDatePayload{Date: req.Date, Select: req.Select}
	if err := h.scans.EnqueueScanDate(c.Request.Context(), payload); err != nil {
		h.log.Error("scan enqueue failed", "date", req.Date, "error", err)
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "could not enqueue scan", err))
		return
	}

	httpkit.JSON(c, http.StatusAccepted, gin.H{"date": req.Date, "status": "queued"})
}
