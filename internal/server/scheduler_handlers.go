package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/usecase"
)

type createJobRequest struct {
	TargetURL       string `json:"target_url"`
	Cadence         string `json:"cadence"`
	IntervalSeconds int64  `json:"interval_seconds"`
	Config          string `json:"config"`
}

type jobResponse struct {
	ID        string     `json:"id"`
	TargetURL string     `json:"target_url"`
	Cadence   string     `json:"cadence"`
	Status    string     `json:"status"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt time.Time  `json:"next_run_at"`
	Config    string     `json:"config,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toJobResponse(job domain.ScheduledJob) jobResponse {
	return jobResponse{
		ID:        job.ID,
		TargetURL: job.TargetURL,
		Cadence:   string(job.Cadence),
		Status:    string(job.Status),
		LastRunAt: job.LastRunAt,
		NextRunAt: job.NextRunAt,
		Config:    job.Config,
		CreatedAt: job.CreatedAt,
	}
}

func (s *Server) createJob(c echo.Context) error {
	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TargetURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target_url is required")
	}

	cadence := domain.Cadence(req.Cadence)
	switch cadence {
	case domain.CadenceDaily, domain.CadenceWeekly, domain.CadenceMonthly, domain.CadenceCustom:
	case "":
		cadence = domain.CadenceDaily
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown cadence")
	}

	custom := time.Duration(req.IntervalSeconds) * time.Second
	job, err := s.scheduler.CreateJob(c.Request().Context(), req.TargetURL, cadence, custom, req.Config)
	if err != nil {
		s.logger.Error("create job", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create scheduled job")
	}

	return c.JSON(http.StatusCreated, toJobResponse(job))
}

func (s *Server) listJobs(c echo.Context) error {
	jobs, err := s.jobs.List(c.Request().Context())
	if err != nil {
		s.logger.Error("list jobs", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch scheduled jobs")
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) pauseJob(c echo.Context) error {
	return s.toggleJob(c, s.scheduler.Pause, "job paused")
}

func (s *Server) resumeJob(c echo.Context) error {
	return s.toggleJob(c, s.scheduler.Resume, "job resumed")
}

func (s *Server) toggleJob(c echo.Context, toggle func(ctx context.Context, id string) error, message string) error {
	if err := toggle(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "job not found")
		}
		s.logger.Error("toggle job", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update job")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

func (s *Server) runJobNow(c echo.Context) error {
	err := s.scheduler.RunNow(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}
	if errors.Is(err, usecase.ErrJobNotRunnable) {
		return echo.NewHTTPError(http.StatusConflict, "job is not active")
	}
	if err != nil {
		s.logger.Error("run job now", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to run job")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "job started"})
}
