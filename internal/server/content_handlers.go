package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/usecase"
)

type createContentRequest struct {
	SourceURL string `json:"source_url"`
	FetchMode string `json:"fetch_mode"`
	Metadata  string `json:"metadata"`
}

type rewriteRequest struct {
	Provider string `json:"provider"`
	Style    string `json:"style"`
}

type contentResponse struct {
	ID             string    `json:"id"`
	SourceURL      string    `json:"source_url"`
	FetchMode      string    `json:"fetch_mode"`
	RawTitle       string    `json:"raw_title,omitempty"`
	RawBody        string    `json:"raw_body,omitempty"`
	RewrittenTitle string    `json:"rewritten_title,omitempty"`
	RewrittenBody  string    `json:"rewritten_body,omitempty"`
	Status         string    `json:"status"`
	Metadata       string    `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toContentResponse(item domain.ContentItem) contentResponse {
	return contentResponse{
		ID:             item.ID,
		SourceURL:      item.SourceURL,
		FetchMode:      string(item.FetchMode),
		RawTitle:       item.RawTitle,
		RawBody:        item.RawBody,
		RewrittenTitle: item.RewrittenTitle,
		RewrittenBody:  item.RewrittenBody,
		Status:         string(item.Status),
		Metadata:       item.Metadata,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func (s *Server) createContent(c echo.Context) error {
	var req createContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SourceURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "source_url is required")
	}

	mode := domain.FetchMode(req.FetchMode)
	if mode != "" && mode != domain.FetchStatic && mode != domain.FetchRendered {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown fetch_mode")
	}

	ctx := c.Request().Context()
	item, task, err := s.pipeline.CreateItem(ctx, req.SourceURL, mode, req.Metadata)
	if err != nil {
		s.logger.Error("create content", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create post")
	}

	if err := s.dispatcher.Enqueue(ctx, task); err != nil {
		s.logger.Error("enqueue fetch", "item_id", item.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enqueue scraping")
	}

	return c.JSON(http.StatusCreated, toContentResponse(item))
}

func (s *Server) listContent(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	items, err := s.items.List(c.Request().Context(), skip, limit)
	if err != nil {
		s.logger.Error("list content", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch posts")
	}

	out := make([]contentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toContentResponse(item))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getContent(c echo.Context) error {
	item, err := s.items.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		s.logger.Error("get content", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch post")
	}
	return c.JSON(http.StatusOK, toContentResponse(item))
}

func (s *Server) triggerRewrite(c echo.Context) error {
	var req rewriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	task, err := s.pipeline.TriggerRewrite(ctx, c.Param("id"), req.Provider, req.Style)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if errors.Is(err, usecase.ErrNothingToRewrite) {
		return echo.NewHTTPError(http.StatusBadRequest, "no content to rewrite")
	}
	if err != nil {
		s.logger.Error("trigger rewrite", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to trigger rewrite")
	}

	if err := s.dispatcher.Enqueue(ctx, task); err != nil {
		s.logger.Error("enqueue rewrite", "item_id", task.ItemID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enqueue rewriting")
	}

	return c.JSON(http.StatusAccepted, map[string]string{"message": "rewriting task started"})
}

func (s *Server) deleteContent(c echo.Context) error {
	err := s.items.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		s.logger.Error("delete content", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete post")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "post deleted"})
}
