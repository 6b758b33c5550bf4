package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/nametracker/nametracker/internal/enum"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/tracing"
)

type IdeaHandler struct {
	repos *repository.Repositories
}

func NewIdeaHandler(repos *repository.Repositories) *IdeaHandler {
	return &IdeaHandler{repos: repos}
}

func ideaListState(c *gin.Context) enum.ListState {
	listState := enum.ListState(c.Query("listState"))
	if listState == "" {
		listState = enum.ListStatePendingDelete
	}
	return listState
}

// Latest returns the most recent idea of the day for a list state.
func (h *IdeaHandler) Latest() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IdeaHandler.Latest")
		defer span.Finish()
		tracing.TagComponentRest(span)

		idea, err := h.repos.IdeaOfTheDayRepository.GetLatest(ctx, ideaListState(c))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load idea"})
			return
		}
		if idea == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no idea recorded yet"})
			return
		}

		c.JSON(http.StatusOK, idea)
	}
}

// ForDate returns the idea of the day recorded for a given date.
func (h *IdeaHandler) ForDate() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "IdeaHandler.ForDate")
		defer span.Finish()
		tracing.TagComponentRest(span)

		date, err := time.Parse("2006-01-02", c.Param("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		idea, err := h.repos.IdeaOfTheDayRepository.GetForDate(ctx, date, ideaListState(c))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load idea"})
			return
		}
		if idea == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no idea recorded for date"})
			return
		}

		c.JSON(http.StatusOK, idea)
	}
}
