package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
	"github.com/nametracker/nametracker/internal/models"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/tracing"
)

const defaultPageSize = 100

type RegisterDomainRequest struct {
	Domain   string `json:"domain"`
	DropDate string `json:"dropDate"`
	Score    *int   `json:"score"`
}

type DomainsResponse struct {
	Domains []models.Domain `json:"domains"`
}

type ArchivedDomainsResponse struct {
	Domains []models.ArchivedDomain `json:"domains"`
}

type DomainHandler struct {
	repos *repository.Repositories
}

func NewDomainHandler(repos *repository.Repositories) *DomainHandler {
	return &DomainHandler{repos: repos}
}

// List returns tracked domains, optionally filtered by list state and
// registration status.
func (h *DomainHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.List")
		defer span.Finish()
		tracing.TagComponentRest(span)

		listState := enum.ListState(c.Query("listState"))
		regStatus := enum.RegStatus(c.Query("regStatus"))
		limit := queryInt(c, "limit", defaultPageSize)
		offset := queryInt(c, "offset", 0)

		domains, err := h.repos.DomainRepository.List(ctx, listState, regStatus, limit, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list domains"})
			return
		}

		c.JSON(http.StatusOK, DomainsResponse{Domains: domains})
	}
}

// Get returns a single tracked domain by name.
func (h *DomainHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.Get")
		defer span.Finish()
		tracing.TagComponentRest(span)

		name := strings.ToLower(strings.TrimSpace(c.Param("name")))
		domain, err := h.repos.DomainRepository.GetByName(ctx, name)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load domain"})
			return
		}
		if domain == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
			return
		}

		c.JSON(http.StatusOK, domain)
	}
}

// Register adds a domain to the pending_delete list. Extension and drop
// time are derived on save.
func (h *DomainHandler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.Register")
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request RegisterDomainRequest
		if err := c.BindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		dropDate, err := time.Parse("2006-01-02", request.DropDate)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "dropDate must be YYYY-MM-DD"})
			return
		}

		domain := &models.Domain{
			Domain:    strings.ToLower(strings.TrimSpace(request.Domain)),
			ListState: enum.ListStatePendingDelete,
			RegStatus: enum.RegStatusPending,
			Score:     request.Score,
			DropDate:  dropDate,
		}
		if err := h.repos.DomainRepository.Save(ctx, domain); err != nil {
			tracing.TraceErr(span, err)
			if errors.Is(err, er.ErrUnknownExtension) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "domain has no recognizable extension"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save domain"})
			return
		}

		c.JSON(http.StatusCreated, domain)
	}
}

// ListArchived returns archived domains, newest first.
func (h *DomainHandler) ListArchived() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.ListArchived")
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit := queryInt(c, "limit", defaultPageSize)
		offset := queryInt(c, "offset", 0)

		domains, err := h.repos.ArchivedDomainRepository.List(ctx, limit, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list archived domains"})
			return
		}

		c.JSON(http.StatusOK, ArchivedDomainsResponse{Domains: domains})
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
