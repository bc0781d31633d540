package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

type CheckRequest struct {
	Domain string `json:"domain" binding:"required"`
}

type BatchCheckRequest struct {
	Domains []string `json:"domains" binding:"required,min=1"`
}

// CheckDomain runs a one-off live check. The result is written to the
// check history but does not touch the watch list.
func (h *Handler) CheckDomain(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	snap, err := h.service.CheckCertificate(c.Request.Context(), req.Domain)
	if h.metrics != nil {
		h.metrics.RecordCheck("adhoc", err, time.Since(started))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// CheckBatch checks several domains in one call. Partial failure is a
// normal outcome: the successful subset is returned together with a
// per-domain error list.
func (h *Handler) CheckBatch(c *gin.Context) {
	var req BatchCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	result := h.batch.FetchBatch(c.Request.Context(), req.Domains)
	if h.metrics != nil {
		h.metrics.RecordCheck("adhoc_batch", nil, time.Since(started))
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(req.Domains),
		"succeeded": len(result.Results),
		"failed":    len(result.Errors),
		"results":   result.Results,
		"errors":    result.Errors,
	})
}

// GetRegistration returns WHOIS registration data for a domain.
func (h *Handler) GetRegistration(c *gin.Context) {
	domain := c.Param("domain")

	details, err := h.registration.Check(domain)
	if err != nil {
		h.logger.Warn("WHOIS lookup failed", zap.String("domain", domain), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// GetHistory lists recent check results, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if err := bindPositiveInt(raw, &limit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}

	items, err := h.history.ListHistory(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []core.CertificateSnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{"history": items, "count": len(items)})
}

// ClearHistory drops the entire check history log.
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.history.ClearHistory(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
