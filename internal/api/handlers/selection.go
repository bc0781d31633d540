package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EnterBatchMode opens a selection session with an empty set.
func (h *Handler) EnterBatchMode(c *gin.Context) {
	h.service.EnterBatchMode()
	c.JSON(http.StatusOK, gin.H{"active": true})
}

// CancelBatchMode closes the session and discards the selection.
func (h *Handler) CancelBatchMode(c *gin.Context) {
	h.service.CancelBatchMode()
	c.JSON(http.StatusOK, gin.H{"active": false})
}

// GetSelection reports the session state and selected ids.
func (h *Handler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":      h.service.BatchModeActive(),
		"selectedIds": h.service.SelectedIDs(),
	})
}

// ToggleSelection flips one record in or out of the selection.
func (h *Handler) ToggleSelection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.ToggleSelection(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selectedIds": h.service.SelectedIDs()})
}

// SelectAll selects exactly the records visible under the supplied
// filter parameters.
func (h *Handler) SelectAll(c *gin.Context) {
	cfg, err := bindFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.service.SelectAll(cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": n, "selectedIds": h.service.SelectedIDs()})
}

// ClearSelection empties the set but keeps the session open.
func (h *Handler) ClearSelection(c *gin.Context) {
	h.service.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"selectedIds": h.service.SelectedIDs()})
}

// BatchRefresh refreshes the selected records one at a time.
func (h *Handler) BatchRefresh(c *gin.Context) {
	summary, err := h.service.BatchRefresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRefreshRun(summary.Success, summary.Failed)
		h.metrics.UpdateWatchlist(h.service.List())
	}
	c.JSON(http.StatusOK, summary)
}

// BatchDelete removes the selected records and ends the session.
func (h *Handler) BatchDelete(c *gin.Context) {
	summary, err := h.service.BatchDelete(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
