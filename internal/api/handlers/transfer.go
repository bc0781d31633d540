package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds a pasted import payload.
const maxImportBytes = 1 << 20

// ImportDomains bulk-adds domains from a plain text body, one per
// line. Lines starting with # are comments; "domain,nickname" lines
// carry a nickname.
func (h *Handler) ImportDomains(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty import body"})
		return
	}

	result := h.service.ImportFromText(c.Request.Context(), string(body))
	if h.metrics != nil {
		h.metrics.RecordImport(result.Success, result.Skipped, result.Failed)
	}
	c.JSON(http.StatusOK, result)
}

// ExportWatched streams the current (optionally filtered) view as a
// CSV download.
func (h *Handler) ExportWatched(c *gin.Context) {
	cfg, err := bindFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.writeCSV(c, h.service.ExportView(cfg))
}

// ExportSelection streams the selected records as a CSV download.
func (h *Handler) ExportSelection(c *gin.Context) {
	data, err := h.service.ExportSelected()
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeCSV(c, data)
}

func (h *Handler) writeCSV(c *gin.Context, data []byte) {
	if h.metrics != nil {
		h.metrics.RecordExport()
	}
	filename := "certwatch-" + time.Now().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
