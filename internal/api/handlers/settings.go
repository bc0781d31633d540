package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certwatch-io/certwatch/internal/settings"
)

// GetSettings returns every setting merged over its default.
func (h *Handler) GetSettings(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, all)
}

// UpdateSettings applies a partial settings update. A change to the
// auto refresh interval reconfigures the scheduler in the same call,
// so the timer always reflects the stored value.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings supplied"})
		return
	}

	ctx := c.Request.Context()
	for key, value := range req {
		if err := h.settings.Set(ctx, key, value); err != nil {
			respondError(c, err)
			return
		}
	}

	if _, ok := req[settings.KeyAutoRefreshInterval]; ok && h.scheduler != nil {
		h.scheduler.Configure(h.settings.AutoRefreshInterval(ctx))
	}

	all, err := h.settings.All(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, all)
}
