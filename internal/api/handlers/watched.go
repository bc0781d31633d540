package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certwatch-io/certwatch/internal/core"
)

type AddWatchedRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Nickname string `json:"nickname"`
}

type NicknameRequest struct {
	Nickname string `json:"nickname"`
}

type NotifySettingsRequest struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold" binding:"required"`
}

type ManualRequest struct {
	StartDate  string `json:"startDate"`
	ExpireDate string `json:"expireDate" binding:"required"`
}

type QuickCheckRequest struct {
	Domain string `json:"domain" binding:"required"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// bindFilter reads the view parameters from the query string, falling
// back to the reset state for anything unset.
func bindFilter(c *gin.Context) (core.FilterConfig, error) {
	cfg := core.DefaultFilterConfig()
	if err := c.ShouldBindQuery(&cfg); err != nil {
		return cfg, err
	}
	if cfg.StatusFilter == "" {
		cfg.StatusFilter = core.FilterAll
	}
	if cfg.DaysRangeFilter == "" {
		cfg.DaysRangeFilter = core.FilterAll
	}
	if cfg.SortBy == "" {
		cfg.SortBy = core.SortDaysAsc
	}
	return cfg, nil
}

// ListWatched returns the filtered, sorted view of the watch list.
func (h *Handler) ListWatched(c *gin.Context) {
	cfg, err := bindFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := h.service.View(cfg)
	c.JSON(http.StatusOK, gin.H{"domains": records, "count": len(records)})
}

func (h *Handler) AddWatched(c *gin.Context) {
	var req AddWatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.Add(c.Request.Context(), req.Domain, req.Nickname)
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetWatched(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	record, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteWatched(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) UpdateNickname(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req NicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateNickname(c.Request.Context(), id, req.Nickname); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *Handler) UpdateNotifySettings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req NotifySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateNotifySettings(c.Request.Context(), id, req.Enabled, req.Threshold); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// RefreshWatched re-fetches one record on demand.
func (h *Handler) RefreshWatched(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	snap, err := h.service.RefreshRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// QuickCheck refreshes a watched record addressed by domain name.
func (h *Handler) QuickCheck(c *gin.Context) {
	var req QuickCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.service.QuickCheck(c.Request.Context(), req.Domain)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RefreshAll runs a full sequential refresh pass over the watch list.
func (h *Handler) RefreshAll(c *gin.Context) {
	summary := h.service.RefreshAll(c.Request.Context())
	if h.metrics != nil {
		h.metrics.RecordRefreshRun(summary.Success, summary.Failed)
		h.metrics.UpdateWatchlist(h.service.List())
	}
	c.JSON(http.StatusOK, summary)
}

// SetManual switches a record to user-entered validity dates.
func (h *Handler) SetManual(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetManual(c.Request.Context(), id, req.StartDate, req.ExpireDate); err != nil {
		respondError(c, err)
		return
	}

	record, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ClearManual reverts a record to automatic checking.
func (h *Handler) ClearManual(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.ClearManual(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": id})
}

// GetStats aggregates the watch list into dashboard statistics.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// GetNotifications evaluates the threshold alerts for the current
// state. The evaluation is pure; calling this never mutates records.
func (h *Handler) GetNotifications(c *gin.Context) {
	items := h.service.Notifications()
	if h.metrics != nil {
		h.metrics.SetNotificationsDue(len(items))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}
