package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftwiki/feedticker/app/cfg"
	"github.com/craftwiki/feedticker/app/database"
	"github.com/craftwiki/feedticker/app/feed"
	"github.com/craftwiki/feedticker/app/tasks"
)

const (
	defaultTickerLimit = 20
	maxTickerLimit     = 200
)

func NewHandler(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	settingsRepo database.SettingsRepository, auditRepo database.AuditRepository,
	ticker *feed.Ticker, runner *tasks.Runner) *Handler {
	return &Handler{
		feedRepo:     feedRepo,
		itemRepo:     itemRepo,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		ticker:       ticker,
		runner:       runner,
	}
}

func (h *Handler) GetTicker(c *gin.Context) {
	limit := defaultTickerLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxTickerLimit {
		limit = maxTickerLimit
	}

	slots, err := h.ticker.Run(limit)
	if err != nil {
		slog.Error("Ticker materialization failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build ticker"})
		return
	}

	rendered := make([]*tickerSlotJSON, 0, len(slots))
	for _, slot := range slots {
		if slot.Item == nil {
			// Spacing slots render as JSON nulls for the presentation layer.
			rendered = append(rendered, nil)
			continue
		}
		rendered = append(rendered, &tickerSlotJSON{
			ID:          slot.Item.ID,
			FeedID:      slot.Item.FeedID,
			FeedTitle:   slot.FeedTitle,
			FeedIcon:    slot.FeedIcon,
			Title:       slot.Item.Title,
			Link:        slot.Item.Link,
			Description: slot.Item.Description,
			Author:      slot.Item.Author,
			PublishedAt: slot.Item.PublishedAt.Format(time.RFC3339),
			YouTube:     slot.Item.YouTube,
			Twitter:     slot.Item.Twitter,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rendered,
		"total": len(rendered),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}
	if itemCount, err := h.itemRepo.GetTotalItemCount(); err == nil {
		stats["items"] = itemCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.GetAllFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(feeds))
	for _, fd := range feeds {
		info := map[string]interface{}{
			"id":              fd.ID,
			"url":             fd.URL,
			"title":           fd.Title,
			"type":            fd.Type,
			"keywords":        fd.Keywords,
			"show_in_ticker":  fd.ShowInTicker,
			"icon_url":        fd.IconURL,
			"last_fetched_at": fd.LastFetchedAt,
		}

		if itemCount, err := h.itemRepo.GetItemCount(fd.ID); err == nil {
			info["item_count"] = itemCount
		}

		list = append(list, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": list,
		"total": len(list),
	})
}

func (h *Handler) APICreateFeed(c *gin.Context) {
	var payload FeedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	feedType := database.FeedType(payload.Type)
	if payload.Type == "" {
		feedType = database.FeedTypeGeneric
	}
	if !database.ValidFeedType(feedType) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown feed type", "type": payload.Type})
		return
	}

	id, err := h.feedRepo.CreateFeed(database.Feed{
		URL:          payload.URL,
		Title:        payload.Title,
		Type:         feedType,
		Keywords:     payload.Keywords,
		ShowInTicker: payload.ShowInTicker,
		IconURL:      payload.IconURL,
	})
	if err != nil {
		slog.Error("Database error", "operation", "create_feed", "url", payload.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) APIGetFeed(c *gin.Context) {
	fd, ok := h.loadFeed(c)
	if !ok {
		return
	}

	details := map[string]interface{}{
		"id":              fd.ID,
		"url":             fd.URL,
		"title":           fd.Title,
		"type":            fd.Type,
		"keywords":        fd.Keywords,
		"show_in_ticker":  fd.ShowInTicker,
		"icon_url":        fd.IconURL,
		"last_fetched_at": fd.LastFetchedAt,
		"created_at":      fd.CreatedAt,
		"updated_at":      fd.UpdatedAt,
	}

	if itemCount, err := h.itemRepo.GetItemCount(fd.ID); err == nil {
		details["item_count"] = itemCount
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIUpdateFeed(c *gin.Context) {
	fd, ok := h.loadFeed(c)
	if !ok {
		return
	}

	var payload FeedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// The source type is immutable: it anchors the item natural-key scheme.
	// Delete and recreate the feed to change it.
	if payload.Type != "" && database.FeedType(payload.Type) != fd.Type {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Feed type cannot be changed; delete and recreate the feed instead",
		})
		return
	}

	fd.URL = payload.URL
	fd.Title = payload.Title
	fd.Keywords = payload.Keywords
	fd.ShowInTicker = payload.ShowInTicker
	fd.IconURL = payload.IconURL

	if err := h.feedRepo.UpdateFeed(*fd); err != nil {
		slog.Error("Database error", "operation", "update_feed", "feed_id", fd.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIDeleteFeed(c *gin.Context) {
	fd, ok := h.loadFeed(c)
	if !ok {
		return
	}

	if err := h.feedRepo.DeleteFeed(fd.ID); err != nil {
		slog.Error("Database error", "operation", "delete_feed", "feed_id", fd.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIRefreshFeed(c *gin.Context) {
	fd, ok := h.loadFeed(c)
	if !ok {
		return
	}

	if err := h.runner.RefreshOne(c.Request.Context(), fd.ID); err != nil {
		// Operator-triggered refreshes surface the wrapped pipeline error.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Refresh failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feed_id": fd.ID})
}

func (h *Handler) APIRefreshAll(c *gin.Context) {
	result, err := h.runner.RefreshAll(c.Request.Context())
	if err != nil {
		slog.Error("Batch refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run batch refresh", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) APIGetSettings(c *gin.Context) {
	settings, err := h.settingsRepo.GetOrCreate()
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *Handler) APIUpdateSettings(c *gin.Context) {
	var payload SettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if payload.Spacing < 0 || payload.MaxItemsPerFeed <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "spacing must be >= 0 and max_items_per_feed must be > 0",
		})
		return
	}

	err := h.settingsRepo.Update(database.TickerSettings{
		ScrollSpeed:     payload.ScrollSpeed,
		PauseOnHover:    payload.PauseOnHover,
		Spacing:         payload.Spacing,
		MaxItemsPerFeed: payload.MaxItemsPerFeed,
	})
	if err != nil {
		slog.Error("Database error", "operation", "update_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIGetAuditLog(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events, err := h.auditRepo.GetRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_audit", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// loadFeed resolves the :id path parameter to a feed, writing the error
// response itself when the feed cannot be loaded.
func (h *Handler) loadFeed(c *gin.Context) (*database.Feed, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed id parameter"})
		return nil, false
	}

	fd, err := h.feedRepo.GetFeed(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if fd == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return nil, false
	}

	return fd, true
}
