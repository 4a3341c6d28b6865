package notify

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	inbox     *Inbox
	generator *Generator
	settings  *SettingsStore
}

func NewHandler(inbox *Inbox, generator *Generator, settings *SettingsStore) *Handler {
	return &Handler{inbox: inbox, generator: generator, settings: settings}
}

// Register mounts /notifications and /settings/notifications on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	n.GET("", h.List)
	n.POST("", h.Add)
	n.POST("/refresh", h.Refresh)
	n.POST("/read-all", h.MarkAllRead)
	n.POST("/:id/read", h.MarkRead)
	n.DELETE("/:id", h.Remove)
	n.DELETE("", h.Clear)

	s := rg.Group("/settings/notifications")
	s.GET("", h.GetSettings)
	s.PUT("", h.UpdateSettings)
	s.DELETE("", h.ResetSettings)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	list, err := h.inbox.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"unreadCount":   unread,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	added, err := h.generator.Refresh(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if added == nil {
		added = []Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (h *Handler) Add(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req struct {
		Type      Type   `json:"type" binding:"required"`
		Title     string `json:"title" binding:"required"`
		Message   string `json:"message" binding:"required"`
		ItemID    string `json:"itemId"`
		ItemName  string `json:"itemName"`
		DaysLeft  *int   `json:"daysLeft"`
		ActionURL string `json:"actionUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	n, err := h.inbox.Add(c.Request.Context(), userID, Notification{
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		ItemID:    req.ItemID,
		ItemName:  req.ItemName,
		DaysLeft:  req.DaysLeft,
		ActionURL: req.ActionURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.MarkAllRead(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Remove(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Clear(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	if err := h.inbox.Clear(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Settings
// --------------------------------------------------
func (h *Handler) GetSettings(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	st, err := h.settings.Load(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	st, err := h.settings.Update(c.Request.Context(), userID, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) ResetSettings(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	st, err := h.settings.Reset(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------
func userIDFrom(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID")
	userID, _ := v.(string)
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
