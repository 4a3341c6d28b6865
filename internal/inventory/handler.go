package inventory

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

// MaxImageBytes caps receipt uploads.
const MaxImageBytes = 10 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/items", h.AddItems)
	rg.GET("/items", h.ListItems)
	rg.PATCH("/items/:id", h.UpdateItem)
	rg.DELETE("/items/:id", h.DeleteItem)
	rg.GET("/stats", h.Stats)
	rg.POST("/scan", h.Scan)
}

// --------------------------------------------------
// Add items
// --------------------------------------------------
func (h *Handler) AddItems(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req struct {
		Items []RawItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	items, err := h.service.AddRaw(c.Request.Context(), userID, req.Items)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"items": items})
}

// --------------------------------------------------
// List items (search / filter / sort)
// --------------------------------------------------
func (h *Handler) ListItems(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	q := Query{
		Search: c.Query("q"),
		Filter: expiry.ParseFilter(c.DefaultQuery("filter", string(expiry.FilterAll))),
		Sort:   ParseSortKey(c.DefaultQuery("sort", string(SortByExpiry))),
	}

	items, err := h.service.List(c.Request.Context(), userID, q)
	if err != nil {
		writeError(c, err)
		return
	}

	if items == nil {
		items = []*Item{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Stats(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	st, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// --------------------------------------------------
// Update / delete
// --------------------------------------------------
func (h *Handler) UpdateItem(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Scan receipt / label
// --------------------------------------------------
func (h *Handler) Scan(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	if len(data) > MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	res, err := h.service.Scan(c.Request.Context(), userID, data, header.Filename, mimeType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------
func userIDFrom(c *gin.Context) (string, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user context"})
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrEmptyImage), errors.Is(err, ErrMissingUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrExtractorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
