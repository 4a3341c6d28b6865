package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
)

func newTestRouter(f *fixture, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	NewHandler(f.inbox, f.gen, f.settings).Register(r.Group(""))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

func TestHandler_RefreshListReadRemove(t *testing.T) {
	f := newFixture(t)
	f.add(t, "u1",
		inventory.RawItem{Name: "Milk", Expiry: "2025-01-09"},
		inventory.RawItem{Name: "Eggs", Expiry: "2025-01-11"},
	)
	r := newTestRouter(f, "u1")

	w := do(r, http.MethodPost, "/notifications/refresh", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Notifications, 2)
	assert.Equal(t, 2, got.UnreadCount)

	id := got.Notifications[0].ID
	w = do(r, http.MethodPost, "/notifications/"+id+"/read", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodPost, "/notifications/nope/read", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/notifications/read-all", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/notifications", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0, got.UnreadCount)

	w = do(r, http.MethodDelete, "/notifications/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/notifications", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/notifications", "")
	assert.JSONEq(t, `{"notifications":[],"unreadCount":0}`, w.Body.String())
}

func TestHandler_AddCustom(t *testing.T) {
	r := newTestRouter(newFixture(t), "u1")

	w := do(r, http.MethodPost, "/notifications", `{"type":"recipe_suggestion","title":"Tonight","message":"Try an omelette"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":"custom_`)

	w = do(r, http.MethodPost, "/notifications", `{"title":"missing type"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Settings(t *testing.T) {
	r := newTestRouter(newFixture(t), "u1")

	w := do(r, http.MethodGet, "/settings/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reminderDays":3`)

	w = do(r, http.MethodPut, "/settings/notifications", `{"reminderDays":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"reminderDays":5`)

	w = do(r, http.MethodPut, "/settings/notifications", `{"reminderDays":4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/settings/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reminderDays":3`)
}

func TestHandler_Unauthorized(t *testing.T) {
	r := newTestRouter(newFixture(t), "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/notifications/refresh"},
		{http.MethodGet, "/settings/notifications"},
	} {
		w := do(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}
