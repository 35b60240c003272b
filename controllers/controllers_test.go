package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/models"
	"github.com/jtmorrow/wedding-server/notify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Guest{}))
	return db
}

// stubNotifier records events; err makes every delivery fail.
type stubNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, event notify.Event, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func seedGuest(t *testing.T, db *gorm.DB, g models.Guest) models.Guest {
	t.Helper()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Code == "" {
		g.Code = strings.ToUpper(g.ID[:4]) + "ZZ"
	}
	if g.Attending == "" {
		g.Attending = models.AttendanceUnanswered
	}
	if g.PlusOneAttending == "" {
		g.PlusOneAttending = models.AttendanceUnanswered
	}
	require.NoError(t, db.Create(&g).Error)
	return g
}

func reload(t *testing.T, db *gorm.DB, id string) models.Guest {
	t.Helper()

	var g models.Guest
	require.NoError(t, db.First(&g, "id = ?", id).Error)
	return g
}

func doJSON(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func strPtr(s string) *string { return &s }

func testTime() time.Time { return time.Now().Truncate(time.Second) }

func nopLogger() zerolog.Logger { return zerolog.Nop() }
