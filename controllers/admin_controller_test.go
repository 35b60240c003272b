package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/config"
	"github.com/jtmorrow/wedding-server/middleware"
	"github.com/jtmorrow/wedding-server/models"
	"github.com/jtmorrow/wedding-server/utils"
)

func adminRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *AdminController) {
	r := gin.New()
	ct := NewAdminController(db, cfg, nopLogger())
	r.POST("/api/admin/login", ct.Login)

	protected := r.Group("/api/admin")
	protected.Use(middleware.AdminJWT())
	protected.POST("/guests", ct.CreateGuest)
	protected.POST("/guests/import", ct.ImportGuests)
	protected.GET("/guests", ct.ListGuests)
	return r, ct
}

func adminConfig(t *testing.T, password string) *config.Config {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &config.Config{AdminPasswordHash: hash}
}

func adminHeaders(t *testing.T) map[string]string {
	t.Helper()

	token, err := utils.GenerateToken(middleware.RoleAdmin)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAdminLogin(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodGet, "/api/admin/guests", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/guests", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateGuest(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodPost, "/api/admin/guests", gin.H{
		"name":             "Carrie Brown",
		"group_side":       "bride",
		"plus_one_allowed": true,
	}, adminHeaders(t))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)

	code, _ := body["code"].(string)
	assert.Len(t, code, utils.CodeLength)
	for _, forbidden := range "O0I1L" {
		assert.NotContains(t, code, string(forbidden))
	}

	g := reload(t, db, body["id"].(string))
	assert.Equal(t, "Carrie Brown", g.Name)
	assert.Equal(t, models.SideBride, g.GroupSide)
	assert.True(t, g.PlusOneAllowed)
	assert.Equal(t, models.AttendanceUnanswered, g.Attending)
	assert.Nil(t, g.RSVPSubmittedAt)
}

func TestCreateGuestInvalidSide(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodPost, "/api/admin/guests", gin.H{
		"name":       "Carrie Brown",
		"group_side": "caterer",
	}, adminHeaders(t))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateGuestRetriesOnCodeCollision(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, ct := adminRouter(db, cfg)

	seedGuest(t, db, models.Guest{Name: "First Guest", Code: "TAKEN2"})

	codes := []string{"TAKEN2", "FRESH2"}
	ct.newCode = func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}

	w := doJSON(r, http.MethodPost, "/api/admin/guests", gin.H{
		"name":       "Second Guest",
		"group_side": "groom",
	}, adminHeaders(t))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "FRESH2", decodeBody(t, w)["code"])
}

func TestCreateGuestFailsAfterRepeatedCollisions(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, ct := adminRouter(db, cfg)

	seedGuest(t, db, models.Guest{Name: "First Guest", Code: "TAKEN2"})
	ct.newCode = func() (string, error) { return "TAKEN2", nil }

	w := doJSON(r, http.MethodPost, "/api/admin/guests", gin.H{
		"name":       "Second Guest",
		"group_side": "groom",
	}, adminHeaders(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImportGuestsAllOrNothing(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, ct := adminRouter(db, cfg)

	// Every generated code collides inside the transaction, so the second
	// guest can never be created and the whole import must roll back.
	ct.newCode = func() (string, error) { return "SAMECD", nil }

	w := doJSON(r, http.MethodPost, "/api/admin/guests/import", gin.H{
		"guests": []gin.H{
			{"name": "Guest One", "group_side": "bride"},
			{"name": "Guest Two", "group_side": "groom"},
		},
	}, adminHeaders(t))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Guest{}).Count(&count).Error)
	assert.Zero(t, count, "failed import must not leave partial rows")
}

func TestImportGuests(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	w := doJSON(r, http.MethodPost, "/api/admin/guests/import", gin.H{
		"guests": []gin.H{
			{"name": "Guest One", "group_side": "bride", "plus_one_allowed": true},
			{"name": "Guest Two", "group_side": "groom"},
		},
	}, adminHeaders(t))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["imported"])

	var count int64
	require.NoError(t, db.Model(&models.Guest{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestListGuestsWithCounts(t *testing.T) {
	db := testDB(t)
	cfg := adminConfig(t, "hunter2")
	r, _ := adminRouter(db, cfg)

	now := testTime()
	seedGuest(t, db, models.Guest{
		Name:             "Attending Guest",
		GroupSide:        models.SideBride,
		Attending:        models.AttendanceYes,
		PlusOneAllowed:   true,
		PlusOneAttending: models.AttendanceYes,
		RSVPSubmittedAt:  &now,
	})
	seedGuest(t, db, models.Guest{
		Name:            "Declined Guest",
		GroupSide:       models.SideGroom,
		Attending:       models.AttendanceNo,
		RSVPSubmittedAt: &now,
	})
	seedGuest(t, db, models.Guest{Name: "Silent Guest", GroupSide: models.SideGroom})

	w := doJSON(r, http.MethodGet, "/api/admin/guests", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["responded"])
	// Attending counts heads: guest plus their confirmed plus-one.
	assert.Equal(t, float64(2), body["attending"])

	w = doJSON(r, http.MethodGet, "/api/admin/guests?side=groom", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["total"])

	w = doJSON(r, http.MethodGet, "/api/admin/guests?responded=false", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total"])
}
