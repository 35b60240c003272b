package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/config"
	"github.com/jtmorrow/wedding-server/middleware"
	"github.com/jtmorrow/wedding-server/models"
	"github.com/jtmorrow/wedding-server/utils"
)

// maxCodeAttempts bounds collision retries when generating a guest code.
const maxCodeAttempts = 5

// AdminController manages the guest list itself. Guests never create or
// delete rows; this is the out-of-band path that does.
type AdminController struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger

	// newCode is swappable in tests to force collisions.
	newCode func() (string, error)
}

func NewAdminController(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AdminController {
	return &AdminController{db: db, cfg: cfg, log: log, newCode: utils.NewGuestCode}
}

type adminLoginReq struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the shared admin password for a session token.
// POST /api/admin/login
func (ct *AdminController) Login(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	if ct.cfg.AdminPasswordHash == "" || !utils.CheckPassword(ct.cfg.AdminPasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Wrong password"})
		return
	}

	token, err := utils.GenerateToken(middleware.RoleAdmin)
	if err != nil {
		ct.log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type createGuestReq struct {
	Name           string  `json:"name" binding:"required,min=1"`
	GroupSide      string  `json:"group_side" binding:"required"`
	PlusOneAllowed bool    `json:"plus_one_allowed"`
	Email          *string `json:"email"`
}

// uniqueCode generates a guest code, retrying a bounded number of times if
// the code is already taken. The unique index backstops a lost race.
func (ct *AdminController) uniqueCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := ct.newCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Guest{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique guest code")
}

func (ct *AdminController) buildGuest(tx *gorm.DB, req *createGuestReq) (*models.Guest, error) {
	code, err := ct.uniqueCode(tx)
	if err != nil {
		return nil, err
	}

	var email *string
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		trimmed := strings.TrimSpace(*req.Email)
		email = &trimmed
	}

	return &models.Guest{
		ID:             uuid.NewString(),
		Code:           code,
		Name:           strings.TrimSpace(req.Name),
		GroupSide:      models.GroupSide(req.GroupSide),
		PlusOneAllowed: req.PlusOneAllowed,
		Email:          email,
	}, nil
}

// CreateGuest adds one invitee.
// POST /api/admin/guests
func (ct *AdminController) CreateGuest(c *gin.Context) {
	var req createGuestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	if !models.ValidGroupSide(req.GroupSide) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "group_side must be 'bride' or 'groom'"})
		return
	}

	guest, err := ct.buildGuest(ct.db, &req)
	if err != nil {
		ct.log.Error().Err(err).Msg("guest build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create guest"})
		return
	}

	if err := ct.db.Create(guest).Error; err != nil {
		ct.log.Error().Err(err).Msg("guest create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create guest"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":               guest.ID,
		"code":             guest.Code,
		"name":             guest.Name,
		"group_side":       guest.GroupSide,
		"plus_one_allowed": guest.PlusOneAllowed,
	})
}

type importGuestsReq struct {
	Guests []createGuestReq `json:"guests" binding:"required,min=1,dive"`
}

// ImportGuests bulk-creates invitees in one transaction, all or nothing.
// POST /api/admin/guests/import
func (ct *AdminController) ImportGuests(c *gin.Context) {
	var req importGuestsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	for i := range req.Guests {
		if strings.TrimSpace(req.Guests[i].Name) == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Every guest needs a name"})
			return
		}
		if !models.ValidGroupSide(req.Guests[i].GroupSide) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "group_side must be 'bride' or 'groom': " + req.Guests[i].Name})
			return
		}
	}

	created := make([]gin.H, 0, len(req.Guests))
	err := ct.db.Transaction(func(tx *gorm.DB) error {
		for i := range req.Guests {
			guest, err := ct.buildGuest(tx, &req.Guests[i])
			if err != nil {
				return err
			}
			if err := tx.Create(guest).Error; err != nil {
				return err
			}
			created = append(created, gin.H{"id": guest.ID, "code": guest.Code, "name": guest.Name})
		}
		return nil
	})
	if err != nil {
		ct.log.Error().Err(err).Msg("guest import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Import failed, nothing was saved"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": len(created), "guests": created})
}

// ListGuests returns the guest list with optional filters and RSVP totals.
// GET /api/admin/guests?side=bride&responded=true
func (ct *AdminController) ListGuests(c *gin.Context) {
	query := ct.db.Model(&models.Guest{})

	if side := c.Query("side"); side != "" {
		if !models.ValidGroupSide(side) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "side must be 'bride' or 'groom'"})
			return
		}
		query = query.Where("group_side = ?", side)
	}
	switch c.Query("responded") {
	case "true":
		query = query.Where("rsvp_submitted_at IS NOT NULL")
	case "false":
		query = query.Where("rsvp_submitted_at IS NULL")
	}

	var guests []models.Guest
	if err := query.Order("name ASC").Find(&guests).Error; err != nil {
		ct.log.Error().Err(err).Msg("guest list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load guests"})
		return
	}

	responded, attending := 0, 0
	for i := range guests {
		if guests[i].HasResponded() {
			responded++
		}
		if guests[i].Attending == models.AttendanceYes {
			attending++
			if guests[i].PlusOneAttending == models.AttendanceYes {
				attending++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(guests),
		"responded": responded,
		"attending": attending,
		"guests":    guests,
	})
}
