package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/models"
	"github.com/jtmorrow/wedding-server/notify"
)

// RSVPController serves the guest lookup gate and RSVP submission.
type RSVPController struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewRSVPController(db *gorm.DB, notifier notify.Notifier, log zerolog.Logger) *RSVPController {
	return &RSVPController{db: db, notifier: notifier, log: log}
}

type lookupReq struct {
	Name string `json:"name"`
}

// guestProjection is the subset of a guest row the RSVP form may see.
func guestProjection(g *models.Guest) gin.H {
	return gin.H{
		"id":                          g.ID,
		"name":                        g.Name,
		"plus_one_allowed":            g.PlusOneAllowed,
		"has_responded":               g.HasResponded(),
		"attending":                   g.Attending,
		"dietary_preference":          g.DietaryPreference,
		"allergies":                   g.Allergies,
		"plus_one_attending":          g.PlusOneAttending,
		"plus_one_name":               g.PlusOneName,
		"plus_one_dietary_preference": g.PlusOneDietaryPreference,
		"plus_one_allergies":          g.PlusOneAllergies,
	}
}

// Lookup resolves a free-text name to exactly one guest.
// POST /api/rsvp/lookup
//
// The match is case-insensitive but otherwise exact: no substring, prefix or
// fuzzy matching, so the form cannot be used to enumerate the guest list.
func (ct *RSVPController) Lookup(c *gin.Context) {
	var req lookupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Name is required"})
		return
	}

	var guest models.Guest
	err := ct.db.Where("LOWER(name) = LOWER(?)", name).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "We couldn't find that name on the guest list"})
		return
	}
	if err != nil {
		ct.log.Error().Err(err).Msg("guest lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again"})
		return
	}

	c.JSON(http.StatusOK, guestProjection(&guest))
}

type submitRSVPReq struct {
	Attending                *bool   `json:"attending" binding:"required"`
	DietaryPreference        *string `json:"dietary_preference"`
	Allergies                *string `json:"allergies"`
	PlusOneAttending         *bool   `json:"plus_one_attending"`
	PlusOneName              *string `json:"plus_one_name"`
	PlusOneDietaryPreference *string `json:"plus_one_dietary_preference"`
	PlusOneAllergies         *string `json:"plus_one_allergies"`
}

// Submit records a guest's RSVP. Every submission fully replaces the stored
// RSVP state; guests can change their answer any number of times.
// POST /api/rsvp/:id
func (ct *RSVPController) Submit(c *gin.Context) {
	guestID := c.Param("id")

	var guest models.Guest
	err := ct.db.First(&guest, "id = ?", guestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Guest not found"})
		return
	}
	if err != nil {
		ct.log.Error().Err(err).Str("guest_id", guestID).Msg("guest read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again"})
		return
	}

	var req submitRSVPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	// Validate everything before touching the row.
	if *req.Attending {
		if req.DietaryPreference != nil && !models.ValidDiet(*req.DietaryPreference) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid dietary preference: " + *req.DietaryPreference})
			return
		}
		if bringingPlusOne(&guest, &req) {
			if req.PlusOneDietaryPreference != nil && !models.ValidDiet(*req.PlusOneDietaryPreference) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid plus-one dietary preference: " + *req.PlusOneDietaryPreference})
				return
			}
		}
	}

	updates := buildRSVPUpdates(&guest, &req)

	// Single multi-column UPDATE: the new state lands whole or not at all.
	if err := ct.db.Model(&models.Guest{}).Where("id = ?", guest.ID).Updates(updates).Error; err != nil {
		ct.log.Error().Err(err).Str("guest_id", guest.ID).Msg("rsvp write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "We couldn't save your RSVP, please try again"})
		return
	}

	notify.Dispatch(ct.notifier, ct.log, notify.EventRSVPSubmitted, gin.H{
		"guest_id":   guest.ID,
		"name":       guest.Name,
		"attending":  *req.Attending,
		"first_rsvp": !guest.HasResponded(),
	})

	c.JSON(http.StatusOK, gin.H{"attending": *req.Attending})
}

func bringingPlusOne(g *models.Guest, req *submitRSVPReq) bool {
	return g.PlusOneAllowed && req.PlusOneAttending != nil && *req.PlusOneAttending
}

// buildRSVPUpdates maps a validated submission onto the full RSVP field
// group. Absent optional values become NULL rather than keeping whatever an
// earlier submission stored.
func buildRSVPUpdates(g *models.Guest, req *submitRSVPReq) map[string]interface{} {
	updates := map[string]interface{}{
		"rsvp_submitted_at": time.Now(),
	}

	if !*req.Attending {
		// Declining wipes all dinner and plus-one detail.
		updates["attending"] = models.AttendanceNo
		updates["dietary_preference"] = nil
		updates["allergies"] = nil
		updates["plus_one_attending"] = models.AttendanceUnanswered
		updates["plus_one_name"] = nil
		updates["plus_one_dietary_preference"] = nil
		updates["plus_one_allergies"] = nil
		return updates
	}

	updates["attending"] = models.AttendanceYes
	updates["dietary_preference"] = req.DietaryPreference
	updates["allergies"] = req.Allergies

	if bringingPlusOne(g, req) {
		updates["plus_one_attending"] = models.AttendanceYes
		updates["plus_one_name"] = req.PlusOneName
		updates["plus_one_dietary_preference"] = req.PlusOneDietaryPreference
		updates["plus_one_allergies"] = req.PlusOneAllergies
	} else {
		// Definite "not bringing anyone", never stale values from before.
		updates["plus_one_attending"] = models.AttendanceNo
		updates["plus_one_name"] = nil
		updates["plus_one_dietary_preference"] = nil
		updates["plus_one_allergies"] = nil
	}

	return updates
}
