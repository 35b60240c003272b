package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/address"
	"github.com/jtmorrow/wedding-server/models"
	"github.com/jtmorrow/wedding-server/notify"
)

// AddressController serves mailing-address collection via the save-the-date
// code printed on each invitation.
type AddressController struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewAddressController(db *gorm.DB, notifier notify.Notifier, log zerolog.Logger) *AddressController {
	return &AddressController{db: db, notifier: notifier, log: log}
}

func (ct *AddressController) findByCode(c *gin.Context) (*models.Guest, bool) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var guest models.Guest
	err := ct.db.Where("code = ?", code).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown code"})
		return nil, false
	}
	if err != nil {
		ct.log.Error().Err(err).Str("code", code).Msg("guest read by code failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong, please try again"})
		return nil, false
	}
	return &guest, true
}

// Get returns the current address state for a code.
// GET /api/address/:code
func (ct *AddressController) Get(c *gin.Context) {
	guest, ok := ct.findByCode(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":               guest.Name,
		"invitation_name":    guest.InvitationName,
		"country":            guest.Country,
		"address_line1":      guest.AddressLine1,
		"address_line2":      guest.AddressLine2,
		"city":               guest.City,
		"region":             guest.Region,
		"postal_code":        guest.PostalCode,
		"address_freeform":   guest.AddressFreeform,
		"address_formatted":  guest.AddressFormatted,
		"address_updated_at": guest.AddressUpdatedAt,
	})
}

// Empty or whitespace-only values are treated as "not supplied": this
// endpoint cannot clear a previously saved field, only overwrite it.
type saveAddressReq struct {
	InvitationName  *string `json:"invitation_name"`
	Country         *string `json:"country"`
	AddressLine1    *string `json:"address_line1"`
	AddressLine2    *string `json:"address_line2"`
	City            *string `json:"city"`
	Region          *string `json:"region"`
	PostalCode      *string `json:"postal_code"`
	AddressFreeform *string `json:"address_freeform"`
}

// supplied returns the trimmed value and whether the field carries content.
func supplied(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

// merge overlays a supplied value over the stored one, for formatting only.
func merge(stored *string, p *string) string {
	if v, ok := supplied(p); ok {
		return v
	}
	if stored != nil {
		return strings.TrimSpace(*stored)
	}
	return ""
}

// Save stores the supplied address fields and recomputes the canonical
// formatted address.
// POST /api/address/:code
func (ct *AddressController) Save(c *gin.Context) {
	guest, ok := ct.findByCode(c)
	if !ok {
		return
	}

	var req saveAddressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	// The merged view is what the formatted address is computed from; the
	// row itself only gets the keys this request actually supplied.
	merged := address.Fields{
		Line1:      merge(guest.AddressLine1, req.AddressLine1),
		Line2:      merge(guest.AddressLine2, req.AddressLine2),
		City:       merge(guest.City, req.City),
		Region:     merge(guest.Region, req.Region),
		PostalCode: merge(guest.PostalCode, req.PostalCode),
		Freeform:   merge(guest.AddressFreeform, req.AddressFreeform),
	}
	country := merge(guest.Country, req.Country)

	if msg := address.Validate(country, merged); msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": msg})
		return
	}

	updates := map[string]interface{}{}
	addressTouched := false
	for key, p := range map[string]*string{
		"country":          req.Country,
		"address_line1":    req.AddressLine1,
		"address_line2":    req.AddressLine2,
		"city":             req.City,
		"region":           req.Region,
		"postal_code":      req.PostalCode,
		"address_freeform": req.AddressFreeform,
	} {
		if v, ok := supplied(p); ok {
			updates[key] = v
			addressTouched = true
		}
	}
	if v, ok := supplied(req.InvitationName); ok {
		updates["invitation_name"] = v
	}

	// Recompute the formatted address only when this call changed something
	// address-affecting, a country is known, and there is at least one
	// component to print — a bare country never becomes a one-line address.
	var updatedAt *time.Time
	if addressTouched && country != "" && !merged.Empty() {
		now := time.Now()
		updatedAt = &now
		updates["address_formatted"] = address.Format(country, merged)
		updates["address_updated_at"] = now
	}

	if len(updates) == 0 {
		// Nothing changed; report success without a write.
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := ct.db.Model(&models.Guest{}).Where("id = ?", guest.ID).Updates(updates).Error; err != nil {
		ct.log.Error().Err(err).Str("guest_id", guest.ID).Msg("address write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "We couldn't save your address, please try again"})
		return
	}

	if updatedAt != nil {
		notify.Dispatch(ct.notifier, ct.log, notify.EventAddressUpdated, gin.H{
			"guest_id": guest.ID,
			"name":     guest.Name,
			"country":  country,
		})
	}

	resp := gin.H{"success": true}
	if formatted, ok := updates["address_formatted"]; ok {
		resp["address_formatted"] = formatted
	}
	c.JSON(http.StatusOK, resp)
}
