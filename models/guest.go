package models

import "time"

// Attendance is the reply state of a guest (or their plus-one).
// A guest starts out unanswered and may flip between yes and no at will.
type Attendance string

const (
	AttendanceUnanswered Attendance = "unanswered"
	AttendanceYes        Attendance = "yes"
	AttendanceNo         Attendance = "no"
)

// Diet is a dinner preference.
type Diet string

const (
	DietStandard   Diet = "standard"
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
)

// ValidDiet reports whether s is one of the accepted dinner preferences.
func ValidDiet(s string) bool {
	switch Diet(s) {
	case DietStandard, DietVegetarian, DietVegan:
		return true
	}
	return false
}

// GroupSide records whose side of the family invited the guest.
type GroupSide string

const (
	SideBride GroupSide = "bride"
	SideGroom GroupSide = "groom"
)

// ValidGroupSide reports whether s is a known side.
func ValidGroupSide(s string) bool {
	return GroupSide(s) == SideBride || GroupSide(s) == SideGroom
}

// Guest is one invited party. RSVP and address sub-state live on the same
// row and are always overwritten as a group, never patched field by field
// across requests.
type Guest struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string    `gorm:"size:6;uniqueIndex;not null" json:"code"`
	Name           string    `gorm:"size:255;not null;index" json:"name"`
	GroupSide      GroupSide `gorm:"size:10;not null;default:'bride'" json:"group_side"`
	PlusOneAllowed bool      `gorm:"not null;default:false" json:"plus_one_allowed"`
	Email          *string   `gorm:"size:255" json:"email"`

	Attending         Attendance `gorm:"size:12;not null;default:'unanswered'" json:"attending"`
	DietaryPreference *string    `gorm:"size:20" json:"dietary_preference"`
	Allergies         *string    `gorm:"type:text" json:"allergies"`
	RSVPSubmittedAt   *time.Time `json:"rsvp_submitted_at"`

	PlusOneAttending         Attendance `gorm:"size:12;not null;default:'unanswered'" json:"plus_one_attending"`
	PlusOneName              *string    `gorm:"size:255" json:"plus_one_name"`
	PlusOneDietaryPreference *string    `gorm:"size:20" json:"plus_one_dietary_preference"`
	PlusOneAllergies         *string    `gorm:"type:text" json:"plus_one_allergies"`

	InvitationName   *string    `gorm:"size:255" json:"invitation_name"`
	Country          *string    `gorm:"size:100" json:"country"`
	AddressLine1     *string    `gorm:"size:255" json:"address_line1"`
	AddressLine2     *string    `gorm:"size:255" json:"address_line2"`
	City             *string    `gorm:"size:100" json:"city"`
	Region           *string    `gorm:"size:100" json:"region"`
	PostalCode       *string    `gorm:"size:20" json:"postal_code"`
	AddressFreeform  *string    `gorm:"type:text" json:"address_freeform"`
	AddressFormatted *string    `gorm:"type:text" json:"address_formatted"`
	AddressUpdatedAt *time.Time `json:"address_updated_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Guest) TableName() string {
	return "guests"
}

// HasResponded reports whether the guest has submitted an RSVP at least once.
func (g *Guest) HasResponded() bool {
	return g.RSVPSubmittedAt != nil
}
