package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodGroup string

const (
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
)

var BloodGroups = []BloodGroup{
	BloodGroupOPos, BloodGroupONeg,
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
}

func (g BloodGroup) IsValid() bool {
	for _, v := range BloodGroups {
		if v == g {
			return true
		}
	}
	return false
}

// DonorProfile extends a User acting as a donor. IsEligible is a cached value
// derived from LastDonationDate and LastDonationType and must only be written
// together with them.
type DonorProfile struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Phone            string        `gorm:"size:50" json:"phone"`
	Address          string        `gorm:"size:500" json:"address"`
	City             string        `gorm:"size:120" json:"city"`
	BloodGroup       *BloodGroup   `gorm:"size:3;index" json:"blood_group"`
	DateOfBirth      *time.Time    `gorm:"type:date" json:"date_of_birth"`
	Weight           *int          `json:"weight"`
	LastDonationDate *time.Time    `gorm:"type:date" json:"last_donation_date"`
	LastDonationType *DonationType `gorm:"size:20" json:"last_donation_type"`
	IsEligible       bool          `gorm:"not null;default:true" json:"is_eligible"`
	MedicalNotes     string        `gorm:"type:text" json:"medical_notes"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	User             User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *DonorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EmergencyContact is kept one per user; writes are upserts.
type EmergencyContact struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Phone        string    `gorm:"not null;size:50" json:"phone"`
	Relationship string    `gorm:"not null;size:100" json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *EmergencyContact) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
