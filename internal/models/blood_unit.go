package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodUnitStatus string

const (
	UnitAvailable BloodUnitStatus = "available"
	UnitReserved  BloodUnitStatus = "reserved"
	UnitUsed      BloodUnitStatus = "used"
	UnitExpired   BloodUnitStatus = "expired"
)

func (s BloodUnitStatus) IsValid() bool {
	switch s {
	case UnitAvailable, UnitReserved, UnitUsed, UnitExpired:
		return true
	}
	return false
}

// BloodUnit is a batch of stored units of one blood group.
type BloodUnit struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BloodGroup BloodGroup      `gorm:"size:3;not null;index" json:"blood_group"`
	Units      int             `gorm:"not null" json:"units"`
	ExpiryDate time.Time       `gorm:"type:date;not null;index" json:"expiry_date"`
	Location   string          `gorm:"not null;size:255" json:"location"`
	Status     BloodUnitStatus `gorm:"size:20;not null;default:'available';index" json:"status"`
	AddedBy    uuid.UUID       `gorm:"type:uuid;not null" json:"added_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (u *BloodUnit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
