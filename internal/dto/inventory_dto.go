package dto

import (
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
)

type AddBloodUnitRequest struct {
	BloodGroup string `json:"blood_group"`
	Units      int    `json:"units"`
	ExpiryDate string `json:"expiry_date"` // YYYY-MM-DD
	Location   string `json:"location"`
}

type UpdateBloodUnitStatusRequest struct {
	Status models.BloodUnitStatus `json:"status"`
}

type BloodUnitView struct {
	models.BloodUnit
	ExpiringSoon bool `json:"expiring_soon"`
}

type InventoryTotals struct {
	ByGroup    map[string]int `json:"by_group"`
	TotalUnits int            `json:"total_units"`
}
