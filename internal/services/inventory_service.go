package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpiringSoonDays flags units whose expiry date is at most this many days
// away.
const ExpiringSoonDays = 7

type InventoryService struct {
	db  *gorm.DB
	cal Calendar
}

func NewInventoryService(db *gorm.DB, cal Calendar) *InventoryService {
	return &InventoryService{db: db, cal: cal}
}

func (s *InventoryService) AddUnits(actor access.Principal, req *dto.AddBloodUnitRequest) (*dto.BloodUnitView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	group := models.BloodGroup(strings.ToUpper(strings.TrimSpace(req.BloodGroup)))
	if !group.IsValid() {
		return nil, validationError("unknown blood group %q", req.BloodGroup)
	}
	if req.Units <= 0 {
		return nil, validationError("units must be positive")
	}
	expiry, err := models.ParseDate(strings.TrimSpace(req.ExpiryDate))
	if err != nil {
		return nil, validationError("expiry date must be YYYY-MM-DD")
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, validationError("location is required")
	}

	unit := models.BloodUnit{
		BloodGroup: group,
		Units:      req.Units,
		ExpiryDate: expiry,
		Location:   location,
		Status:     models.UnitAvailable,
		AddedBy:    actor.UserID,
	}
	if expiry.Before(s.cal.Today()) {
		unit.Status = models.UnitExpired
	}

	if err := s.db.Create(&unit).Error; err != nil {
		return nil, persistenceError("add blood units", err)
	}
	view := s.view(unit)
	return &view, nil
}

// ListUnits returns every batch, soonest expiry first.
func (s *InventoryService) ListUnits(actor access.Principal) ([]dto.BloodUnitView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var units []models.BloodUnit
	if err := s.db.Order("expiry_date ASC, created_at ASC").Find(&units).Error; err != nil {
		return nil, persistenceError("list blood units", err)
	}

	views := make([]dto.BloodUnitView, 0, len(units))
	for _, u := range units {
		views = append(views, s.view(u))
	}
	return views, nil
}

func (s *InventoryService) UpdateUnitStatus(actor access.Principal, id uuid.UUID, status models.BloodUnitStatus) (*dto.BloodUnitView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, validationError("unknown unit status %q", status)
	}

	var unit models.BloodUnit
	if err := s.db.First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBloodUnitNotFound
		}
		return nil, persistenceError("load blood unit", err)
	}
	if err := s.db.Model(&unit).Update("status", status).Error; err != nil {
		return nil, persistenceError("update blood unit status", err)
	}
	unit.Status = status

	view := s.view(unit)
	return &view, nil
}

// Totals sums available, unexpired units per blood group. Every group is
// present in the result.
func (s *InventoryService) Totals(actor access.Principal) (*dto.InventoryTotals, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var rows []struct {
		BloodGroup string
		Total      int
	}
	if err := s.db.Model(&models.BloodUnit{}).
		Select("blood_group, SUM(units) AS total").
		Where("status = ? AND expiry_date >= ?", models.UnitAvailable, s.cal.Today()).
		Group("blood_group").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("sum blood units", err)
	}

	totals := &dto.InventoryTotals{ByGroup: make(map[string]int, len(models.BloodGroups))}
	for _, g := range models.BloodGroups {
		totals.ByGroup[string(g)] = 0
	}
	for _, r := range rows {
		totals.ByGroup[r.BloodGroup] = r.Total
		totals.TotalUnits += r.Total
	}
	return totals, nil
}

func (s *InventoryService) view(u models.BloodUnit) dto.BloodUnitView {
	today := s.cal.Today()
	soon := u.Status == models.UnitAvailable &&
		!u.ExpiryDate.Before(today) &&
		!u.ExpiryDate.After(today.AddDate(0, 0, ExpiringSoonDays))
	return dto.BloodUnitView{BloodUnit: u, ExpiringSoon: soon}
}
