package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/eligibility"
	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileService struct {
	db  *gorm.DB
	cal Calendar
}

func NewProfileService(db *gorm.DB, cal Calendar) *ProfileService {
	return &ProfileService{db: db, cal: cal}
}

// Get returns the caller's account, donor profile and emergency contact. The
// cached eligibility flag is refreshed on the way out.
func (s *ProfileService) Get(actor access.Principal) (*dto.ProfileResponse, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistenceError("load user", err)
	}

	resp := &dto.ProfileResponse{User: userResponse(&user)}

	if _, err := refreshEligibility(s.db, actor.UserID, s.cal.Today()); err != nil {
		return nil, err
	}
	profile, err := findProfile(s.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		resp.Profile = profile
		_, resp.NextEligibleDate = eligibility.Of(profile, s.cal.Today())
	}

	var contact models.EmergencyContact
	err = s.db.Scopes(access.ForUser(actor.UserID)).First(&contact).Error
	switch {
	case err == nil:
		resp.EmergencyContact = &contact
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, persistenceError("load emergency contact", err)
	}

	return resp, nil
}

func (s *ProfileService) UpdateUserInfo(actor access.Principal, req *dto.UpdateUserInfoRequest) (*dto.UserResponse, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !validEmail(email) {
		return nil, validationError("a valid email is required")
	}

	var taken int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, actor.UserID).
		Count(&taken).Error; err != nil {
		return nil, persistenceError("check email", err)
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	res := s.db.Model(&models.User{}).
		Where("id = ?", actor.UserID).
		Updates(map[string]interface{}{"name": name, "email": email})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, persistenceError("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		return nil, persistenceError("reload user", err)
	}
	resp := userResponse(&user)
	return &resp, nil
}

// UpsertDonorProfile writes the donor-editable profile fields. Eligibility
// and last-donation fields are never touched here.
func (s *ProfileService) UpsertDonorProfile(actor access.Principal, req *dto.DonorProfileRequest) (*models.DonorProfile, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	profile := models.DonorProfile{
		UserID:       actor.UserID,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		MedicalNotes: strings.TrimSpace(req.MedicalNotes),
		IsEligible:   true,
	}
	if req.BloodGroup != nil && strings.TrimSpace(*req.BloodGroup) != "" {
		group := models.BloodGroup(strings.ToUpper(strings.TrimSpace(*req.BloodGroup)))
		if !group.IsValid() {
			return nil, validationError("unknown blood group %q", *req.BloodGroup)
		}
		profile.BloodGroup = &group
	}
	if raw := strings.TrimSpace(req.DateOfBirth); raw != "" {
		dob, err := models.ParseDate(raw)
		if err != nil {
			return nil, validationError("date of birth must be YYYY-MM-DD")
		}
		if dob.After(s.cal.Today()) {
			return nil, validationError("date of birth cannot be in the future")
		}
		profile.DateOfBirth = &dob
	}
	if req.Weight != nil {
		if *req.Weight <= 0 {
			return nil, validationError("weight must be positive")
		}
		profile.Weight = req.Weight
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"phone", "address", "city", "blood_group", "date_of_birth", "weight", "medical_notes", "updated_at",
		}),
	}).Create(&profile).Error; err != nil {
		return nil, persistenceError("upsert donor profile", err)
	}

	stored, err := findProfile(s.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *ProfileService) UpsertEmergencyContact(actor access.Principal, req *dto.EmergencyContactRequest) (*models.EmergencyContact, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}

	contact := models.EmergencyContact{
		UserID:       actor.UserID,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Relationship: strings.TrimSpace(req.Relationship),
	}
	if contact.Name == "" || contact.Phone == "" || contact.Relationship == "" {
		return nil, validationError("name, phone and relationship are required")
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "relationship", "updated_at"}),
	}).Create(&contact).Error; err != nil {
		return nil, persistenceError("upsert emergency contact", err)
	}

	var stored models.EmergencyContact
	if err := s.db.Scopes(access.ForUser(actor.UserID)).First(&stored).Error; err != nil {
		return nil, persistenceError("reload emergency contact", err)
	}
	return &stored, nil
}
