// Package menu implements menu management: CRUD on menus, the
// reconciliation engine that synchronizes a submitted category/item
// tree against stored records, and the read projections served to the
// editor and to diners.
package menu

import (
	"strconv"
	"strings"
	"sync"

	"tabletap/internal/apperr"
	"tabletap/internal/database"
	"tabletap/internal/images"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// Service owns all menu operations. Reconciliation is serialized per
// menu through an in-process lock table.
type Service struct {
	db     *gorm.DB
	images *images.Store
	log    *zap.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewService creates a menu service.
func NewService(db *gorm.DB, store *images.Store, log *zap.Logger) *Service {
	return &Service{
		db:     db,
		images: store,
		log:    log.Named("menu"),
		locks:  make(map[uint]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing writes to one menu.
func (s *Service) lockFor(menuID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[menuID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[menuID] = l
	}
	return l
}

// ownedMenu resolves a live menu scoped to its owner. Missing and
// foreign-owned menus are both reported as not found.
func ownedMenu(tx *gorm.DB, menuID, ownerID uint) (*models.Menu, error) {
	var m models.Menu
	err := tx.Where("id = ? AND user_id = ? AND state = ?", menuID, ownerID, models.StateActive).First(&m).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFoundf("menu %d", menuID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create adds a menu for the owner. The name is required.
func (s *Service) Create(ownerID uint, name, description string) (*models.Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("menu name is required")
	}

	m := models.Menu{
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		State:       models.StateActive,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	s.log.Info("menu created", zap.Uint("menu_id", m.ID), zap.Uint("owner_id", ownerID))
	return &m, nil
}

// UpdateRequest carries the editable menu fields. A nil Active leaves
// diner visibility untouched.
type UpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// Update edits a menu's header fields. Setting Active claims the
// single diner-facing slot: every other menu is deactivated and the
// current_active_menu setting repointed in the same transaction.
func (s *Service) Update(menuID, ownerID uint, req UpdateRequest) error {
	return database.Transact(s.db, func(tx *gorm.DB) error {
		m, err := ownedMenu(tx, menuID, ownerID)
		if err != nil {
			return err
		}

		if name := strings.TrimSpace(req.Name); name != "" {
			m.Name = name
		}
		m.Description = strings.TrimSpace(req.Description)

		if req.Active != nil {
			if *req.Active {
				if err := s.activate(tx, m); err != nil {
					return err
				}
			} else {
				m.Active = false
				if err := clearActiveSetting(tx, m.ID); err != nil {
					return err
				}
			}
		}
		return tx.Save(m).Error
	})
}

// activate makes m the one diner-facing menu.
func (s *Service) activate(tx *gorm.DB, m *models.Menu) error {
	if err := tx.Model(&models.Menu{}).Where("id <> ? AND active = ?", m.ID, true).
		Update("active", false).Error; err != nil {
		return err
	}
	m.Active = true
	return setActiveSetting(tx, m.ID)
}

// Archive soft-deletes a menu and releases the active slot if held.
func (s *Service) Archive(menuID, ownerID uint) error {
	return database.Transact(s.db, func(tx *gorm.DB) error {
		m, err := ownedMenu(tx, menuID, ownerID)
		if err != nil {
			return err
		}
		m.State = models.StateArchived
		m.Active = false
		if err := clearActiveSetting(tx, m.ID); err != nil {
			return err
		}
		s.log.Info("menu archived", zap.Uint("menu_id", m.ID))
		return tx.Save(m).Error
	})
}

func setActiveSetting(tx *gorm.DB, menuID uint) error {
	value := strconv.FormatUint(uint64(menuID), 10)
	var setting models.Setting
	err := tx.Where("key = ?", models.SettingActiveMenu).First(&setting).Error
	if gorm.IsRecordNotFoundError(err) {
		return tx.Create(&models.Setting{Key: models.SettingActiveMenu, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&setting).Update("value", value).Error
}

// clearActiveSetting blanks the singleton reference when it points at
// the given menu. The row is kept so the unique key index stays clean.
func clearActiveSetting(tx *gorm.DB, menuID uint) error {
	value := strconv.FormatUint(uint64(menuID), 10)
	return tx.Model(&models.Setting{}).
		Where("key = ? AND value = ?", models.SettingActiveMenu, value).
		Update("value", "").Error
}
