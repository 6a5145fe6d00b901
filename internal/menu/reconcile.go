package menu

import (
	"strings"

	"tabletap/internal/apperr"
	"tabletap/internal/database"
	"tabletap/internal/images"
	"tabletap/internal/models"
	"tabletap/internal/monitoring"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// ItemSpec describes one desired menu item. A non-zero ID asks to
// update an existing item; a stale or foreign ID falls through to
// creation. Image may be an inline data URL, which is decoded and
// stored; any other value leaves the stored image untouched.
type ItemSpec struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// CategorySpec is one desired category with its items, in display
// order. The slice position becomes the persisted display index.
type CategorySpec struct {
	Name  string     `json:"name"`
	Items []ItemSpec `json:"items"`
}

// Reconcile replaces the active category/item tree of a menu with the
// desired one. It runs in a single transaction, serialized per menu:
//
//   - categories absent from desired are archived, with their items
//   - categories present are created or revived at their new position
//   - items are matched by id within the menu, otherwise created;
//     unmatched stored items are archived
//
// Nothing is ever deleted, so order lines keep valid references.
// After a successful call the active set mirrors desired exactly.
func (s *Service) Reconcile(menuID, ownerID uint, desired []CategorySpec) error {
	lock := s.lockFor(menuID)
	lock.Lock()
	defer lock.Unlock()

	err := database.Transact(s.db, func(tx *gorm.DB) error {
		m, err := ownedMenu(tx, menuID, ownerID)
		if err != nil {
			return err
		}

		order := make(map[string]int, len(desired))
		for i, c := range desired {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return apperr.Validationf("category name is required")
			}
			if _, dup := order[name]; dup {
				return apperr.Validationf("duplicate category %q", name)
			}
			order[name] = i
		}

		var existing []models.MenuCategory
		if err := tx.Where("menu_id = ?", m.ID).Find(&existing).Error; err != nil {
			return err
		}
		byName := make(map[string]*models.MenuCategory, len(existing))
		for i := range existing {
			byName[existing[i].Name] = &existing[i]
		}

		// Archive categories (and their items) that dropped out of the
		// desired tree. Untouched survivors are not rewritten.
		for i := range existing {
			cat := &existing[i]
			if _, keep := order[cat.Name]; keep || cat.State != models.StateActive {
				continue
			}
			if err := archiveCategory(tx, cat); err != nil {
				return err
			}
		}

		for idx, spec := range desired {
			name := strings.TrimSpace(spec.Name)
			cat := byName[name]
			if cat == nil {
				cat = &models.MenuCategory{
					MenuID:       m.ID,
					Name:         name,
					DisplayOrder: idx,
					State:        models.StateActive,
				}
				if err := tx.Create(cat).Error; err != nil {
					return err
				}
			} else if cat.State != models.StateActive || cat.DisplayOrder != idx {
				cat.State = models.StateActive
				cat.DisplayOrder = idx
				if err := tx.Save(cat).Error; err != nil {
					return err
				}
			}

			if err := s.reconcileItems(tx, m, cat, spec.Items); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		monitoring.ReconcileRuns.WithLabelValues("error").Inc()
		return err
	}
	monitoring.ReconcileRuns.WithLabelValues("ok").Inc()
	s.log.Info("menu reconciled", zap.Uint("menu_id", menuID), zap.Int("categories", len(desired)))
	return nil
}

func archiveCategory(tx *gorm.DB, cat *models.MenuCategory) error {
	if err := tx.Model(cat).Update("state", models.StateArchived).Error; err != nil {
		return err
	}
	return tx.Model(&models.MenuItem{}).
		Where("category_id = ? AND state = ?", cat.ID, models.StateActive).
		Update("state", models.StateArchived).Error
}

// reconcileItems brings one category's items in line with specs.
// Specs with a blank name are dropped without failing the call.
func (s *Service) reconcileItems(tx *gorm.DB, m *models.Menu, cat *models.MenuCategory, specs []ItemSpec) error {
	var existing []models.MenuItem
	if err := tx.Where("category_id = ?", cat.ID).Find(&existing).Error; err != nil {
		return err
	}

	keep := make(map[uint]bool, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			s.log.Warn("dropping item spec without a name",
				zap.Uint("menu_id", m.ID), zap.String("category", cat.Name))
			continue
		}
		if spec.Price < 0 {
			return apperr.Validationf("item %q has a negative price", name)
		}

		item, err := s.matchItem(tx, m, spec.ID)
		if err != nil {
			return err
		}
		if item == nil {
			item = &models.MenuItem{CategoryID: cat.ID}
		}

		item.CategoryID = cat.ID
		item.Name = name
		item.Description = strings.TrimSpace(spec.Description)
		item.Price = spec.Price
		item.State = models.StateActive

		if images.IsDataURL(spec.Image) {
			path, err := s.images.SaveDataURL(spec.Image)
			if err != nil {
				return apperr.Validationf("item %q image: %v", name, err)
			}
			item.ImagePath = path
		}

		if err := tx.Save(item).Error; err != nil {
			return err
		}
		keep[item.ID] = true
	}

	for i := range existing {
		it := &existing[i]
		if keep[it.ID] || it.State != models.StateActive {
			continue
		}
		if err := tx.Model(it).Update("state", models.StateArchived).Error; err != nil {
			return err
		}
	}
	return nil
}

// matchItem fetches an item by id, constrained to the menu being
// reconciled. Stale and foreign ids return nil so the caller creates a
// fresh item instead.
func (s *Service) matchItem(tx *gorm.DB, m *models.Menu, id uint) (*models.MenuItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.MenuItem
	err := tx.Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("menu_items.id = ? AND menu_categories.menu_id = ?", id, m.ID).
		First(&item).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
