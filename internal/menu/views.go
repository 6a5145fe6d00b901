package menu

import (
	"strconv"

	"tabletap/internal/apperr"
	"tabletap/internal/images"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
)

// ItemView is the serialized form of a menu item.
type ItemView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// CategoryView holds a category's active items in display order.
type CategoryView struct {
	Name  string     `json:"name"`
	Items []ItemView `json:"items"`
}

// View is the editor- and diner-facing shape of a menu: active
// categories ordered by display position, each with its active items.
type View struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Active      bool           `json:"active"`
	Data        []CategoryView `json:"data"`
}

// ListViews returns the owner's live menus, newest first.
func (s *Service) ListViews(ownerID uint) ([]View, error) {
	var menus []models.Menu
	err := s.db.Where("user_id = ? AND state = ?", ownerID, models.StateActive).
		Order("updated_at desc").Find(&menus).Error
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(menus))
	for i := range menus {
		v, err := s.buildView(&menus[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// View returns one menu, owner-scoped.
func (s *Service) View(menuID, ownerID uint) (*View, error) {
	m, err := ownedMenu(s.db, menuID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.buildView(m)
}

// ActiveView returns the diner-facing menu designated by the
// current_active_menu setting.
func (s *Service) ActiveView() (*View, error) {
	var setting models.Setting
	err := s.db.Where("key = ?", models.SettingActiveMenu).First(&setting).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFoundf("no active menu")
	}
	if err != nil {
		return nil, err
	}

	menuID, err := strconv.ParseUint(setting.Value, 10, 64)
	if err != nil {
		return nil, apperr.NotFoundf("no active menu")
	}

	var m models.Menu
	err = s.db.Where("id = ? AND active = ? AND state = ?", menuID, true, models.StateActive).First(&m).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFoundf("no active menu")
	}
	if err != nil {
		return nil, err
	}
	return s.buildView(&m)
}

func (s *Service) buildView(m *models.Menu) (*View, error) {
	v := &View{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.Active,
		Data:        []CategoryView{},
	}

	var categories []models.MenuCategory
	err := s.db.Where("menu_id = ? AND state = ?", m.ID, models.StateActive).
		Order("display_order").Find(&categories).Error
	if err != nil {
		return nil, err
	}

	for i := range categories {
		cat := &categories[i]
		var items []models.MenuItem
		err := s.db.Where("category_id = ? AND state = ?", cat.ID, models.StateActive).
			Order("id").Find(&items).Error
		if err != nil {
			return nil, err
		}

		cv := CategoryView{Name: cat.Name, Items: make([]ItemView, 0, len(items))}
		for j := range items {
			it := &items[j]
			cv.Items = append(cv.Items, ItemView{
				ID:          it.ID,
				Name:        it.Name,
				Description: it.Description,
				Price:       it.Price,
				Image:       images.URL(it.ImagePath),
			})
		}
		v.Data = append(v.Data, cv)
	}
	return v, nil
}
