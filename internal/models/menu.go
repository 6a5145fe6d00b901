package models

import (
	"github.com/jinzhu/gorm"
)

// Menu is a named collection of categories owned by one subscriber.
// Active controls diner visibility; State is the soft-delete lifecycle.
// At most one menu system-wide is diner-facing, tracked through the
// current_active_menu settings row.
type Menu struct {
	gorm.Model
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Active      bool           `json:"active"`
	State       LifecycleState `gorm:"size:16;not null;default:'active'" json:"state"`
	Categories  []MenuCategory `gorm:"foreignkey:MenuID" json:"categories,omitempty"`
}

// MenuCategory groups items within a menu. Name is the reconciliation
// lookup key and is unique among a menu's active categories.
// DisplayOrder is the zero-based position supplied by the editor.
type MenuCategory struct {
	gorm.Model
	MenuID       uint           `gorm:"index;not null" json:"menu_id"`
	Name         string         `gorm:"size:200;not null" json:"name"`
	DisplayOrder int            `json:"display_order"`
	State        LifecycleState `gorm:"size:16;not null;default:'active'" json:"state"`
	Items        []MenuItem     `gorm:"foreignkey:CategoryID" json:"items,omitempty"`
}

// MenuItem is a dish under a category. Archived items stay in place so
// historical order lines keep a valid reference.
type MenuItem struct {
	gorm.Model
	CategoryID  uint           `gorm:"index;not null" json:"category_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	ImagePath   string         `gorm:"size:255" json:"image_path"`
	State       LifecycleState `gorm:"size:16;not null;default:'active'" json:"state"`
}
