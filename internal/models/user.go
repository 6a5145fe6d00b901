package models

import (
	"github.com/jinzhu/gorm"
)

// LifecycleState tags a record's position in its soft-delete lifecycle.
// Records are never hard-deleted; archiving keeps order history intact.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateArchived LifecycleState = "archived"
)

// User represents a subscriber account. Staff accounts carry the
// superuser flag; archived accounts cannot authenticate.
type User struct {
	gorm.Model
	Username     string         `gorm:"size:150;unique_index;not null" json:"username"`
	Email        string         `gorm:"size:254;unique_index;not null" json:"email"`
	PasswordHash string         `gorm:"size:128;not null" json:"-"`
	IsSuperuser  bool           `json:"is_superuser"`
	State        LifecycleState `gorm:"size:16;not null;default:'active'" json:"state"`
}

// Archived reports whether the account has been soft-deleted.
func (u *User) Archived() bool {
	return u.State == StateArchived
}

// Setting is a single-row key/value entry for global application state.
type Setting struct {
	gorm.Model
	Key   string `gorm:"size:64;unique_index;not null"`
	Value string `gorm:"size:255"`
}

// SettingActiveMenu names the settings row holding the id of the one
// menu currently shown to diners.
const SettingActiveMenu = "current_active_menu"
