// Package subscribers manages subscriber accounts: registration,
// authentication, and the staff administration surface.
package subscribers

import (
	"strings"

	"tabletap/internal/apperr"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PageSize is the admin list page length.
const PageSize = 5

// Service owns subscriber account operations.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a subscriber service.
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log.Named("subscribers")}
}

// CreateRequest carries a new account with password confirmation.
type CreateRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password1   string `json:"password1"`
	Password2   string `json:"password2"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Create registers an account after the same checks the signup form
// performs: all fields present, passwords matching, username and email
// unused.
func (s *Service) Create(req CreateRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password1 == "" || req.Password2 == "" {
		return nil, apperr.Validationf("all fields are required")
	}
	if req.Password1 != req.Password2 {
		return nil, apperr.Validationf("passwords do not match")
	}

	var count int
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Validationf("username already exists")
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Validationf("email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsSuperuser:  req.IsSuperuser,
		State:        models.StateActive,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	s.log.Info("subscriber created", zap.Uint("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Authenticate verifies credentials. Archived accounts are rejected
// the same way as bad passwords.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if user.Archived() {
		return nil, apperr.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}
	return &user, nil
}

// Get returns one account by id.
func (s *Service) Get(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFoundf("user %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Page is one slice of the subscriber list.
type Page struct {
	Users []models.User `json:"users"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Total int           `json:"total"`
}

// List returns subscribers matching an optional case-insensitive
// username/email substring search, paginated at PageSize.
func (s *Service) List(search string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	query := s.db.Model(&models.User{})
	if search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", needle, needle)
	}

	var total int
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	pages := (total + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}

	var users []models.User
	err := query.Order("id").Offset((page - 1) * PageSize).Limit(PageSize).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return &Page{Users: users, Page: page, Pages: pages, Total: total}, nil
}

// UpdateRequest carries editable account fields. An empty password
// pair leaves the hash untouched.
type UpdateRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password1   string `json:"password1"`
	Password2   string `json:"password2"`
	IsSuperuser *bool  `json:"is_superuser"`
}

// Update edits a subscriber.
func (s *Service) Update(id uint, req UpdateRequest) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if username := strings.TrimSpace(req.Username); username != "" {
		user.Username = username
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		user.Email = email
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.Password1 != "" || req.Password2 != "" {
		if req.Password1 != req.Password2 {
			return apperr.Validationf("passwords do not match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	return s.db.Save(user).Error
}

// Archive soft-deletes an account; it stops authenticating but its
// menus and orders remain.
func (s *Service) Archive(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}
	user.State = models.StateArchived
	s.log.Info("subscriber archived", zap.Uint("user_id", id))
	return s.db.Save(user).Error
}
