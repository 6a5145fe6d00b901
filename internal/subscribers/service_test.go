package subscribers

import (
	"fmt"
	"testing"

	"tabletap/internal/apperr"
	"tabletap/internal/database"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return NewService(db, zap.NewNop())
}

func create(t *testing.T, s *Service, username, email string) *models.User {
	t.Helper()
	user, err := s.Create(CreateRequest{
		Username:  username,
		Email:     email,
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestCreateAndAuthenticate(t *testing.T) {
	s := testService(t)
	create(t, s, "alice", "alice@example.com")

	user, err := s.Authenticate("alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsSuperuser)

	_, err = s.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Authenticate("nobody", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCreateValidation(t *testing.T) {
	s := testService(t)
	create(t, s, "alice", "alice@example.com")

	_, err := s.Create(CreateRequest{Username: "bob", Email: "b@example.com", Password1: "one", Password2: "two"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Create(CreateRequest{Username: "alice", Email: "other@example.com", Password1: "x", Password2: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Create(CreateRequest{Username: "bob", Email: "alice@example.com", Password1: "x", Password2: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Create(CreateRequest{Username: "", Email: "", Password1: "", Password2: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestArchivedCannotAuthenticate(t *testing.T) {
	s := testService(t)
	user := create(t, s, "alice", "alice@example.com")

	require.NoError(t, s.Archive(user.ID))

	_, err := s.Authenticate("alice", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateChangesPassword(t *testing.T) {
	s := testService(t)
	user := create(t, s, "alice", "alice@example.com")

	err := s.Update(user.ID, UpdateRequest{Password1: "new-pass", Password2: "new-pass"})
	require.NoError(t, err)

	_, err = s.Authenticate("alice", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = s.Authenticate("alice", "new-pass")
	assert.NoError(t, err)

	err = s.Update(user.ID, UpdateRequest{Password1: "a", Password2: "b"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListSearchAndPagination(t *testing.T) {
	s := testService(t)
	for i := 0; i < 7; i++ {
		create(t, s, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
	}
	create(t, s, "manager", "boss@restaurant.test")

	page, err := s.List("", 1)
	require.NoError(t, err)
	assert.Equal(t, 8, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Users, PageSize)

	page, err = s.List("", 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 3)

	// Search matches username or email, case-insensitively.
	page, err = s.List("MANAGER", 1)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "manager", page.Users[0].Username)

	page, err = s.List("restaurant.test", 1)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "manager", page.Users[0].Username)
}
