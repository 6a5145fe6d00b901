package menu

import (
	"testing"

	"tabletap/internal/apperr"
	"tabletap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCreateRequiresName(t *testing.T) {
	s, _ := testService(t)

	_, err := s.Create(ownerID, "   ", "whatever")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateEditsHeaderFields(t *testing.T) {
	s, _ := testService(t)
	m := newMenu(t, s)

	err := s.Update(m.ID, ownerID, UpdateRequest{Name: "Brunch", Description: "Weekend only"})
	require.NoError(t, err)

	view, err := s.View(m.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Brunch", view.Name)
	assert.Equal(t, "Weekend only", view.Description)
}

func TestUpdateForeignMenuNotFound(t *testing.T) {
	s, _ := testService(t)
	m := newMenu(t, s)

	err := s.Update(m.ID, ownerID+1, UpdateRequest{Name: "Stolen"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestActivateClaimsSingleton(t *testing.T) {
	s, db := testService(t)
	first := newMenu(t, s)
	second, err := s.Create(ownerID, "Lunch", "")
	require.NoError(t, err)

	require.NoError(t, s.Update(first.ID, ownerID, UpdateRequest{Active: boolPtr(true)}))
	require.NoError(t, s.Update(second.ID, ownerID, UpdateRequest{Active: boolPtr(true)}))

	var reloaded models.Menu
	require.NoError(t, db.First(&reloaded, first.ID).Error)
	assert.False(t, reloaded.Active)

	active, err := s.ActiveView()
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	var count int
	require.NoError(t, db.Model(&models.Menu{}).Where("active = ?", true).Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestDeactivateReleasesSingleton(t *testing.T) {
	s, _ := testService(t)
	m := newMenu(t, s)

	require.NoError(t, s.Update(m.ID, ownerID, UpdateRequest{Active: boolPtr(true)}))
	require.NoError(t, s.Update(m.ID, ownerID, UpdateRequest{Active: boolPtr(false)}))

	_, err := s.ActiveView()
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestArchiveHidesMenu(t *testing.T) {
	s, _ := testService(t)
	m := newMenu(t, s)
	require.NoError(t, s.Update(m.ID, ownerID, UpdateRequest{Active: boolPtr(true)}))

	require.NoError(t, s.Archive(m.ID, ownerID))

	_, err := s.View(m.ID, ownerID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.ActiveView()
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	views, err := s.ListViews(ownerID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListViewsScopedToOwner(t *testing.T) {
	s, _ := testService(t)
	newMenu(t, s)

	views, err := s.ListViews(ownerID + 1)
	require.NoError(t, err)
	assert.Empty(t, views)
}
