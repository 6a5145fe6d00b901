package orders

import (
	"testing"
	"time"

	"tabletap/internal/apperr"
	"tabletap/internal/database"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return NewService(db, zap.NewNop()), db
}

// seedItem creates a menu with one category holding one item.
func seedItem(t *testing.T, db *gorm.DB, name string, price float64, state models.LifecycleState) *models.MenuItem {
	t.Helper()

	menu := models.Menu{UserID: 1, Name: "Dinner", State: models.StateActive, Active: true}
	require.NoError(t, db.Create(&menu).Error)
	cat := models.MenuCategory{MenuID: menu.ID, Name: "Mains", State: models.StateActive}
	require.NoError(t, db.Create(&cat).Error)
	item := models.MenuItem{CategoryID: cat.ID, Name: name, Price: price, State: state}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func floatPtr(f float64) *float64 { return &f }

func TestSubmitCreatesOrder(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 25.00, models.StateActive)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber:   "12",
		DeclaredTotal: floatPtr(25.00),
		Lines:         []Line{{ItemID: item.ID, Name: "Steak", Quantity: 1, Price: 25.00}},
	})
	require.NoError(t, err)
	assert.Equal(t, 25.00, receipt.Total)

	detail, err := s.Detail(receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "12", detail.TableNumber)
	assert.Equal(t, string(models.OrderStatusPending), detail.Status)
	assert.Equal(t, 25.00, detail.TotalAmount)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Steak", detail.Items[0].ItemName)
	assert.Equal(t, 1, detail.Items[0].Quantity)
	assert.Equal(t, 25.00, detail.Items[0].Price)
	assert.Equal(t, 25.00, detail.Items[0].Subtotal)
}

func TestSubmitRequiresTable(t *testing.T) {
	s, _ := testService(t)

	_, err := s.Submit(SubmissionRequest{TableNumber: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSubmitReusesTable(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 25.00, models.StateActive)

	line := []Line{{ItemID: item.ID, Quantity: 1}}
	_, err := s.Submit(SubmissionRequest{TableNumber: "7", Lines: line})
	require.NoError(t, err)
	_, err = s.Submit(SubmissionRequest{TableNumber: "7", Lines: line})
	require.NoError(t, err)

	var tables int
	require.NoError(t, db.Model(&models.Table{}).Count(&tables).Error)
	assert.Equal(t, 1, tables)
}

func TestSubmitSkipsInactiveItems(t *testing.T) {
	s, db := testService(t)
	active := seedItem(t, db, "Steak", 20.00, models.StateActive)
	archived := models.MenuItem{CategoryID: active.CategoryID, Name: "Old Soup", Price: 5.00, State: models.StateArchived}
	require.NoError(t, db.Create(&archived).Error)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber: "3",
		Lines: []Line{
			{ItemID: active.ID, Quantity: 1},
			{ItemID: archived.ID, Quantity: 2},
			{ItemID: 9999, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 20.00, receipt.Total)

	detail, err := s.Detail(receipt.OrderID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Steak", detail.Items[0].ItemName)
}

func TestSubmitRejectsAllInvalidLines(t *testing.T) {
	s, db := testService(t)

	_, err := s.Submit(SubmissionRequest{
		TableNumber: "3",
		Lines:       []Line{{ItemID: 9999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Nothing was written, not even the order header.
	var orderCount int
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, 0, orderCount)
}

func TestSubmitRejectsTotalMismatch(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 25.00, models.StateActive)

	_, err := s.Submit(SubmissionRequest{
		TableNumber:   "12",
		DeclaredTotal: floatPtr(1.00),
		Lines:         []Line{{ItemID: item.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSubmitIgnoresClientLinePrice(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 25.00, models.StateActive)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber: "12",
		Lines:       []Line{{ItemID: item.ID, Quantity: 2, Price: 0.01}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.00, receipt.Total)
}

func TestSnapshotSurvivesPriceChange(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 25.00, models.StateActive)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber: "12",
		Lines:       []Line{{ItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(item).Update("price", 99.00).Error)

	detail, err := s.Detail(receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 25.00, detail.Items[0].Price)
	assert.Equal(t, 25.00, detail.TotalAmount)
}

func TestDetailNotFound(t *testing.T) {
	s, _ := testService(t)

	_, err := s.Detail(42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 10.00, models.StateActive)

	first, err := s.Submit(SubmissionRequest{
		TableNumber: "1",
		Lines:       []Line{{ItemID: item.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	second, err := s.Submit(SubmissionRequest{
		TableNumber: "2",
		Lines:       []Line{{ItemID: item.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	// Make the ordering deterministic regardless of timestamp precision.
	now := time.Now()
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.OrderID).
		UpdateColumn("updated_at", now.Add(-time.Hour)).Error)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", second.OrderID).
		UpdateColumn("updated_at", now).Error)

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.OrderID, summaries[0].ID)
	assert.Equal(t, 3, summaries[0].TotalItems)
	assert.Equal(t, "2", summaries[0].TableNumber)
	assert.Equal(t, first.OrderID, summaries[1].ID)
	assert.Equal(t, 2, summaries[1].TotalItems)
}

func TestUpdateStatusTransitions(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 10.00, models.StateActive)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber: "1",
		Lines:       []Line{{ItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(receipt.OrderID, models.OrderStatusPreparing))
	require.NoError(t, s.UpdateStatus(receipt.OrderID, models.OrderStatusServed))

	// served is terminal
	err = s.UpdateStatus(receipt.OrderID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = s.UpdateStatus(receipt.OrderID, "delivering")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = s.UpdateStatus(9999, models.OrderStatusPreparing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPendingCannotSkipToServed(t *testing.T) {
	s, db := testService(t)
	item := seedItem(t, db, "Steak", 10.00, models.StateActive)

	receipt, err := s.Submit(SubmissionRequest{
		TableNumber: "1",
		Lines:       []Line{{ItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = s.UpdateStatus(receipt.OrderID, models.OrderStatusServed)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
