// Package orders implements order submission and the read projections
// backing the staff dashboard and receipt lookup.
package orders

import (
	"math"

	"tabletap/internal/apperr"
	"tabletap/internal/database"
	"tabletap/internal/models"
	"tabletap/internal/monitoring"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// totalTolerance is the largest disagreement accepted between a
// client-declared total and the server-computed one, in dollars.
const totalTolerance = 0.005

// Service owns order submission, status transitions and projections.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates an order service.
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log.Named("orders")}
}

// Line is one requested order line. Name and Price echo what the diner
// saw; the authoritative price is read from the stored menu item.
type Line struct {
	ItemID   uint    `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// SubmissionRequest is a parsed order submission. DeclaredTotal is the
// client's total when supplied; it is checked, never stored.
type SubmissionRequest struct {
	TableNumber         string
	DeclaredTotal       *float64
	SpecialInstructions string
	UserID              *uint
	Lines               []Line
}

// Receipt is the caller-facing result of a successful submission.
type Receipt struct {
	OrderID uint    `json:"order_id"`
	Total   float64 `json:"total"`
}

// Submit validates a submission and creates the order with its lines in
// one transaction. Lines referencing missing or archived menu items are
// skipped with a log and a metric; a submission with no valid line is
// rejected before any write. The stored total is always the sum of
// snapshot-priced subtotals; a declared total that disagrees beyond
// half a cent rejects the order.
func (s *Service) Submit(req SubmissionRequest) (*Receipt, error) {
	if req.TableNumber == "" {
		return nil, apperr.Validationf("table number is required")
	}

	var receipt Receipt
	err := database.Transact(s.db, func(tx *gorm.DB) error {
		var table models.Table
		err := tx.Where(models.Table{TableNumber: req.TableNumber}).
			Attrs(models.Table{UserID: req.UserID, State: models.StateActive}).
			FirstOrCreate(&table).Error
		if err != nil {
			return err
		}

		var (
			items []models.OrderItem
			total float64
		)
		for _, line := range req.Lines {
			if line.Quantity < 1 {
				s.skipLine(line, "quantity below one")
				continue
			}

			var menuItem models.MenuItem
			err := tx.Where("id = ? AND state = ?", line.ItemID, models.StateActive).
				First(&menuItem).Error
			if gorm.IsRecordNotFoundError(err) {
				s.skipLine(line, "menu item missing or inactive")
				continue
			}
			if err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				MenuItemID: menuItem.ID,
				Quantity:   line.Quantity,
				Price:      menuItem.Price,
			})
			total += menuItem.Price * float64(line.Quantity)
		}

		if len(items) == 0 {
			return apperr.Validationf("order has no valid items")
		}
		if req.DeclaredTotal != nil && math.Abs(*req.DeclaredTotal-total) > totalTolerance {
			return apperr.Validationf("declared total %.2f does not match computed total %.2f",
				*req.DeclaredTotal, total)
		}

		order := models.Order{
			TableID:             table.ID,
			UserID:              req.UserID,
			Status:              models.OrderStatusPending,
			TotalAmount:         total,
			SpecialInstructions: req.SpecialInstructions,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}

		receipt = Receipt{OrderID: order.ID, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.OrdersSubmitted.Inc()
	monitoring.OrderValue.Observe(receipt.Total)
	s.log.Info("order submitted",
		zap.Uint("order_id", receipt.OrderID),
		zap.String("table", req.TableNumber),
		zap.Float64("total", receipt.Total))
	return &receipt, nil
}

func (s *Service) skipLine(line Line, reason string) {
	monitoring.OrderLinesSkipped.Inc()
	s.log.Warn("skipping order line",
		zap.Uint("item_id", line.ItemID),
		zap.String("item_name", line.Name),
		zap.String("reason", reason))
}

// UpdateStatus moves an order through its lifecycle. Illegal moves are
// conflicts, not overwrites.
func (s *Service) UpdateStatus(orderID uint, next models.OrderStatus) error {
	if !next.Valid() {
		return apperr.Validationf("unknown order status %q", next)
	}
	return database.Transact(s.db, func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Where("id = ?", orderID).First(&order).Error
		if gorm.IsRecordNotFoundError(err) {
			return apperr.NotFoundf("order %d", orderID)
		}
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(next) {
			return apperr.Conflictf("cannot move order from %s to %s", order.Status, next)
		}
		return tx.Model(&order).Update("status", next).Error
	})
}
