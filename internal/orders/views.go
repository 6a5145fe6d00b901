package orders

import (
	"time"

	"tabletap/internal/apperr"
	"tabletap/internal/models"

	"github.com/jinzhu/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "03:04 PM"
)

// LineView is one order line with its snapshot price and subtotal.
type LineView struct {
	ItemName string  `json:"item_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

// Detail is the receipt projection for a single order.
type Detail struct {
	ID          uint       `json:"id"`
	TableNumber string     `json:"table_number"`
	Status      string     `json:"status"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	TotalAmount float64    `json:"total_amount"`
	Items       []LineView `json:"items"`
}

// Summary is one row of the staff dashboard: the order header plus an
// aggregated item count and the embedded line list.
type Summary struct {
	ID          uint       `json:"id"`
	TableNumber string     `json:"table_number"`
	Status      string     `json:"status"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	TotalItems  int        `json:"total_items"`
	TotalPrice  float64    `json:"total_price"`
	Items       []LineView `json:"items"`
}

// Detail loads one order with its lines; absent orders are not found,
// never a server fault.
func (s *Service) Detail(orderID uint) (*Detail, error) {
	var order models.Order
	err := s.db.Preload("Table").Preload("Items").Preload("Items.MenuItem").
		Where("id = ?", orderID).First(&order).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFoundf("order %d", orderID)
	}
	if err != nil {
		return nil, err
	}

	return &Detail{
		ID:          order.ID,
		TableNumber: order.Table.TableNumber,
		Status:      string(order.Status),
		Date:        order.UpdatedAt.Format(dateLayout),
		Time:        order.UpdatedAt.Format(timeLayout),
		TotalAmount: order.TotalAmount,
		Items:       lineViews(order.Items),
	}, nil
}

// List returns all orders newest-first for the dashboard.
func (s *Service) List() ([]Summary, error) {
	var all []models.Order
	err := s.db.Preload("Table").Preload("Items").Preload("Items.MenuItem").
		Order("updated_at desc").Find(&all).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(all))
	for i := range all {
		order := &all[i]
		totalItems := 0
		for j := range order.Items {
			totalItems += order.Items[j].Quantity
		}
		summaries = append(summaries, Summary{
			ID:          order.ID,
			TableNumber: order.Table.TableNumber,
			Status:      string(order.Status),
			UpdatedAt:   order.UpdatedAt,
			Date:        order.UpdatedAt.Format(dateLayout),
			Time:        order.UpdatedAt.Format(timeLayout),
			TotalItems:  totalItems,
			TotalPrice:  order.TotalAmount,
			Items:       lineViews(order.Items),
		})
	}
	return summaries, nil
}

func lineViews(items []models.OrderItem) []LineView {
	views := make([]LineView, 0, len(items))
	for i := range items {
		it := &items[i]
		views = append(views, LineView{
			ItemName: it.MenuItem.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Subtotal(),
		})
	}
	return views
}
