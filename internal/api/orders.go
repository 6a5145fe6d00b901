package api

import (
	"errors"
	"net/http"
	"strconv"

	"tabletap/internal/apperr"
	"tabletap/internal/models"
	"tabletap/internal/orders"

	"github.com/gin-gonic/gin"
)

type submitOrderJSON struct {
	Table               string        `json:"table"`
	TotalPrice          *float64      `json:"total_price"`
	SpecialInstructions string        `json:"special_instructions"`
	Items               []orders.Line `json:"items"`
}

// SubmitOrder accepts a diner's order as JSON or as the legacy
// form-encoded fields (item_id_N, item_name_N, ...). The response is
// JSON unless the client prefers HTML, in which case it redirects back
// to the table view.
func (s *Server) SubmitOrder(c *gin.Context) {
	var req orders.SubmissionRequest

	if c.ContentType() == gin.MIMEJSON {
		var body submitOrderJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req = orders.SubmissionRequest{
			TableNumber:         body.Table,
			DeclaredTotal:       body.TotalPrice,
			SpecialInstructions: body.SpecialInstructions,
			Lines:               body.Items,
		}
	} else {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		form := c.Request.PostForm

		table := form.Get("table")
		totalRaw := form.Get("total_price")
		if table == "" || totalRaw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing table number or total price"})
			return
		}
		total, err := strconv.ParseFloat(totalRaw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total price"})
			return
		}

		req = orders.SubmissionRequest{
			TableNumber:         table,
			DeclaredTotal:       &total,
			SpecialInstructions: form.Get("special_instructions"),
			Lines:               orders.ParseIndexedLines(form),
		}
	}

	req.UserID = s.optionalPrincipal(c)

	receipt, err := s.orders.Submit(req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.Redirect(http.StatusFound, "/table/"+req.TableNumber+"/?order_success=true")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": receipt.OrderID,
		"total":    receipt.Total,
		"message":  "Order submitted successfully",
	})
}

// GetOrderDetails returns the receipt projection for one order.
func (s *Server) GetOrderDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	detail, err := s.orders.Detail(uint(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListOrders returns all orders newest-first for the staff dashboard.
func (s *Server) ListOrders(c *gin.Context) {
	summaries, err := s.orders.List()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": summaries})
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.respondError(c, apperr.Validationf("invalid order id %q", c.Param("id")))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.orders.UpdateStatus(uint(id), models.OrderStatus(req.Status)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
