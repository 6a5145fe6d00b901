package api

import (
	"net/http"
	"strconv"

	"tabletap/internal/apperr"
	"tabletap/internal/subscribers"

	"github.com/gin-gonic/gin"
)

func subscriberID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid subscriber id %q", c.Param("id"))
	}
	return uint(id), nil
}

// ListSubscribers returns a page of subscribers, optionally filtered by
// a username/email substring search.
func (s *Server) ListSubscribers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := s.subscribers.List(c.Query("search"), page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateSubscriber adds an account from the admin screen.
func (s *Server) CreateSubscriber(c *gin.Context) {
	var req subscribers.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.subscribers.Create(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": user.ID})
}

// UpdateSubscriber edits an account.
func (s *Server) UpdateSubscriber(c *gin.Context) {
	id, err := subscriberID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req subscribers.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.subscribers.Update(id, req); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ArchiveSubscriber soft-deletes an account.
func (s *Server) ArchiveSubscriber(c *gin.Context) {
	id, err := subscriberID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.subscribers.Archive(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
