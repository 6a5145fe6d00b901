package api

import (
	"net/http"
	"strconv"

	"tabletap/internal/apperr"
	"tabletap/internal/menu"

	"github.com/gin-gonic/gin"
)

func menuID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid menu id %q", c.Param("id"))
	}
	return uint(id), nil
}

// GetMenus returns all live menus for the authenticated owner.
func (s *Server) GetMenus(c *gin.Context) {
	views, err := s.menus.ListViews(principal(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menus": views})
}

// CreateMenu adds a menu for the authenticated owner.
func (s *Server) CreateMenu(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.menus.Create(principal(c), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          m.ID,
		"name":        m.Name,
		"description": m.Description,
	})
}

// UpdateMenu edits a menu's name, description and diner visibility.
func (s *Server) UpdateMenu(c *gin.Context) {
	id, err := menuID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req menu.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.menus.Update(id, principal(c), req); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ArchiveMenu soft-deletes a menu.
func (s *Server) ArchiveMenu(c *gin.Context) {
	id, err := menuID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.menus.Archive(id, principal(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveMenuData reconciles the stored menu tree against the submitted
// one. The payload is an ordered list of categories; list position
// becomes display order.
func (s *Server) SaveMenuData(c *gin.Context) {
	id, err := menuID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var req struct {
		Data []menu.CategorySpec `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.menus.Reconcile(id, principal(c), req.Data); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TableView serves diners the active menu for their table.
func (s *Server) TableView(c *gin.Context) {
	view, err := s.menus.ActiveView()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table_number": c.Param("table_number"),
		"menu":         view,
	})
}
