package server

import (
	"context"
	"errors"
	"net/http"

	"campus-booking/internal/model"
	"campus-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type createResourceRequest struct {
	Name              string    `json:"name" binding:"required"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	AvailabilitySlots *[]string `json:"availability_slots" binding:"required"`
}

func (s *Server) handleCreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Availability slots should be an array"})
		return
	}

	res := &model.Resource{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}

	if err := s.resources.Create(c.Request.Context(), res, *req.AvailabilitySlots); err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource and availability slots added successfully!"})
}

func (s *Server) handleAdminListResources(c *gin.Context) {
	resources, err := s.resources.List(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

func (s *Server) handleSearchResources(c *gin.Context) {
	resources, err := s.resources.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

type updateResourceRequest struct {
	Name              string    `json:"name" binding:"required"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Status            string    `json:"status"`
	AvailabilitySlots *[]string `json:"availability_slots" binding:"required"`
}

func (s *Server) handleUpdateResource(c *gin.Context) {
	resourceID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Availability slots should be an array"})
		return
	}

	res := &model.Resource{
		ID:          resourceID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	}
	if res.Status == "" {
		res.Status = "Available"
	}

	if err := s.resources.Update(c.Request.Context(), res, *req.AvailabilitySlots); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Resource not found"})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource updated successfully"})
}

func (s *Server) handleDeleteResource(c *gin.Context) {
	resourceID, ok := idParam(c, "resourceId")
	if !ok {
		return
	}

	if err := s.resources.Delete(c.Request.Context(), resourceID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Resource not found"})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Resource deleted successfully"})
}

func (s *Server) handleAdminListBookings(c *gin.Context) {
	bookings, err := s.bookings.ListAll(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (s *Server) handleApproveBooking(c *gin.Context) {
	s.decideBooking(c, s.bookings.Approve, "Booking approved successfully.")
}

func (s *Server) handleRejectBooking(c *gin.Context) {
	s.decideBooking(c, s.bookings.Reject, "Booking rejected successfully.")
}

func (s *Server) decideBooking(c *gin.Context, decide func(ctx context.Context, id int64) error, okMessage string) {
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := decide(c.Request.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found"})
		case errors.Is(err, service.ErrNotPending):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Booking has already been decided"})
		default:
			s.serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": okMessage})
}

func (s *Server) handleDeleteBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.bookings.Delete(c.Request.Context(), bookingID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found"})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully."})
}
