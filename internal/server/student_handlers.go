package server

import (
	"errors"
	"net/http"

	"campus-booking/internal/service"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListResources(c *gin.Context) {
	resources, err := s.resources.List(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

func (s *Server) handleListSlots(c *gin.Context) {
	resourceID, ok := idParam(c, "resourceId")
	if !ok {
		return
	}

	slots, err := s.resources.Slots(c.Request.Context(), resourceID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No slots found for this resource"})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "slots": slots})
}

type createBookingRequest struct {
	ResourceID int64 `json:"resourceId" binding:"required"`
	SlotID     int64 `json:"slotId" binding:"required"`
}

func (s *Server) handleCreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Resource ID and Slot ID are required."})
		return
	}

	userID := mustClaims(c).UserID
	_, err := s.bookings.Create(c.Request.Context(), userID, req.ResourceID, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Slot not found for this resource"})
		case errors.Is(err, service.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Slot is no longer available"})
		default:
			s.serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking successful"})
}

func (s *Server) handleListOwnBookings(c *gin.Context) {
	bookings, err := s.bookings.ListForUser(c.Request.Context(), mustClaims(c).UserID)
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

type updateBookingRequest struct {
	NewSlotID int64 `json:"newSlotId" binding:"required"`
}

func (s *Server) handleUpdateBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "bookingId")
	if !ok {
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "New slot ID is required."})
		return
	}

	userID := mustClaims(c).UserID
	if err := s.bookings.UpdateSlot(c.Request.Context(), bookingID, userID, req.NewSlotID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found."})
		case errors.Is(err, service.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Slot is no longer available"})
		default:
			s.serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking updated successfully."})
}

func (s *Server) handleCancelBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "bookingId")
	if !ok {
		return
	}

	userID := mustClaims(c).UserID
	if err := s.bookings.Cancel(c.Request.Context(), bookingID, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found."})
			return
		}
		s.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled successfully."})
}
