package handler

import (
	"errors"
	"net/http"
	"strconv"

	"attendance_tracker/internal/geo"
	"attendance_tracker/internal/model"
	"attendance_tracker/internal/service"
	"attendance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttendanceHandler handles check-in/check-out requests
type AttendanceHandler struct {
	service service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(s service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: s}
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	employeeID, err := getAuthEmployeeID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return
	}

	var req model.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid latitude and longitude required"})
		return
	}

	observed := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	session, err := h.service.CheckIn(c.Request.Context(), employeeID, observed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOutsideGeofence):
			result := h.service.Locate(observed)
			c.JSON(http.StatusForbidden, gin.H{
				"success":         false,
				"message":         "You need to be within the workplace geofence to check in",
				"distance_meters": result.DistanceMeters,
			})
		case errors.Is(err, service.ErrSessionAlreadyOpen):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Already checked in"})
		default:
			utils.Error("Error during check-in", zap.Int("employee_id", employeeID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Checked in successfully",
		"session": session,
	})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	employeeID, err := getAuthEmployeeID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return
	}

	session, err := h.service.CheckOut(c.Request.Context(), employeeID)
	if err != nil {
		if errors.Is(err, service.ErrNoOpenSession) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No open attendance session"})
			return
		}
		utils.Error("Error during check-out", zap.Int("employee_id", employeeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to check out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Checked out successfully",
		"session": session,
	})
}

// Status reports the open session, if any, and classifies an optional
// latitude/longitude query pair against the geofence so the client can
// restore its UI state after a reload.
func (h *AttendanceHandler) Status(c *gin.Context) {
	employeeID, err := getAuthEmployeeID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return
	}

	session, err := h.service.CurrentSession(c.Request.Context(), employeeID)
	if err != nil {
		utils.Error("Error loading session status", zap.Int("employee_id", employeeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load status"})
		return
	}

	resp := gin.H{"success": true, "checked_in": session != nil}
	if session != nil {
		resp["session"] = session
	}

	latStr, lonStr := c.Query("latitude"), c.Query("longitude")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid latitude or longitude"})
			return
		}
		resp["geofence"] = h.service.Locate(geo.Point{Latitude: lat, Longitude: lon})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) ListSessions(c *gin.Context) {
	employeeID, err := getAuthEmployeeID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return
	}

	sessions, err := h.service.History(c.Request.Context(), employeeID)
	if err != nil {
		utils.Error("Error loading session history", zap.Int("employee_id", employeeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

// RegisterAttendanceRoutes registers attendance routes; all require auth
func (h *AttendanceHandler) RegisterAttendanceRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	attendanceRoutes := rg.Group("/attendance")
	attendanceRoutes.Use(authMW)
	{
		attendanceRoutes.POST("/checkin", h.CheckIn)
		attendanceRoutes.POST("/checkout", h.CheckOut)
		attendanceRoutes.GET("/status", h.Status)
		attendanceRoutes.GET("/sessions", h.ListSessions)
	}
}
