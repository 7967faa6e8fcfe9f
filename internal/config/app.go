package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"attendance_tracker/internal/geo"
)

// GeofenceConfig is the fixed workplace boundary attendance is checked against.
type GeofenceConfig struct {
	Workplace    geo.Point
	RadiusMeters float64
}

// LoadGeofenceConfig loads the workplace coordinate and radius from
// environment variables.
func LoadGeofenceConfig() (*GeofenceConfig, error) {
	latStr := os.Getenv("WORKPLACE_LAT")
	lonStr := os.Getenv("WORKPLACE_LON")
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("workplace environment variables not set (WORKPLACE_LAT, WORKPLACE_LON)")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKPLACE_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKPLACE_LON: %w", err)
	}

	radius := 200.0
	if radiusStr := os.Getenv("GEOFENCE_RADIUS_M"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			return nil, fmt.Errorf("invalid GEOFENCE_RADIUS_M: %q", radiusStr)
		}
	}

	return &GeofenceConfig{
		Workplace:    geo.Point{Latitude: lat, Longitude: lon},
		RadiusMeters: radius,
	}, nil
}

// OTPConfig controls challenge issuance.
type OTPConfig struct {
	TTL time.Duration
	// DebugResponse echoes the generated code in the HTTP response.
	// Development shortcut only; every use is logged.
	DebugResponse bool
}

// LoadOTPConfig loads OTP settings from environment variables.
func LoadOTPConfig() *OTPConfig {
	ttl := 5 * time.Minute
	if ttlStr := os.Getenv("OTP_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	debug, _ := strconv.ParseBool(os.Getenv("OTP_DEBUG_RESPONSE"))

	return &OTPConfig{TTL: ttl, DebugResponse: debug}
}
