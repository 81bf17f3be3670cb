package storage

import (
	"time"

	"github.com/google/uuid"
)

// Device is a single registry row. Temperature and BatteryLevel are nullable:
// not every device reports them.
type Device struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	IsOnline     bool     `json:"isOnline"`
	IsOn         bool     `json:"isOn"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	Temperature  *float64 `json:"temperature"`
	BatteryLevel *int     `json:"batteryLevel"`
}

// User is a credential row. The password is stored and compared in plaintext;
// this mirrors the documented contract of the service, not good practice.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Never expose in JSON
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)
