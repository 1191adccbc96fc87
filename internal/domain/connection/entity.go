package connection

import (
	"time"
)

// Status is the lifecycle state of a WhatsApp session against the bridge.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusConnecting   Status = "connecting" // QR pending
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Connection represents the whatsapp_sessions table: one row per logical
// WhatsApp number. Token is the bridge-issued credential required for all
// further bridge calls; QRCode is a short-lived pairing artifact overwritten
// on every refresh.
type Connection struct {
	SessionName string    `json:"session_name" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id"`
	Status      Status    `json:"status"`
	Token       string    `json:"-"`
	QRCode      string    `json:"qr_code"`
	LastError   string    `json:"last_error"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Connection) TableName() string {
	return "whatsapp_sessions"
}
