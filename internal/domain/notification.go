package domain

import "time"

// Notification is a feed entry shown in the in-app list. It is a local
// record, distinct from the platform-level scheduled notification.
type Notification struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	Data         map[string]any `json:"data,omitempty"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Read         bool           `json:"read"`
}

// Payload is the displayable content handed to the scheduler.
type Payload struct {
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data,omitempty"`
	Sound      bool           `json:"sound"`
	CategoryID string         `json:"categoryId,omitempty"`
}

// ChannelType is the delivery channel kind.
type ChannelType string

const (
	ChannelPush  ChannelType = "push"
	ChannelInApp ChannelType = "in_app"
)

// Channel is a registered delivery channel. Local channels carry no
// external address and are always verified.
type Channel struct {
	ID          string         `json:"id"`
	Type        ChannelType    `json:"channel_type"`
	Address     string         `json:"channel_address"`
	Preferences map[string]any `json:"preferences,omitempty"`
	IsVerified  bool           `json:"is_verified"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DeliveryStatus records the outcome of handing a feed entry to the scheduler.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryRecord is the per-entry delivery outcome kept in storage.
type DeliveryRecord struct {
	Status      DeliveryStatus `json:"status"`
	DeliveredAt time.Time      `json:"delivered_at"`
}
