package domain

import "time"

// Notification is an in-app message. Admin alerts use the AdminRecipient user id.
type Notification struct {
	ID         int32             `json:"id"`
	UserID     string            `json:"user_id"`
	BookingID  *int32            `json:"booking_id,omitempty"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}

// AdminRecipient addresses a notification to every admin.
const AdminRecipient = "admin"
