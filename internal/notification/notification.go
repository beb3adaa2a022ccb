package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeOrderStatus    Type = "order_status"
	TypeOrderCancelled Type = "order_cancelled"
)

// Notification is a user-facing alert created when one of the user's orders changes.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	OrderID     uuid.UUID
	Type        Type
	Title       string
	Message     string
	Read        bool
	CreatedAt   time.Time
}
