package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is an item that clients can put in their cart.
type Product struct {
	ID          uuid.UUID
	Code        string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
