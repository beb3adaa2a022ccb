package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is a step of the fulfilment workflow.
type Status string

const (
	StatusGenerated  Status = "generated"
	StatusInProgress Status = "in_progress"
	StatusInvoiced   Status = "invoiced"
	StatusSent       Status = "sent"
	StatusFinished   Status = "finished"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusGenerated, StatusInProgress, StatusInvoiced, StatusSent, StatusFinished, StatusCancelled,
}

func (s Status) Valid() bool {
	switch s {
	case StatusGenerated, StatusInProgress, StatusInvoiced, StatusSent, StatusFinished, StatusCancelled:
		return true
	}

	return false
}

// Label is the pt-BR text shown to users.
func (s Status) Label() string {
	switch s {
	case StatusGenerated:
		return "Pedido Gerado"
	case StatusInProgress:
		return "Em Separação"
	case StatusInvoiced:
		return "Faturado"
	case StatusSent:
		return "Em Rota de Entrega"
	case StatusFinished:
		return "Entregue"
	case StatusCancelled:
		return "Cancelado"
	}

	return string(s)
}

// Item is a product line frozen at checkout.
type Item struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is a client's purchase request.
//
// ClientName and SellerName are display snapshots taken when the id was set;
// they are not kept in sync with later renames.
type Order struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	ClientName   string
	SellerID     *uuid.UUID
	SellerName   string
	Items        []Item
	Total        decimal.Decimal
	Status       Status
	CancelReason string
	CreatedAt    time.Time
	ReceivedAt   *time.Time
	InvoicedAt   *time.Time
	UpdatedAt    *time.Time
	// Version is the optimistic concurrency token checked on every write.
	Version int
}

// Number is the short reference printed to clients.
func (o *Order) Number() string {
	return strings.ToUpper(o.ID.String()[:8])
}

// ItemsTotal sums the item subtotals. Total is only guaranteed to match at creation.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal)
	}

	return sum
}

func (o *Order) AssignedTo(sellerID uuid.UUID) bool {
	return o.SellerID != nil && *o.SellerID == sellerID
}
