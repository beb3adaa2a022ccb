package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

type orderResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	SellerID     *uuid.UUID      `json:"seller_id,omitempty"`
	SellerName   string          `json:"seller_name,omitempty"`
	Items        []order.Item    `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Status       order.Status    `json:"status"`
	StatusLabel  string          `json:"status_label"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ReceivedAt   *time.Time      `json:"received_at,omitempty"`
	InvoicedAt   *time.Time      `json:"invoiced_at,omitempty"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
	Version      int             `json:"version"`
	SLA          *slaResponse    `json:"sla,omitempty"`
}

type slaResponse struct {
	ElapsedSeconds int64           `json:"elapsed_seconds"`
	Bucket         order.SLABucket `json:"bucket"`
}

func toResponse(o *order.Order, now time.Time) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		Number:       o.Number(),
		ClientID:     o.ClientID,
		ClientName:   o.ClientName,
		SellerID:     o.SellerID,
		SellerName:   o.SellerName,
		Items:        o.Items,
		Total:        o.Total,
		Status:       o.Status,
		StatusLabel:  o.Status.Label(),
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		ReceivedAt:   o.ReceivedAt,
		InvoicedAt:   o.InvoicedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}

	if resp.Items == nil {
		resp.Items = []order.Item{}
	}

	if elapsed, bucket, ok := o.SLA(now); ok {
		resp.SLA = &slaResponse{ElapsedSeconds: int64(elapsed / time.Second), Bucket: bucket}
	}

	return resp
}

func toResponseList(orders []*order.Order, now time.Time) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o, now)
	}

	return resp
}
