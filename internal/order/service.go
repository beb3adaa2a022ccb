package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	// SaveOrder persists the mutable fields of o only if the stored version
	// still equals o.Version, and increments o.Version on success. A lost race
	// returns apperr.ErrConflict.
	SaveOrder(ctx context.Context, o *Order) error
	DeleteAllOrders(ctx context.Context) (int64, error)
}

// Notifier receives the alert records produced by transitions.
type Notifier interface {
	Create(ctx context.Context, n *notification.Notification) error
}

// Directory resolves user ids to their public profile.
type Directory interface {
	Profile(ctx context.Context, id uuid.UUID) (identity.Profile, error)
}

// Catalog resolves the products a client puts in the cart.
type Catalog interface {
	Lookup(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type Service struct {
	repo        Repository
	notifier    Notifier
	directory   Directory
	catalog     Catalog
	now         func() time.Time
	freshWindow time.Duration
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFreshWindow sets how recent a re-authentication must be for PurgeAll.
func WithFreshWindow(d time.Duration) Option {
	return func(s *Service) { s.freshWindow = d }
}

func NewService(repo Repository, notifier Notifier, directory Directory, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		notifier:    notifier,
		directory:   directory,
		catalog:     catalog,
		now:         time.Now,
		freshWindow: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type ItemParams struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateParams struct {
	Items []ItemParams
	// SellerID optionally names the seller the client prefers.
	SellerID *uuid.UUID
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
	SellerID *uuid.UUID
	// VisibleToSeller restricts the result to orders assigned to that seller
	// or not assigned to anybody yet.
	VisibleToSeller *uuid.UUID
	From            *time.Time
	To              *time.Time
}

// Create checks out a client's cart. Prices and descriptions are copied from
// the catalog so later price changes do not alter the order.
func (s *Service) Create(ctx context.Context, caller identity.Caller, params CreateParams) (*Order, error) {
	if caller.Role != identity.RoleClient {
		return nil, fmt.Errorf("only clients place orders: %w", apperr.ErrForbidden)
	}

	if len(params.Items) == 0 {
		return nil, apperr.Invalid("items", "at least one item is required")
	}

	o := &Order{
		ClientID:   caller.ID,
		ClientName: caller.Name,
		Status:     StatusGenerated,
		CreatedAt:  s.now(),
		Items:      make([]Item, 0, len(params.Items)),
	}

	for i, p := range params.Items {
		if p.Quantity <= 0 {
			return nil, apperr.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}

		product, err := s.catalog.Lookup(ctx, p.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolving item %d: %w", i, err)
		}

		qty := decimal.NewFromInt(int64(p.Quantity))
		o.Items = append(o.Items, Item{
			ProductID:   product.ID,
			Description: product.Description,
			Quantity:    p.Quantity,
			UnitPrice:   product.UnitPrice,
			Subtotal:    product.UnitPrice.Mul(qty),
		})
	}

	o.Total = o.ItemsTotal()

	if params.SellerID != nil {
		seller, err := s.seller(ctx, *params.SellerID)
		if err != nil {
			return nil, err
		}

		o.SellerID = &seller.ID
		o.SellerName = seller.Name
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	slog.Info("order created", "order_id", o.ID, "client_id", o.ClientID, "total", o.Total.StringFixed(2))

	return o, nil
}

// Get returns an order the caller is allowed to see. Orders outside the
// caller's scope are reported as not found.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !visible(caller, o) {
		return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}

	return o, nil
}

// List narrows filter to the caller's scope: clients see their own orders,
// sellers their own plus unassigned ones, managers everything.
func (s *Service) List(ctx context.Context, caller identity.Caller, filter ListFilter) ([]*Order, error) {
	switch caller.Role {
	case identity.RoleManager:
	case identity.RoleSeller:
		filter.VisibleToSeller = &caller.ID
	case identity.RoleClient:
		filter.ClientID = &caller.ID
	default:
		return nil, apperr.ErrForbidden
	}

	return s.repo.ListOrders(ctx, filter)
}

// StartProcessing moves a generated order into separation.
func (s *Service) StartProcessing(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, caller, id, StatusInProgress, func(o *Order, now time.Time) {
		if o.ReceivedAt == nil {
			o.ReceivedAt = &now
		}
	})
}

// MarkInvoiced is allowed straight from generated; in that case the order is
// also stamped as received so the SLA has a starting point.
func (s *Service) MarkInvoiced(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, caller, id, StatusInvoiced, func(o *Order, now time.Time) {
		if o.ReceivedAt == nil {
			o.ReceivedAt = &now
		}

		if o.InvoicedAt == nil {
			o.InvoicedAt = &now
		}
	})
}

// MarkSent dispatches an order that is in separation or invoiced.
func (s *Service) MarkSent(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Order, error) {
	return s.transition(ctx, caller, id, StatusSent, nil)
}

// Finish closes a delivered order. Managers only.
func (s *Service) Finish(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Order, error) {
	if !caller.IsManager() {
		return nil, fmt.Errorf("finishing orders: %w", apperr.ErrForbidden)
	}

	return s.transition(ctx, caller, id, StatusFinished, nil)
}

// Cancel requires a non-blank reason, checked before anything is read.
func (s *Service) Cancel(ctx context.Context, caller identity.Caller, id uuid.UUID, reason string) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Invalid("reason", "required")
	}

	return s.transition(ctx, caller, id, StatusCancelled, func(o *Order, _ time.Time) {
		o.CancelReason = reason
	})
}

// ReassignSeller hands a non-terminal order to another seller. Managers only;
// no notification is sent.
func (s *Service) ReassignSeller(ctx context.Context, caller identity.Caller, id, sellerID uuid.UUID) (*Order, error) {
	if !caller.IsManager() {
		return nil, fmt.Errorf("reassigning orders: %w", apperr.ErrForbidden)
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot reassign a %s order", apperr.ErrInvalidTransition, o.Status)
	}

	seller, err := s.seller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	next := *o
	next.SellerID = &seller.ID
	next.SellerName = seller.Name

	if err := s.repo.SaveOrder(ctx, &next); err != nil {
		return nil, fmt.Errorf("reassigning order %s: %w", id, err)
	}

	slog.Info("order reassigned", "order_id", id, "seller_id", seller.ID, "by", caller.ID)

	return &next, nil
}

// PurgeAll deletes every order. It is irreversible, so the manager must have
// re-authenticated recently.
func (s *Service) PurgeAll(ctx context.Context, caller identity.Caller) (int64, error) {
	if !caller.IsManager() {
		return 0, fmt.Errorf("purging orders: %w", apperr.ErrForbidden)
	}

	if !caller.Fresh(s.now(), s.freshWindow) {
		return 0, fmt.Errorf("purging orders: %w", apperr.ErrReauthRequired)
	}

	n, err := s.repo.DeleteAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging orders: %w", err)
	}

	slog.Warn("all orders purged", "count", n, "by", caller.ID)

	return n, nil
}

// transition validates and applies one workflow step. The order is copied
// before mutate runs, so a failed write never leaks a half-applied state.
// A seller moving an unassigned order becomes its seller, whatever the step.
func (s *Service) transition(
	ctx context.Context,
	caller identity.Caller,
	id uuid.UUID,
	to Status,
	mutate func(o *Order, now time.Time),
) (*Order, error) {
	if !caller.CanOperateOrders() {
		return nil, fmt.Errorf("moving order to %s: %w", to, apperr.ErrForbidden)
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.Role == identity.RoleSeller && o.SellerID != nil && !o.AssignedTo(caller.ID) {
		return nil, fmt.Errorf("order %s belongs to another seller: %w", o.Number(), apperr.ErrForbidden)
	}

	if !CanTransition(o.Status, to) {
		return nil, apperr.Transition(string(o.Status), string(to))
	}

	now := s.now()
	next := *o
	next.Status = to

	if next.SellerID == nil && caller.Role == identity.RoleSeller {
		next.SellerID = &caller.ID
		next.SellerName = caller.Name
	}

	if mutate != nil {
		mutate(&next, now)
	}

	if err := s.repo.SaveOrder(ctx, &next); err != nil {
		return nil, fmt.Errorf("moving order %s to %s: %w", o.Number(), to, err)
	}

	slog.Info("order status changed", "order_id", id, "from", o.Status, "to", to, "by", caller.ID)

	s.notify(ctx, &next)

	return &next, nil
}

// notify is best effort: a failure is logged and the transition stands.
func (s *Service) notify(ctx context.Context, o *Order) {
	n := noticeFor(o)
	if n == nil {
		return
	}

	if err := s.notifier.Create(ctx, n); err != nil {
		slog.Warn("failed to emit order notification", "order_id", o.ID, "status", o.Status, "error", err)
	}
}

func noticeFor(o *Order) *notification.Notification {
	n := &notification.Notification{
		RecipientID: o.ClientID,
		OrderID:     o.ID,
		Type:        notification.TypeOrderStatus,
	}

	num := o.Number()

	switch o.Status {
	case StatusInProgress:
		n.Title = "Pedido Recebido"
		n.Message = fmt.Sprintf("Seu pedido #%s foi recebido e está em separação.", num)
	case StatusInvoiced:
		n.Title = "Pedido Faturado"
		n.Message = fmt.Sprintf("Seu pedido #%s foi faturado.", num)
	case StatusSent:
		n.Title = "Rota de Entrega"
		n.Message = fmt.Sprintf("Seu pedido #%s saiu para entrega.", num)
	case StatusFinished:
		n.Title = "Pedido Entregue"
		n.Message = fmt.Sprintf("Seu pedido #%s foi entregue. Obrigado pela preferência!", num)
	case StatusCancelled:
		n.Type = notification.TypeOrderCancelled
		n.Title = "Pedido Cancelado"
		n.Message = fmt.Sprintf("Seu pedido #%s foi cancelado. Motivo: %s", num, o.CancelReason)
	default:
		return nil
	}

	return n
}

func (s *Service) seller(ctx context.Context, id uuid.UUID) (identity.Profile, error) {
	p, err := s.directory.Profile(ctx, id)
	if err != nil {
		return identity.Profile{}, fmt.Errorf("looking up seller: %w", err)
	}

	if p.Role != identity.RoleSeller {
		return identity.Profile{}, apperr.Invalid("seller_id", "user is not a seller")
	}

	return p, nil
}

func visible(caller identity.Caller, o *Order) bool {
	switch caller.Role {
	case identity.RoleManager:
		return true
	case identity.RoleSeller:
		return o.SellerID == nil || o.AssignedTo(caller.ID)
	case identity.RoleClient:
		return o.ClientID == caller.ID
	}

	return false
}
