package service

import (
	"context"
	"io"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/export"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrStatusTransition = errors.New("order status change not allowed")
)

// transitions lists the statuses each status may move to. Delivered and
// cancelled orders are final.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService handles order business logic
type OrderService struct {
	repo repository.OrderRepository
}

// NewOrderService creates a new order service
func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// ListOrders returns orders newest first, optionally narrowed by status.
func (s *OrderService) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.GetAll(ctx, models.OrderFilter{Status: status})
}

// MyOrders returns the orders placed by a signed-in customer.
func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.repo.GetAll(ctx, models.OrderFilter{UserID: userID})
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves an order along its lifecycle and returns the result.
// Cancelling puts the order's products back on sale.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if !CanTransition(order.Status, status) {
		return nil, errors.Wrapf(ErrStatusTransition, "%s to %s", order.Status, status)
	}

	err = s.repo.UpdateStatus(ctx, id, order.Status, status)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, errors.Wrapf(ErrStatusTransition, "%s changed concurrently", id)
	}
	if err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// Export writes the orders with the given status (all when empty) as a
// spreadsheet.
func (s *OrderService) Export(ctx context.Context, w io.Writer, status models.OrderStatus) error {
	orders, err := s.ListOrders(ctx, status)
	if err != nil {
		return err
	}
	return export.WriteOrders(w, orders)
}
