package payment

import (
	"context"
	"errors"

	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

// OrderStatus reports the current state of an order. Unknown ids yield
// order.StatusNotFound rather than an error.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (order.StatusResponse, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.StatusResponse{Status: order.StatusNotFound}, nil
		}
		return order.StatusResponse{}, err
	}
	return order.StatusResponse{Status: o.Status, Invoice: o.Invoice}, nil
}

// Ping reports whether the order store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
