package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeMC777/fitactive-checkout/internal/netopia"
	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

var ErrGateway = errors.New("payment could not be initiated")

type StartResult struct {
	// RedirectURL is set when the customer must continue on the gateway page.
	RedirectURL string
	// Approved is set when the gateway settled the payment synchronously.
	Approved bool
	Approval *ApprovalResult
}

// Start validates a checkout, persists it as pending and asks the gateway to
// start the payment. Validation failures return order.ValidationErrors and
// write nothing. Gateway failures return ErrGateway and leave the order
// pending so a later notification can still settle it.
func (s *Service) Start(ctx context.Context, req *order.StartPaymentRequest) (*StartResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := req.ToOrder()
	if err := s.store.Upsert(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order saved", "orderID", o.OrderID, "amount", o.Amount.String())

	res, err := s.gateway.StartPayment(ctx, req)
	if err != nil {
		s.log.Error("gateway start failed", "orderID", o.OrderID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	outcome, redirect := res.Classify()
	switch outcome {
	case netopia.OutcomeRedirect:
		s.log.Info("payment redirect url generated", "orderID", o.OrderID)
		return &StartResult{RedirectURL: redirect}, nil

	case netopia.OutcomeApproved:
		s.log.Info("payment immediately approved", "orderID", o.OrderID)
		approval, err := s.Approve(ctx, o.OrderID)
		if err != nil {
			// The payment itself succeeded; invoicing is reconciled separately.
			s.log.Error("approval side effect failed", "orderID", o.OrderID, "error", err)
		}
		return &StartResult{Approved: true, Approval: approval}, nil

	default:
		s.log.Warn("payment could not be initiated", "orderID", o.OrderID)
		return nil, fmt.Errorf("%w: unable to generate payment url", ErrGateway)
	}
}
