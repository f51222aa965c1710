package payment

import (
	"context"
	"errors"

	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

type NotifyOutcome string

const (
	NotifyRejected  NotifyOutcome = "rejected"
	NotifyNoOrder   NotifyOutcome = "no_order"
	NotifyApproved  NotifyOutcome = "approved"
	NotifyFailed    NotifyOutcome = "failed"
	NotifyIgnored   NotifyOutcome = "ignored"
	NotifyError     NotifyOutcome = "error"
	NotifyUnchanged NotifyOutcome = "unchanged"
)

// HandleNotification processes one gateway callback. It never fails: the
// gateway is always acknowledged and problems are logged instead. The
// returned outcome is informational.
func (s *Service) HandleNotification(ctx context.Context, token string, body []byte) NotifyOutcome {
	n, err := s.verifier.Verify(token, body)
	if err != nil {
		s.log.Warn("ipn rejected", "error", err, "bytes", len(body))
		return NotifyRejected
	}

	orderID := n.OrderID()
	if orderID == "" {
		s.log.Warn("ipn without order id", "status", n.Payment.Status)
		return NotifyNoOrder
	}
	log := s.log.With("orderID", orderID, "paymentStatus", n.Payment.Status)

	switch {
	case n.Approved():
		log.Info("ipn approved")
		res, err := s.Approve(ctx, orderID)
		if err != nil {
			log.Error("ipn approval failed", "error", err)
			return NotifyError
		}
		if res.Outcome == ApprovalNotFound {
			return NotifyNoOrder
		}
		return NotifyApproved

	case n.Failed():
		changed, err := s.store.MarkFailed(ctx, orderID)
		if err != nil {
			log.Error("ipn mark failed", "error", err)
			return NotifyError
		}
		if !changed {
			if _, err := s.store.Get(ctx, orderID); errors.Is(err, order.ErrNotFound) {
				log.Warn("ipn failure for unknown order")
				return NotifyNoOrder
			}
			log.Info("ipn failure ignored, order already approved")
			return NotifyUnchanged
		}
		log.Info("order marked failed")
		return NotifyFailed

	default:
		log.Info("ipn status ignored", "message", n.Payment.Message)
		return NotifyIgnored
	}
}
