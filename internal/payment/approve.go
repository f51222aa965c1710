package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeMC777/fitactive-checkout/internal/mailer"
	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

type EffectStatus string

const (
	EffectOK      EffectStatus = "ok"
	EffectWarning EffectStatus = "warning"
	EffectSkipped EffectStatus = "skipped"
)

// Effect records the outcome of a best-effort step of an approval.
type Effect struct {
	Name   string
	Status EffectStatus
	Err    error
}

type ApprovalOutcome string

const (
	ApprovalInvoiced        ApprovalOutcome = "invoiced"
	ApprovalAlreadyInvoiced ApprovalOutcome = "already_invoiced"
	ApprovalInProgress      ApprovalOutcome = "in_progress"
	ApprovalNotFound        ApprovalOutcome = "not_found"
)

type ApprovalResult struct {
	OrderID string
	Outcome ApprovalOutcome
	Invoice *order.Invoice
	Effects []Effect
}

// Effect returns the recorded effect with the given name.
func (r *ApprovalResult) Effect(name string) (Effect, bool) {
	for _, e := range r.Effects {
		if e.Name == name {
			return e, true
		}
	}
	return Effect{}, false
}

const (
	effectPDF   = "pdf"
	effectEmail = "email"
)

// Approve runs the approval side effect for orderID: mark approved, issue the
// invoice, fetch its PDF, email the customer. It is safe to call any number
// of times; only the caller that wins the invoicing claim talks to the
// invoicing provider. An error is returned only when the store or the
// invoicing provider fails, leaving the order approved without an invoice.
//
// The work outlives ctx: a caller hanging up after the provider issued an
// invoice must not leave it unrecorded.
func (s *Service) Approve(ctx context.Context, orderID string) (*ApprovalResult, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.approveTimeout)
	defer cancel()
	res := &ApprovalResult{OrderID: orderID}

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			s.log.Warn("approval for unknown order", "orderID", orderID)
			res.Outcome = ApprovalNotFound
			return res, nil
		}
		return nil, err
	}
	if o.HasInvoice() {
		s.issued.drop(orderID)
		s.log.Info("order already invoiced", "orderID", orderID, "invoice", o.Invoice.Series+"-"+o.Invoice.Number)
		res.Outcome = ApprovalAlreadyInvoiced
		res.Invoice = o.Invoice
		return res, nil
	}
	if inv, ok := s.issued.get(orderID); ok {
		return s.persistIssued(ctx, orderID, inv, res)
	}

	claimed, err := s.store.ClaimInvoicing(ctx, orderID, s.now().Add(-s.claimTTL))
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Either another delivery is invoicing right now or it just finished.
		current, err := s.store.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.HasInvoice() {
			res.Outcome = ApprovalAlreadyInvoiced
			res.Invoice = current.Invoice
		} else {
			s.log.Info("invoicing already in progress", "orderID", orderID)
			res.Outcome = ApprovalInProgress
		}
		return res, nil
	}
	s.log.Info("order approved", "orderID", orderID)

	inv, err := s.invoicer.CreateInvoice(ctx, o)
	if err != nil {
		if rerr := s.store.ReleaseInvoicing(ctx, orderID); rerr != nil {
			s.log.Error("releasing invoicing claim", "orderID", orderID, "error", rerr)
		}
		s.log.Error("invoice creation failed, order needs reconciliation", "orderID", orderID, "error", err)
		return nil, fmt.Errorf("creating invoice for order %s: %w", orderID, err)
	}
	res.Outcome = ApprovalInvoiced
	res.Invoice = inv

	if err := s.store.SetInvoice(ctx, orderID, *inv); err != nil {
		// The claim stays held and the invoice is remembered, so a replay
		// after the claim goes stale persists it rather than invoicing twice.
		s.issued.put(orderID, *inv)
		s.log.Error("persisting invoice, order needs reconciliation", "orderID", orderID, "invoice", inv.Series+"-"+inv.Number, "error", err)
		s.deliver(ctx, o, inv, res)
		return res, fmt.Errorf("persisting invoice for order %s: %w", orderID, err)
	}
	s.log.Info("invoice created", "orderID", orderID, "series", inv.Series, "number", inv.Number)

	s.deliver(ctx, o, inv, res)
	return res, nil
}

// persistIssued records an invoice issued by an earlier attempt whose store
// write failed. The customer was already emailed by that attempt.
func (s *Service) persistIssued(ctx context.Context, orderID string, inv order.Invoice, res *ApprovalResult) (*ApprovalResult, error) {
	err := s.store.SetInvoice(ctx, orderID, inv)
	switch {
	case err == nil:
		s.log.Info("issued invoice persisted", "orderID", orderID, "series", inv.Series, "number", inv.Number)
	case errors.Is(err, order.ErrInvoiceAlreadySet):
		s.log.Error("order carries a different invoice, needs reconciliation", "orderID", orderID, "issued", inv.Series+"-"+inv.Number)
	default:
		return nil, fmt.Errorf("persisting issued invoice for order %s: %w", orderID, err)
	}
	s.issued.drop(orderID)

	current, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res.Outcome = ApprovalAlreadyInvoiced
	res.Invoice = current.Invoice
	return res, nil
}

func (s *Service) deliver(ctx context.Context, o *order.Order, inv *order.Invoice, res *ApprovalResult) {
	pdf, eff := s.fetchPDF(ctx, inv)
	res.Effects = append(res.Effects, eff)
	res.Effects = append(res.Effects, s.sendEmail(ctx, o, inv, pdf))

	for _, e := range res.Effects {
		if e.Status == EffectWarning {
			s.log.Warn("approval effect failed", "orderID", o.OrderID, "effect", e.Name, "error", e.Err)
		}
	}
}

func (s *Service) fetchPDF(ctx context.Context, inv *order.Invoice) ([]byte, Effect) {
	if inv.PDFLink == "" {
		return nil, Effect{Name: effectPDF, Status: EffectSkipped}
	}
	pdf, err := s.invoicer.DownloadPDF(ctx, inv.PDFLink)
	if err != nil {
		return nil, Effect{Name: effectPDF, Status: EffectWarning, Err: err}
	}
	return pdf, Effect{Name: effectPDF, Status: EffectOK}
}

func (s *Service) sendEmail(ctx context.Context, o *order.Order, inv *order.Invoice, pdf []byte) Effect {
	if s.mailer == nil || o.Billing.Email == "" {
		return Effect{Name: effectEmail, Status: EffectSkipped}
	}
	err := s.mailer.SendInvoice(ctx, mailer.InvoiceEmail{
		To:     o.Billing.Email,
		Series: inv.Series,
		Number: inv.Number,
		PDF:    pdf,
	})
	if err != nil {
		return Effect{Name: effectEmail, Status: EffectWarning, Err: err}
	}
	return Effect{Name: effectEmail, Status: EffectOK}
}
