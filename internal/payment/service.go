// Package payment drives the order lifecycle: checkout initiation, gateway
// notifications and the invoice + email side effect of an approved payment.
package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeMC777/fitactive-checkout/internal/mailer"
	"github.com/MikeMC777/fitactive-checkout/internal/netopia"
	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

type Gateway interface {
	StartPayment(ctx context.Context, req *order.StartPaymentRequest) (*netopia.StartResponse, error)
}

type NotificationVerifier interface {
	Verify(token string, body []byte) (*netopia.Notification, error)
}

type Invoicer interface {
	CreateInvoice(ctx context.Context, o *order.Order) (*order.Invoice, error)
	DownloadPDF(ctx context.Context, link string) ([]byte, error)
}

type Mailer interface {
	SendInvoice(ctx context.Context, e mailer.InvoiceEmail) error
}

type Service struct {
	store    order.Repository
	gateway  Gateway
	verifier NotificationVerifier
	invoicer Invoicer
	mailer   Mailer
	log      *slog.Logger

	claimTTL       time.Duration
	approveTimeout time.Duration
	now            func() time.Time

	issued issuedInvoices
}

// issuedInvoices holds invoices the provider issued but the store failed to
// record. A retried approval persists these instead of invoicing again.
type issuedInvoices struct {
	mu sync.Mutex
	m  map[string]order.Invoice
}

func (i *issuedInvoices) put(orderID string, inv order.Invoice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.m == nil {
		i.m = make(map[string]order.Invoice)
	}
	i.m[orderID] = inv
}

func (i *issuedInvoices) get(orderID string) (order.Invoice, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	inv, ok := i.m[orderID]
	return inv, ok
}

func (i *issuedInvoices) drop(orderID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.m, orderID)
}

type Option func(*Service)

// WithClaimTTL bounds how long an interrupted invoicing attempt blocks retries.
func WithClaimTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.claimTTL = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store order.Repository, gateway Gateway, verifier NotificationVerifier,
	invoicer Invoicer, m Mailer, opts ...Option) *Service {
	s := &Service{
		store:          store,
		gateway:        gateway,
		verifier:       verifier,
		invoicer:       invoicer,
		mailer:         m,
		log:            slog.Default(),
		claimTTL:       2 * time.Minute,
		approveTimeout: 90 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
