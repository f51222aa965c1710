// Package netopia talks to the NETOPIA Payments card API: it starts hosted
// card payments and verifies the instant payment notifications (IPN) the
// gateway posts back.
package netopia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

var ErrUnexpectedResponse = errors.New("netopia: unexpected start payment response")

// Gateway payment status codes.
const (
	StatusOpened    = 1
	StatusFailed    = 2
	StatusPaid      = 3
	StatusConfirmed = 5
)

const (
	countryRomania     = 642
	defaultDescription = "FitActive presale"
	defaultPostalCode  = "000000"
)

type Config struct {
	APIBase      string
	APIKey       string
	POSSignature string
	NotifyURL    string
	// ReturnBase and RedirectPath form the browser return URL.
	ReturnBase   string
	RedirectPath string
	Timeout      time.Duration
}

type Client struct {
	HTTP *http.Client
	cfg  Config
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		cfg:  cfg,
	}
}

type startRequest struct {
	Config  startConfig  `json:"config"`
	Payment startPayment `json:"payment"`
	Order   startOrder   `json:"order"`
}

type startConfig struct {
	NotifyURL   string `json:"notifyUrl"`
	RedirectURL string `json:"redirectUrl"`
	Language    string `json:"language"`
}

type startPayment struct {
	Options struct {
		Installments int `json:"installments"`
	} `json:"options"`
	Instrument struct {
		Type string `json:"type"`
	} `json:"instrument"`
}

type startOrder struct {
	POSSignature string         `json:"posSignature"`
	DateTime     string         `json:"dateTime"`
	Description  string         `json:"description"`
	OrderID      string         `json:"orderID"`
	Amount       json.Number    `json:"amount"`
	Currency     string         `json:"currency"`
	Billing      startBilling   `json:"billing"`
	Products     []startProduct `json:"products"`
}

type startProduct struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
	VAT   int         `json:"vat"`
}

// number renders money as a JSON number with two decimals.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type startBilling struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	City        string `json:"city"`
	Country     int    `json:"country"`
	CountryName string `json:"countryName"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Details     string `json:"details"`
}

// StartResponse is the subset of the start payment answer the checkout reads.
type StartResponse struct {
	CustomerAction *struct {
		URL string `json:"url"`
	} `json:"customerAction,omitempty"`
	Payment *struct {
		Status     int    `json:"status"`
		PaymentURL string `json:"paymentURL"`
		NtpID      string `json:"ntpID"`
	} `json:"payment,omitempty"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeRedirect
	OutcomeApproved
)

// Classify maps the gateway answer to what the browser must do next and,
// for redirects, the URL it must open.
func (r *StartResponse) Classify() (Outcome, string) {
	if r.CustomerAction != nil && r.CustomerAction.URL != "" {
		return OutcomeRedirect, r.CustomerAction.URL
	}
	var code, msg string
	if r.Error != nil {
		code, msg = r.Error.Code, r.Error.Message
	}
	if r.Payment != nil {
		if r.Payment.PaymentURL != "" && (code == "101" || r.Payment.Status == StatusOpened) {
			return OutcomeRedirect, r.Payment.PaymentURL
		}
		if r.Payment.Status == StatusPaid && (code == "00" || msg == "Approved") {
			return OutcomeApproved, ""
		}
	}
	return OutcomeUnknown, ""
}

// StartPayment registers the order with the gateway.
func (c *Client) StartPayment(ctx context.Context, req *order.StartPaymentRequest) (*StartResponse, error) {
	body, err := json.Marshal(c.buildStart(req, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("encoding start payment: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.APIBase, "/") + "/payment/card/start"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.cfg.APIKey)

	slog.Info("netopia start payment", "orderID", req.Order.OrderID, "amount", req.Order.Amount.String())

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling netopia: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading netopia response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		switch res.StatusCode {
		case http.StatusUnauthorized:
			slog.Error("netopia rejected credentials", "status", res.StatusCode)
		case http.StatusBadRequest:
			slog.Warn("netopia rejected payment data", "status", res.StatusCode, "body", string(raw))
		}
		return nil, fmt.Errorf("netopia start payment: %s: %w", res.Status, ErrUnexpectedResponse)
	}

	var out StartResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding netopia response: %w", err)
	}
	return &out, nil
}

func (c *Client) buildStart(req *order.StartPaymentRequest, now time.Time) startRequest {
	o, b := req.Order, req.Billing

	description := o.Description
	if description == "" {
		description = defaultDescription
	}
	currency := o.Currency
	if currency == "" {
		currency = order.Currency
	}
	state := b.State
	if state == "" {
		state = b.City
	}
	postal := b.PostalCode
	if postal == "" {
		postal = defaultPostalCode
	}
	details := b.Details
	if details == "" {
		details = b.Address
	}
	products := make([]startProduct, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, startProduct{Name: p.Name, Price: number(p.Price), VAT: p.VAT})
	}

	var sr startRequest
	sr.Config = startConfig{
		NotifyURL:   c.cfg.NotifyURL,
		RedirectURL: c.ReturnURL(o.OrderID),
		Language:    "ro",
	}
	sr.Payment.Options.Installments = 1
	sr.Payment.Instrument.Type = "card"
	sr.Order = startOrder{
		POSSignature: c.cfg.POSSignature,
		DateTime:     now.UTC().Format(time.RFC3339),
		Description:  description,
		OrderID:      o.OrderID,
		Amount:       number(o.Amount),
		Currency:     currency,
		Billing: startBilling{
			Email:       b.Email,
			Phone:       b.Phone,
			FirstName:   b.FirstName,
			LastName:    b.LastName,
			City:        b.City,
			Country:     countryRomania,
			CountryName: "Romania",
			State:       state,
			PostalCode:  postal,
			Details:     details,
		},
		Products: products,
	}
	return sr
}

// ReturnURL is where the hosted page sends the browser back to.
func (c *Client) ReturnURL(orderID string) string {
	return fmt.Sprintf("%s/%s?order=%s",
		strings.TrimRight(c.cfg.ReturnBase, "/"),
		strings.TrimLeft(c.cfg.RedirectPath, "/"),
		url.QueryEscape(orderID))
}
