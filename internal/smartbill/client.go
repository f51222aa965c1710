// Package smartbill issues invoices through the SmartBill cloud API.
package smartbill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeMC777/fitactive-checkout/internal/order"
)

var ErrInvalidInvoice = errors.New("smartbill: invoice response without series or number")

const (
	maxPDFSize = 10 << 20
	mentions   = "Abonamentul începe la data deschiderii sălii. Posibilitate răscumpărare într-o sală existentă."
)

type Config struct {
	APIBase     string
	Email       string
	Token       string
	VATCode     string
	Series      string
	ProductName string
	TaxPercent  int
	Timeout     time.Duration
}

type Client struct {
	HTTP *http.Client
	cfg  Config
	now  func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		cfg:  cfg,
		now:  time.Now,
	}
}

type invoiceRequest struct {
	CompanyVATCode string    `json:"companyVatCode"`
	SeriesName     string    `json:"seriesName"`
	IsDraft        bool      `json:"isDraft"`
	IssueDate      string    `json:"issueDate"`
	DueDate        string    `json:"dueDate"`
	Client         client    `json:"client"`
	Products       []product `json:"products"`
	Mentions       string    `json:"mentions"`
}

type client struct {
	Name    string `json:"name"`
	VATCode string `json:"vatCode"`
	RegCom  string `json:"regCom"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Email   string `json:"email"`
}

type product struct {
	Name              string      `json:"name"`
	MeasuringUnitName string      `json:"measuringUnitName"`
	Currency          string      `json:"currency"`
	Quantity          int         `json:"quantity"`
	Price             json.Number `json:"price"`
	IsTaxIncluded     bool        `json:"isTaxIncluded"`
	TaxName           string      `json:"taxName"`
	TaxPercentage     int         `json:"taxPercentage"`
	IsService         bool        `json:"isService"`
	SaveToDB          bool        `json:"saveToDb"`
}

type invoiceResponse struct {
	Series    string `json:"series"`
	Number    string `json:"number"`
	PDFLink   string `json:"pdfLink"`
	URL       string `json:"url"`
	ErrorText string `json:"errorText"`
	Message   string `json:"message"`
}

// CreateInvoice issues a paid invoice for the order amount, addressed to the
// company when one was given and to the billing contact otherwise.
func (c *Client) CreateInvoice(ctx context.Context, o *order.Order) (*order.Invoice, error) {
	body, err := json.Marshal(c.buildInvoice(o))
	if err != nil {
		return nil, fmt.Errorf("encoding invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/sales/invoices"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.Email, c.cfg.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling smartbill: %w", err)
	}
	defer res.Body.Close()

	var out invoiceResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out); err != nil && res.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("decoding smartbill response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("smartbill create invoice: %s %s", res.Status, firstNonEmpty(out.ErrorText, out.Message))
	}
	if out.ErrorText != "" {
		return nil, fmt.Errorf("smartbill create invoice: %s", out.ErrorText)
	}
	if out.Series == "" || out.Number == "" {
		return nil, ErrInvalidInvoice
	}

	return &order.Invoice{
		Series:  out.Series,
		Number:  out.Number,
		PDFLink: firstNonEmpty(out.PDFLink, out.URL),
	}, nil
}

// DownloadPDF fetches the invoice document behind link.
func (c *Client) DownloadPDF(ctx context.Context, link string) ([]byte, error) {
	if link == "" {
		return nil, errors.New("no pdf link provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.Token)
	req.Header.Set("Accept", "application/octet-stream")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for invoice pdf", res.StatusCode)
	}

	pdf, err := io.ReadAll(io.LimitReader(res.Body, maxPDFSize))
	if err != nil {
		return nil, fmt.Errorf("reading invoice pdf: %w", err)
	}
	return pdf, nil
}

func (c *Client) buildInvoice(o *order.Order) invoiceRequest {
	today := c.now().Format("2006-01-02")

	cl := client{
		Name:    o.Billing.FullName(),
		Address: o.Billing.Street(),
		City:    o.Billing.City,
		Country: "Romania",
		Email:   o.Billing.Email,
	}
	if co := o.Company; co != nil {
		if co.Name != "" {
			cl.Name = co.Name
		}
		cl.VATCode = co.VATCode
		cl.RegCom = co.RegCom
		if co.Address != "" {
			cl.Address = co.Address
		}
	}

	currency := o.Currency
	if currency == "" {
		currency = order.Currency
	}

	return invoiceRequest{
		CompanyVATCode: c.cfg.VATCode,
		SeriesName:     c.cfg.Series,
		IssueDate:      today,
		DueDate:        today,
		Client:         cl,
		Products: []product{{
			Name:              c.cfg.ProductName,
			MeasuringUnitName: "buc",
			Currency:          currency,
			Quantity:          1,
			Price:             json.Number(o.Amount.StringFixed(2)),
			IsTaxIncluded:     true,
			TaxName:           "Normala",
			TaxPercentage:     c.cfg.TaxPercent,
			IsService:         true,
		}},
		Mentions: mentions,
	}
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.APIBase, "/") + path
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
