package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the presale accepts.
const Currency = "RON"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFailed   Status = "failed"

	// StatusNotFound is never stored; status queries report it for unknown IDs.
	StatusNotFound Status = "not_found"
)

// Terminal reports whether polling clients can stop.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusFailed
}

type Order struct {
	OrderID   string          `json:"orderID"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    Status          `json:"status"`
	Billing   Billing         `json:"billing"`
	Company   *Company        `json:"company,omitempty"`
	Invoice   *Invoice        `json:"invoice,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// HasInvoice is true once series and number were persisted.
func (o *Order) HasInvoice() bool {
	return o.Invoice != nil && o.Invoice.Series != "" && o.Invoice.Number != ""
}

type Billing struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Address    string `json:"address,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Details    string `json:"details,omitempty"`
}

// FullName is the invoice client name for individuals.
func (b Billing) FullName() string {
	return b.LastName + " " + b.FirstName
}

// Street prefers the free-form details line over the address field.
func (b Billing) Street() string {
	if b.Details != "" {
		return b.Details
	}
	return b.Address
}

type Company struct {
	Name    string `json:"name,omitempty"`
	VATCode string `json:"vatCode,omitempty"`
	RegCom  string `json:"regCom,omitempty"`
	Address string `json:"address,omitempty"`
}

type Invoice struct {
	Series  string `json:"series"`
	Number  string `json:"number"`
	PDFLink string `json:"pdfLink,omitempty"`
}
