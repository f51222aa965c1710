package order

import "github.com/shopspring/decimal"

// Product line forwarded to the payment gateway.
// swagger:model Product
type Product struct {
	Name  string          `json:"name"  example:"Abonament All Inclusive"`
	Price decimal.Decimal `json:"price" swaggertype:"number" example:"1448.80"`
	VAT   int             `json:"vat"   example:"19"`
}

// OrderInput is the order part of a checkout submission.
// swagger:model OrderInput
type OrderInput struct {
	OrderID     string          `json:"orderID"     validate:"required"            example:"FA-1700000000000"`
	Amount      decimal.Decimal `json:"amount"      swaggertype:"number"           example:"1448.80"`
	Currency    string          `json:"currency"    validate:"omitempty,eq=RON"    example:"RON"`
	Description string          `json:"description"                                example:"FitActive presale"`
	Products    []Product       `json:"products,omitempty"`
}

// BillingInput is the contact part of a checkout submission.
// swagger:model BillingInput
type BillingInput struct {
	FirstName  string `json:"firstName"  validate:"required"                example:"Ion"`
	LastName   string `json:"lastName"   validate:"required"                example:"Popescu"`
	Email      string `json:"email"      validate:"required,checkout_email" example:"ion.popescu@example.com"`
	Phone      string `json:"phone"      validate:"required,ro_phone"       example:"0723456789"`
	City       string `json:"city"       validate:"required"                example:"Bucuresti"`
	Address    string `json:"address,omitempty"                             example:"Calea Vitan 1"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Details    string `json:"details,omitempty"`
}

// CompanyInput is the optional business part of a checkout submission.
// swagger:model CompanyInput
type CompanyInput struct {
	Name    string `json:"name,omitempty"    example:"Open Sky SRL"`
	VATCode string `json:"vatCode,omitempty" example:"RO12345678"`
	RegCom  string `json:"regCom,omitempty"  example:"J40/123/2020"`
	Address string `json:"address,omitempty"`
}

// StartPaymentRequest payload of POST /payments/start.
// swagger:model StartPaymentRequest
type StartPaymentRequest struct {
	Order   *OrderInput   `json:"order"`
	Billing *BillingInput `json:"billing"`
	Company *CompanyInput `json:"company,omitempty"`
}

// ToOrder builds the pending record persisted before the gateway call.
func (r *StartPaymentRequest) ToOrder() *Order {
	currency := r.Order.Currency
	if currency == "" {
		currency = Currency
	}
	o := &Order{
		OrderID:  r.Order.OrderID,
		Amount:   r.Order.Amount,
		Currency: currency,
		Status:   StatusPending,
		Billing:  Billing(*r.Billing),
	}
	if r.Company != nil {
		c := Company(*r.Company)
		o.Company = &c
	}
	return o
}

// StartPaymentResponse is returned on a successful initiation.
// swagger:model StartPaymentResponse
type StartPaymentResponse struct {
	Success     bool   `json:"success"               example:"true"`
	RedirectURL string `json:"redirectUrl,omitempty" example:"https://secure.sandbox.netopia-payments.com/ui/card?p=abc"`
}

// StatusResponse answers GET /orders/status.
// swagger:model StatusResponse
type StatusResponse struct {
	Status  Status   `json:"status"            example:"approved"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	Success bool         `json:"success"`
	Message string       `json:"message"          example:"Invalid payment data"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}
