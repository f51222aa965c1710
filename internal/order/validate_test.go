package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *StartPaymentRequest {
	return &StartPaymentRequest{
		Order: &OrderInput{OrderID: "FA-1700000000000", Amount: decimal.RequireFromString("1448.80"), Currency: "RON"},
		Billing: &BillingInput{
			FirstName: "Ion", LastName: "Popescu", Email: "ion@example.com", Phone: "+40723456789", City: "Bucuresti",
		},
	}
}

func fields(err error) []string {
	var out []string
	if verrs, ok := err.(ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, fe.Field)
		}
	}
	return out
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	r := validRequest()
	r.Order.Currency = ""
	r.Company = &CompanyInput{Name: "Open Sky SRL", VATCode: "RO123"}
	require.NoError(t, r.Validate())
}

func TestValidate_Errors(t *testing.T) {
	r := &StartPaymentRequest{}
	assert.ElementsMatch(t, []string{"order", "billing"}, fields(r.Validate()))

	r = validRequest()
	r.Order.OrderID = ""
	r.Order.Amount = decimal.NewFromInt(-5)
	r.Order.Currency = "EUR"
	r.Billing.Email = "ion@"
	r.Billing.Phone = "0123456789"
	r.Billing.FirstName = ""
	r.Billing.City = ""

	err := r.Validate()
	require.Error(t, err)
	assert.ElementsMatch(t,
		[]string{"orderID", "amount", "currency", "email", "phone", "firstName", "city"},
		fields(err))

	verrs := err.(ValidationErrors)
	for _, fe := range verrs {
		if fe.Field == "amount" {
			assert.Equal(t, "Amount is required and must be a positive number", fe.Message)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	for _, p := range []string{"0723456789", "+40723456789", "0040723456789", "0723 456 789", "0212345678"} {
		assert.True(t, IsValidPhone(p), p)
	}
	for _, p := range []string{"", "723456789", "0123456789", "+4072345678", "07234567890", "+33612345678"} {
		assert.False(t, IsValidPhone(p), p)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a.b@c.ro"))
	assert.False(t, IsValidEmail("a b@c.ro"))
	assert.False(t, IsValidEmail("ab@c"))
}

func TestDecodeStartPayment(t *testing.T) {
	req, err := DecodeStartPayment([]byte(`{"order":{"orderID":"FA-1","amount":"12.50"},"billing":{"city":"Iasi"}}`))
	require.NoError(t, err)
	assert.Equal(t, "12.5", req.Order.Amount.String())
	assert.Nil(t, req.Company)

	_, err = DecodeStartPayment([]byte(`{"order":{"orderID":7}}`))
	assert.Equal(t, []string{"order.orderID"}, fields(err))

	_, err = DecodeStartPayment([]byte(`{"company":{"vatCode":true}}`))
	assert.Equal(t, []string{"company.vatCode"}, fields(err))

	_, err = DecodeStartPayment([]byte(`{"order":`))
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestToOrder(t *testing.T) {
	r := validRequest()
	r.Order.Currency = ""
	r.Company = &CompanyInput{Name: "Open Sky SRL"}

	o := r.ToOrder()
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, Currency, o.Currency)
	assert.Equal(t, "Popescu Ion", o.Billing.FullName())
	require.NotNil(t, o.Company)
	assert.Equal(t, "Open Sky SRL", o.Company.Name)
}
