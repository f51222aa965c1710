package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Romanian numbers: +40 / 0040 / 0 prefix, then a non 0/1 digit and 8 more.
	phoneRe = regexp.MustCompile(`^(\+40|0040|0)[2-9]\d{8}$`)
)

type FieldError struct {
	Field   string `json:"field"   example:"email"`
	Message string `json:"message" example:"Valid email is required"`
}

// ValidationErrors is returned when a checkout submission is rejected.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

func IsValidEmail(s string) bool { return emailRe.MatchString(s) }

func IsValidPhone(s string) bool {
	return phoneRe.MatchString(strings.Join(strings.Fields(s), ""))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("checkout_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("ro_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

var messages = map[string]string{
	"orderID":   "Order ID is required and must be a string",
	"currency":  "Currency must be " + Currency,
	"firstName": "First name is required",
	"lastName":  "Last name is required",
	"email":     "Valid email is required",
	"phone":     "Invalid phone number format",
	"city":      "City is required",
}

// Validate checks a checkout submission and returns ValidationErrors listing
// every violation, or nil.
func (r *StartPaymentRequest) Validate() error {
	var errs ValidationErrors

	if r.Order == nil {
		errs = append(errs, FieldError{Field: "order", Message: "Order data is required"})
	} else {
		errs = append(errs, structErrors(r.Order)...)
		if !r.Order.Amount.IsPositive() {
			errs = append(errs, FieldError{Field: "amount", Message: "Amount is required and must be a positive number"})
		}
	}

	if r.Billing == nil {
		errs = append(errs, FieldError{Field: "billing", Message: "Billing data is required"})
	} else {
		errs = append(errs, structErrors(r.Billing)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func structErrors(s any) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "body", Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("failed %q check", fe.Tag())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// DecodeStartPayment decodes a checkout body. Type violations (for example a
// numeric company name) come back as ValidationErrors naming the field.
func DecodeStartPayment(data []byte) (*StartPaymentRequest, error) {
	var req StartPaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return nil, ValidationErrors{{Field: field, Message: "must be of type " + typeErr.Type.String()}}
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, err
		}
		return nil, ValidationErrors{{Field: "body", Message: err.Error()}}
	}
	return &req, nil
}
