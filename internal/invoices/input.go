package invoices

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stolasapp/tally/internal/storage/db"
)

// Field names, as submitted by the invoice form.
const (
	FieldID         = "id"
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// maxAmount keeps the cents conversion within int64.
const maxAmount = 9e16

const (
	errMsgCustomer = "Please select a customer."
	errMsgAmount   = "Please enter an amount greater than $0."
	errMsgNaN      = "Expected number, received nan"
	errMsgTooLarge = "Please enter a smaller amount."
	errMsgStatus   = "Please select an invoice status."
	errMsgID       = "Invalid invoice id."
)

// fieldMessages maps "<field>.<tag>" to the message shown beside the field.
var fieldMessages = map[string]string{
	FieldID + ".required":         errMsgID,
	FieldCustomerID + ".required": errMsgCustomer,
	FieldAmount + ".coercible":    errMsgNaN,
	FieldAmount + ".positive":     errMsgAmount,
	FieldAmount + ".maxamount":    errMsgTooLarge,
	FieldStatus + ".oneof":        errMsgStatus,
}

// ErrInvalidInput is matched by every [*InputError].
var ErrInvalidInput = errors.New("invalid invoice input")

// FieldErrors maps a form field to its validation messages.
type FieldErrors map[string][]string

// InputError reports that strictly validated input was malformed.
type InputError struct {
	Errors FieldErrors
}

// Error satisfies [error].
func (e *InputError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	var sb strings.Builder
	sb.WriteString(ErrInvalidInput.Error())
	for i, field := range fields {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(field + ": " + strings.Join(e.Errors[field], ", "))
	}
	return sb.String()
}

// Unwrap returns [ErrInvalidInput].
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// CreateInput is the raw create form submission.
type CreateInput struct {
	CustomerID string `json:"customerId" form:"customerId" validate:"required"`
	Amount     string `json:"amount"     form:"amount"     validate:"coercible,positive,maxamount"`
	Status     string `json:"status"     form:"status"     validate:"oneof=pending paid"`
}

// UpdateInput is the raw edit form submission.
type UpdateInput struct {
	ID         string `json:"id"         form:"id"         param:"id" validate:"required"`
	CustomerID string `json:"customerId" form:"customerId" validate:"required"`
	Amount     string `json:"amount"     form:"amount"     validate:"coercible,positive,maxamount"`
	Status     string `json:"status"     form:"status"     validate:"oneof=pending paid"`
}

// DeleteInput identifies the invoice to delete. The id is not validated.
type DeleteInput struct {
	ID string `json:"id" form:"id" param:"id"`
}

// fields are the coerced values shared by create and update.
type fields struct {
	CustomerID string
	Cents      int64
	Status     string
}

func (in CreateInput) validate() (fields, FieldErrors) {
	if errs := validateStruct(in); errs != nil {
		return fields{}, errs
	}
	return coerce(in.CustomerID, in.Amount, in.Status), nil
}

func (in UpdateInput) validate() (db.Invoice, error) {
	if errs := validateStruct(in); errs != nil {
		return db.Invoice{}, &InputError{Errors: errs}
	}
	f := coerce(in.CustomerID, in.Amount, in.Status)
	return db.Invoice{
		ID:         in.ID,
		CustomerID: f.CustomerID,
		Amount:     f.Cents,
		Status:     f.Status,
	}, nil
}

// coerce converts validated raw values. It must only be called after
// validation succeeded.
func coerce(customerID, amount, status string) fields {
	dollars, _ := ParseAmount(amount)
	return fields{
		CustomerID: customerID,
		Cents:      ToCents(dollars),
		Status:     status,
	}
}

// ParseAmount coerces a submitted amount to a number. A blank amount coerces
// to zero; anything else must parse as a finite decimal.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse amount %q: not finite", raw)
	}
	return f, nil
}

// ToCents converts a dollar amount to integer cents.
func ToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100)) //nolint:mnd // cents per dollar
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Only string fields carry these tags.
	must(v.RegisterValidation("coercible", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		// must still be positive once rounded to whole cents
		f, err := ParseAmount(fl.Field().String())
		return err == nil && math.Round(f*100) >= 1 //nolint:mnd // cents per dollar
	}))
	must(v.RegisterValidation("maxamount", func(fl validator.FieldLevel) bool {
		f, err := ParseAmount(fl.Field().String())
		return err == nil && f <= maxAmount
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// validateStruct returns nil when in is valid, or the messages for each
// failing field.
func validateStruct(in any) FieldErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": {err.Error()}}
	}
	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		errs[fe.Field()] = append(errs[fe.Field()], msg)
	}
	return errs
}
