package db

import "fmt"

// Invoice status values.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is a row of the invoices table. Amount is stored in cents.
type Invoice struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	Date       string `json:"date"`
}

// FormattedAmount renders the amount in dollars, e.g. "$15.50".
func (i Invoice) FormattedAmount() string {
	sign := ""
	cents := i.Amount
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100) //nolint:mnd // cents per dollar
}

// User is a row of the users table.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
}
