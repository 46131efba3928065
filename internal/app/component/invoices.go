// Package component provides component templates used by the tally web app.
package component

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/storage/db"
)

// FormatDate renders an ISO date for display, logging any errors.
func FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		slog.Error("failed to parse invoice date",
			slog.String("date", date),
			slog.Any("error", err),
		)
		return date
	}
	return t.Format("Jan 2, 2006")
}

func statusLabel(status string) string {
	switch status {
	case db.StatusPaid:
		return "Paid"
	case db.StatusPending:
		return "Pending"
	default:
		return status
	}
}

func invoiceURL(id string) string {
	return invoices.ListingPath + "/" + url.PathEscape(id)
}

func pageURL(params ListParams, page int) string {
	return params.WithPage(page).BuildURL(invoices.ListingPath)
}
