package uitest

import (
	"fmt"

	"github.com/stolasapp/tally/internal/app/component"
)

// CSS selectors built from component constants.
// These ensure test selectors stay in sync with the component DOM structure.

// Element selectors.
var (
	// SelectorInvoicesTable selects the invoice table by ID.
	SelectorInvoicesTable = "#" + component.IDInvoicesTable

	// SelectorSearchInput selects the search box.
	SelectorSearchInput = "#" + component.IDSearch + " input[name='query']"

	// SelectorPagination selects the pagination nav by class.
	SelectorPagination = "nav." + component.ClassPagination

	// SelectorCurrentPage selects the current page marker.
	SelectorCurrentPage = SelectorPagination + " [" + component.DataAttrCurrent + "]"

	// SelectorNextPage selects the next page link.
	SelectorNextPage = SelectorPagination + " a[rel='next']"

	// SelectorEmptyResult selects the placeholder row shown for no results.
	SelectorEmptyResult = SelectorInvoicesTable + " tr." + component.ClassEmptyResult
)

// Row selectors.
var (
	// SelectorInvoiceRow selects any invoice row.
	SelectorInvoiceRow = SelectorInvoicesTable + " tr." + component.ClassInvoiceRow
)

// RowByStatus returns a selector for invoice rows with a specific status.
func RowByStatus(status string) string {
	return fmt.Sprintf("%s:has(.%s[%s='%s'])",
		SelectorInvoiceRow, component.ClassStatus, component.DataAttrStatus, status)
}

// RowByID returns a selector for the invoice row with id.
func RowByID(id string) string {
	return fmt.Sprintf("%s[%s='%s']", SelectorInvoiceRow, component.DataAttrID, id)
}

// DeleteButton returns a selector for the delete button of the invoice row
// with id.
func DeleteButton(id string) string {
	return RowByID(id) + " form button[type='submit']"
}
