package component

// Element IDs.
const (
	IDInvoicesTable = "invoices-table"
	IDSearch        = "search"
	IDPagination    = "pagination"
)

// Data attribute names (without the "data-" prefix).
const (
	AttrID     = "id"
	AttrStatus = "status"
	AttrPage   = "page"
)

// Data attribute names with prefix (for use in CSS selectors and tests).
const (
	DataAttrID      = "data-" + AttrID
	DataAttrStatus  = "data-" + AttrStatus
	DataAttrPage    = "data-" + AttrPage
	DataAttrCurrent = "data-current"
)

// CSS class names.
const (
	ClassInvoiceRow  = "invoice-row"
	ClassStatus      = "invoice-status"
	ClassPagination  = "pagination"
	ClassEllipsis    = "ellipsis"
	ClassEmptyResult = "empty"
)
