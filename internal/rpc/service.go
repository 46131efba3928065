// Package rpc exposes the invoice mutations as a ConnectRPC service.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

// InvoiceServiceName is the fully-qualified name of the invoice service.
const InvoiceServiceName = "tally.v1.InvoiceService"

// Procedure paths of the invoice service.
const (
	CreateInvoiceProcedure = "/" + InvoiceServiceName + "/CreateInvoice"
	UpdateInvoiceProcedure = "/" + InvoiceServiceName + "/UpdateInvoice"
	DeleteInvoiceProcedure = "/" + InvoiceServiceName + "/DeleteInvoice"
	GetInvoiceProcedure    = "/" + InvoiceServiceName + "/GetInvoice"
)

// CreateInvoiceRequest carries the raw create form fields.
type CreateInvoiceRequest struct {
	CustomerID string `json:"customerId"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

// UpdateInvoiceRequest carries the raw edit form fields.
type UpdateInvoiceRequest struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

// DeleteInvoiceRequest identifies the invoice to delete.
type DeleteInvoiceRequest struct {
	ID string `json:"id"`
}

// GetInvoiceRequest identifies the invoice to fetch.
type GetInvoiceRequest struct {
	ID string `json:"id"`
}

// InvoiceResponse reports a successful mutation.
type InvoiceResponse struct {
	ID       string `json:"id,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Handler implements the invoice service.
type Handler struct {
	invoices *invoices.Service
	logger   *slog.Logger
}

// NewHandler creates a [Handler] backed by svc.
func NewHandler(svc *invoices.Service, logger *slog.Logger) *Handler {
	return &Handler{invoices: svc, logger: logger}
}

// CreateInvoice validates and inserts an invoice.
func (h *Handler) CreateInvoice(
	ctx context.Context,
	req *connect.Request[CreateInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	h.logCall(ctx, req.Spec().Procedure)
	return toResponse(h.invoices.Create(ctx, invoices.CreateInput(*req.Msg)))
}

// UpdateInvoice validates and overwrites an invoice.
func (h *Handler) UpdateInvoice(
	ctx context.Context,
	req *connect.Request[UpdateInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	h.logCall(ctx, req.Spec().Procedure)
	res, err := h.invoices.Update(ctx, invoices.UpdateInput(*req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return toResponse(res)
}

// DeleteInvoice removes an invoice. Unknown ids are not an error.
func (h *Handler) DeleteInvoice(
	ctx context.Context,
	req *connect.Request[DeleteInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	h.logCall(ctx, req.Spec().Procedure)
	return toResponse(h.invoices.Delete(ctx, invoices.DeleteInput{ID: req.Msg.ID}))
}

// GetInvoice fetches a single invoice.
func (h *Handler) GetInvoice(
	ctx context.Context,
	req *connect.Request[GetInvoiceRequest],
) (*connect.Response[db.Invoice], error) {
	inv, err := h.invoices.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&inv), nil
}

func (h *Handler) logCall(ctx context.Context, procedure string) {
	h.logger.DebugContext(ctx, "invoice mutation",
		slog.String("procedure", procedure),
		slog.String("user", sec.GetAuthenticatedUser(ctx).ID),
	)
}

func toResponse(res invoices.Result) (*connect.Response[InvoiceResponse], error) {
	switch res.Outcome {
	case invoices.Succeeded:
		return connect.NewResponse(&InvoiceResponse{
			ID:       res.ID,
			Message:  res.Message,
			Redirect: res.Redirect,
		}), nil
	case invoices.ValidationFailed:
		err := connect.NewError(connect.CodeInvalidArgument, &invoices.InputError{Errors: res.Errors})
		err.Meta().Set("Tally-Message", res.Message)
		return nil, err
	default:
		return nil, connect.NewError(connect.CodeInternal, errors.New(res.Message))
	}
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, invoices.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// NewInvoiceServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The plain-struct JSON [Codec] is always registered.
func NewInvoiceServiceHandler(h *Handler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(CreateInvoiceProcedure, connect.NewUnaryHandler(CreateInvoiceProcedure, h.CreateInvoice, opts...))
	mux.Handle(UpdateInvoiceProcedure, connect.NewUnaryHandler(UpdateInvoiceProcedure, h.UpdateInvoice, opts...))
	mux.Handle(DeleteInvoiceProcedure, connect.NewUnaryHandler(DeleteInvoiceProcedure, h.DeleteInvoice, opts...))
	mux.Handle(GetInvoiceProcedure, connect.NewUnaryHandler(GetInvoiceProcedure, h.GetInvoice, opts...))
	return "/" + InvoiceServiceName + "/", mux
}

// NewServer mounts the invoice service behind Basic Auth.
func NewServer(h *Handler, auth *sec.Authenticator) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(NewInvoiceServiceHandler(h))
	return sec.NewConnectAuthMiddleware(auth).Wrap(mux)
}

// InvoiceServiceClient is a client for the invoice service.
type InvoiceServiceClient struct {
	createInvoice *connect.Client[CreateInvoiceRequest, InvoiceResponse]
	updateInvoice *connect.Client[UpdateInvoiceRequest, InvoiceResponse]
	deleteInvoice *connect.Client[DeleteInvoiceRequest, InvoiceResponse]
	getInvoice    *connect.Client[GetInvoiceRequest, db.Invoice]
}

// NewInvoiceServiceClient constructs a client for the invoice service at
// baseURL, using the plain-struct JSON [Codec].
func NewInvoiceServiceClient(
	httpClient connect.HTTPClient,
	baseURL string,
	opts ...connect.ClientOption,
) *InvoiceServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &InvoiceServiceClient{
		createInvoice: connect.NewClient[CreateInvoiceRequest, InvoiceResponse](
			httpClient, baseURL+CreateInvoiceProcedure, opts...),
		updateInvoice: connect.NewClient[UpdateInvoiceRequest, InvoiceResponse](
			httpClient, baseURL+UpdateInvoiceProcedure, opts...),
		deleteInvoice: connect.NewClient[DeleteInvoiceRequest, InvoiceResponse](
			httpClient, baseURL+DeleteInvoiceProcedure, opts...),
		getInvoice: connect.NewClient[GetInvoiceRequest, db.Invoice](
			httpClient, baseURL+GetInvoiceProcedure, opts...),
	}
}

// CreateInvoice calls tally.v1.InvoiceService.CreateInvoice.
func (c *InvoiceServiceClient) CreateInvoice(
	ctx context.Context,
	req *connect.Request[CreateInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	return c.createInvoice.CallUnary(ctx, req)
}

// UpdateInvoice calls tally.v1.InvoiceService.UpdateInvoice.
func (c *InvoiceServiceClient) UpdateInvoice(
	ctx context.Context,
	req *connect.Request[UpdateInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	return c.updateInvoice.CallUnary(ctx, req)
}

// DeleteInvoice calls tally.v1.InvoiceService.DeleteInvoice.
func (c *InvoiceServiceClient) DeleteInvoice(
	ctx context.Context,
	req *connect.Request[DeleteInvoiceRequest],
) (*connect.Response[InvoiceResponse], error) {
	return c.deleteInvoice.CallUnary(ctx, req)
}

// GetInvoice calls tally.v1.InvoiceService.GetInvoice.
func (c *InvoiceServiceClient) GetInvoice(
	ctx context.Context,
	req *connect.Request[GetInvoiceRequest],
) (*connect.Response[db.Invoice], error) {
	return c.getInvoice.CallUnary(ctx, req)
}
