package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/stolasapp/tally/internal/app/component"
	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/pagination"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/viewcache"
)

type handler struct {
	invoices *invoices.Service
	auth     *sec.Authenticator
	views    *viewcache.Cache
	logger   *slog.Logger
}

func (h handler) register(e *echo.Echo) {
	e.POST("/login", h.login)

	listing := e.Group(invoices.ListingPath)
	listing.GET("", h.list)
	listing.POST("", h.create)

	invoice := listing.Group("/:id")
	invoice.GET("", h.get)
	invoice.POST("/edit", h.update)
	invoice.POST("/delete", h.delete)
}

func (h handler) list(c echo.Context) error {
	req := c.Request()
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)

	generation := h.views.Generation(req.URL.Path)
	if body, ok := h.views.Get(req.URL); ok {
		return c.HTMLBlob(http.StatusOK, component.FillCSRFToken(body, token))
	}

	params := component.ParseQueryString(req.URL.RawQuery)
	page, err := h.invoices.List(
		req.Context(),
		params.Query,
		pagination.Page{Number: params.Page, Size: pagination.DefaultPageSize},
	)
	if err != nil {
		return err
	}

	// cached renderings are shared between clients, so the token is filled
	// in per response
	ctx := component.WithCSRFToken(req.Context(), component.CSRFPlaceholder)
	body, err := render(ctx, component.InvoicesPage(page))
	if err != nil {
		return err
	}
	h.views.Set(req.URL, generation, body)
	return c.HTMLBlob(http.StatusOK, component.FillCSRFToken(body, token))
}

func (h handler) create(c echo.Context) error {
	var in invoices.CreateInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	return respond(c, h.invoices.Create(c.Request().Context(), in))
}

func (h handler) get(c echo.Context) error {
	inv, err := h.invoices.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h handler) update(c echo.Context) error {
	var in invoices.UpdateInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	// the path identifies the invoice, regardless of the form body
	in.ID = c.Param("id")

	res, err := h.invoices.Update(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, res)
}

func (h handler) delete(c echo.Context) error {
	res := h.invoices.Delete(c.Request().Context(), invoices.DeleteInput{ID: c.Param("id")})
	return respond(c, res)
}

func (h handler) login(c echo.Context) error {
	var creds sec.Credentials
	if err := c.Bind(&creds); err != nil {
		return err
	}
	state, err := h.auth.Authenticate(c.Request().Context(), "", creds)
	if err != nil {
		return err
	}
	if state == sec.CredentialSignIn {
		return c.String(http.StatusUnauthorized, state)
	}
	return c.NoContent(http.StatusNoContent)
}

// respond writes a mutation result. Successful mutations redirect when the
// result asks for it; failures report the form state.
func respond(c echo.Context, res invoices.Result) error {
	switch res.Outcome {
	case invoices.Succeeded:
		if res.Redirect != "" {
			return c.Redirect(http.StatusSeeOther, res.Redirect)
		}
		return c.NoContent(http.StatusNoContent)
	case invoices.ValidationFailed:
		return c.JSON(http.StatusUnprocessableEntity, res.State())
	default:
		return c.JSON(http.StatusInternalServerError, res.State())
	}
}

// toHTTPError converts an error to an Echo HTTPError with the appropriate
// HTTP status code. Errors without a client-facing status pass through
// unchanged.
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}

	// Already an HTTP error - pass through
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, invoices.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	default:
		return err
	}
}

var renderBufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// render renders component into a fresh byte slice.
func render(ctx context.Context, component templ.Component) ([]byte, error) {
	buf := renderBufferPool.Get().(*bytes.Buffer) //nolint:forcetypeassert // guaranteed by impl
	defer renderBufferPool.Put(buf)
	buf.Reset()

	if err := component.Render(ctx, buf); err != nil {
		return nil, toHTTPError(err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
