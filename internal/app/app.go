// Package app contains the web front-end.
package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/tally/internal/app/component"
	"github.com/stolasapp/tally/internal/config"
	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/viewcache"
)

// New creates a web front-end server.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	auth *sec.Authenticator,
	svc *invoices.Service,
	views *viewcache.Cache,
) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	} else {
		srv.Use(
			middleware.Recover(),
			middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
				Skipper: func(c echo.Context) bool {
					return !strings.HasPrefix(c.Path(), "/dashboard")
				},
				Validator: func(email, password string, c echo.Context) (bool, error) {
					ctx := c.Request().Context()
					usr, err := auth.Authorize(ctx, sec.Credentials{Email: email, Password: password})
					if err != nil || usr == nil {
						return false, err
					}
					ctx = sec.SetAuthenticatedUser(ctx, *usr)
					c.SetRequest(c.Request().WithContext(ctx))
					return true, nil
				},
				Realm: "tally",
			}),
		)
	}

	srv.Use(
		middleware.Decompress(),
		middleware.Gzip(),
		middleware.Secure(),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			Skipper: func(c echo.Context) bool {
				// signing in starts no session to protect
				return c.Path() == "/login"
			},
			TokenLookup: "form:" + component.FormFieldCSRF + ",header:" + echo.HeaderXCSRFToken,
		}),
		middleware.RequestID(),
	)

	handler{
		invoices: svc,
		auth:     auth,
		views:    views,
		logger:   logger,
	}.register(srv)
	return srv
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}
