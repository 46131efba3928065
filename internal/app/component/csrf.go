package component

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// FormFieldCSRF is the form field carrying the CSRF token.
const FormFieldCSRF = "_csrf"

// CSRFPlaceholder stands in for the CSRF token in renderings shared between
// clients. [FillCSRFToken] swaps in the token of the requesting client.
const CSRFPlaceholder = "{{csrf_token}}"

type csrfTokenKey struct{}

// WithCSRFToken returns a copy of ctx in which forms carry token.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

// CSRFToken returns the token forms rendered with ctx submit, if any.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

// FillCSRFToken replaces every [CSRFPlaceholder] in body with token.
func FillCSRFToken(body []byte, token string) []byte {
	return bytes.ReplaceAll(body, []byte(CSRFPlaceholder), []byte(templ.EscapeString(token)))
}
