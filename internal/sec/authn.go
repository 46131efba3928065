package sec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/authn"
	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

// CredentialSignIn is the sentinel returned by [Authenticator.Authenticate]
// when the submitted credentials were rejected.
const CredentialSignIn = "CredentialSignIn"

// ErrCredentialSignIn is the cause of every credential sign-in failure.
var ErrCredentialSignIn = errors.New(CredentialSignIn)

// MinPasswordLen is the shortest password accepted for sign-in.
const MinPasswordLen = 6

// Credentials are the email and password submitted by the login form.
type Credentials struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password" validate:"min=6"`
}

// UserLookup finds users by email. [storage.Users] satisfies it.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
}

// Authenticator checks credentials against the user store.
type Authenticator struct {
	users    UserLookup
	logger   *slog.Logger
	validate *validator.Validate
	compare  func(password string, hash []byte) error
}

// NewAuthenticator creates an [Authenticator] backed by users.
func NewAuthenticator(users UserLookup, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		users:    users,
		logger:   logger,
		validate: validator.New(),
		compare:  ComparePassword[string],
	}
}

// Authorize resolves the user for creds. A nil user and nil error are
// returned when the credentials are malformed, the email is unknown, or the
// password does not match. Only lookup failures are returned as errors.
func (a *Authenticator) Authorize(ctx context.Context, creds Credentials) (*db.User, error) {
	if err := a.validate.StructCtx(ctx, creds); err != nil {
		a.logger.DebugContext(ctx, "malformed credentials", slog.Any("error", err))
		return nil, nil //nolint:nilnil // no match is not an error
	}

	user, err := a.users.GetUserByEmail(ctx, creds.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil //nolint:nilnil // no match is not an error
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err = a.compare(creds.Password, user.PasswordHash); err != nil {
		a.logger.InfoContext(ctx, "invalid credentials", slog.String("user", user.ID))
		return nil, nil //nolint:nilnil // no match is not an error
	}
	return &user, nil
}

// SignIn is [Authenticator.Authorize], except that rejected credentials are
// reported as an error wrapping [ErrCredentialSignIn].
func (a *Authenticator) SignIn(ctx context.Context, creds Credentials) (*db.User, error) {
	user, err := a.Authorize(ctx, creds)
	if err != nil {
		return nil, err
	} else if user == nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrCredentialSignIn)
	}
	return user, nil
}

// Authenticate handles a login form submission. The previous form state is
// ignored. On success the empty string is returned; a credential sign-in
// failure yields the [CredentialSignIn] sentinel. Any other failure is
// returned unchanged.
func (a *Authenticator) Authenticate(ctx context.Context, _ string, creds Credentials) (string, error) {
	_, err := a.SignIn(ctx, creds)
	if err == nil {
		return "", nil
	}
	if isCredentialSignIn(err) {
		return CredentialSignIn, nil
	}
	return "", err
}

func isCredentialSignIn(err error) bool {
	return errors.Is(err, ErrCredentialSignIn) || strings.Contains(err.Error(), CredentialSignIn)
}

// AuthenticateRequest resolves the user from the request's Basic Auth header,
// where the username is the user's email. If the information is invalid, a
// ConnectRPC error is returned.
func (a *Authenticator) AuthenticateRequest(ctx context.Context, req *http.Request) (db.User, error) {
	email, password, ok := req.BasicAuth()
	if !ok {
		return db.User{}, authn.Errorf("invalid authorization header")
	}
	user, err := a.SignIn(ctx, Credentials{Email: email, Password: password})
	if isCredentialSignIn(err) {
		return db.User{}, authn.Errorf("invalid email or password")
	} else if err != nil {
		return db.User{}, connect.NewError(connect.CodeInternal, err)
	}
	return *user, nil
}

// NewConnectAuthMiddleware returns a new authentication middleware for ConnectRPC.
func NewConnectAuthMiddleware(auth *Authenticator, opts ...connect.HandlerOption) *authn.Middleware {
	return authn.NewMiddleware(func(ctx context.Context, req *http.Request) (any, error) {
		return auth.AuthenticateRequest(ctx, req)
	}, opts...)
}

// GetAuthenticatedUser returns the user information for the authenticated user.
// Returns a zero-value User if the context has no authenticated user or if
// the stored value is not a User (should only happen if middleware is misconfigured).
func GetAuthenticatedUser(ctx context.Context) db.User {
	if user, ok := authn.GetInfo(ctx).(db.User); ok {
		return user
	}
	return db.User{}
}

// SetAuthenticatedUser sets the user information for an authenticated user. The
// authn.Middleware automatically injects this information; this function is
// provided as a convenience for testing and for the web app's middleware.
func SetAuthenticatedUser(ctx context.Context, user db.User) context.Context {
	return authn.SetInfo(ctx, user)
}
