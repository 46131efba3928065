// Package sec provides authentication and security primitives for the RPC
// service and web application.
//
// # Authentication
//
// Users sign in with an email address and password. Credentials are checked
// for shape before the user is looked up, and passwords are validated against
// bcrypt hashes stored in the database. A rejected sign-in is reported as the
// [CredentialSignIn] sentinel rather than as an error.
//
// The RPC service and the non-dev web app additionally accept the same
// credentials via HTTP Basic Auth. Basic Auth transmits credentials in base64
// encoding (not encrypted). TLS must be used in production to protect
// credentials in transit.
//
// # Components
//
//   - [Authenticator]: credential validation, lookup and sign-in
//   - [NewConnectAuthMiddleware]: Basic Auth middleware for the RPC server
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: Context accessors for user info
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec
