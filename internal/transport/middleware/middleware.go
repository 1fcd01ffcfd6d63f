// Package middleware holds the HTTP middleware mounted on the bot's chi
// router: request ids, access logging and panic recovery.
package middleware

import "net/http"

// Middleware wraps an http.Handler. Values are passed straight to chi's
// Router.Use, outermost first.
type Middleware func(http.Handler) http.Handler
