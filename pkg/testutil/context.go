package testutil

import (
	"net/http"

	"renterverify/pkg/requestcontext"
)

// WithCaller sets the resolved caller identity on the request context,
// standing in for the bearer-token middleware.
func WithCaller(req *http.Request, caller string) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithBearer sets an Authorization header carrying token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
