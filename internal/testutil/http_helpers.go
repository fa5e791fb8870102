package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kuberx/portfolio-ledger/internal/api/middleware"
)

// NewUserRequest creates an HTTP request already authenticated as userID, as
// if middleware.RequireUser had accepted its token. A non-empty body is sent
// as JSON.
//
// Example:
//
//	req := testutil.NewUserRequest(
//	    http.MethodPost,
//	    "/api/portfolio/buy",
//	    userID,
//	    `{"symbol":"BTC","name":"Bitcoin","amount":0.5,"price":2000000}`,
//	)
func NewUserRequest(method, path, userID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

// WithURLParams attaches chi URL parameters to req, for handlers that read
// them with chi.URLParam.
//
// Example:
//
//	req = testutil.WithURLParams(req, map[string]string{"transactionId": tradeID})
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// NewRequestWithURLParams creates an unauthenticated HTTP request with chi URL parameters.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/crypto/btc",
//	    map[string]string{"symbol": "btc"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return WithURLParams(httptest.NewRequest(method, path, nil), params)
}

// NewRequestWithQueryParams creates an HTTP request authenticated as userID
// with the given query string parameters.
//
// Example:
//
//	req := testutil.NewRequestWithQueryParams(
//	    http.MethodGet,
//	    "/api/user/transactions",
//	    userID,
//	    map[string]string{"symbol": "BTC", "page": "2"},
//	)
func NewRequestWithQueryParams(method, path, userID string, queryParams map[string]string) *http.Request {
	req := NewUserRequest(method, path, userID, "")

	q := req.URL.Query()
	for key, value := range queryParams {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	return req
}
