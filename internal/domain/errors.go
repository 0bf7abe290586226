package domain

import "errors"

var (
	// ErrInvalidInput is returned for negative or non-finite numeric inputs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedCoin is returned where a caller requires a registry coin.
	ErrUnsupportedCoin = errors.New("unsupported cryptocurrency")
	// ErrNetwork covers unreachable upstreams, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when an upstream payload has an unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")
)
