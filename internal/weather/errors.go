package weather

import "errors"

var (
	// ErrNoCurrentData is returned when a provider response lacks the
	// instantaneous-reading section.
	ErrNoCurrentData = errors.New("no current weather data in response")

	// ErrTransport wraps network failures and non-2xx upstream responses.
	ErrTransport = errors.New("weather provider transport error")

	// ErrMalformedResponse wraps payloads that could not be decoded or whose
	// hourly series are inconsistent.
	ErrMalformedResponse = errors.New("malformed weather provider response")

	// ErrInvalidLocation is returned for descriptors outside coordinate bounds.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNoStore is returned by history reads on a service built without a store.
	ErrNoStore = errors.New("no batch store configured")
)
