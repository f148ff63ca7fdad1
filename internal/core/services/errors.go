package services

import "errors"

// ErrNoGateway is returned when a SearchService was built without a gateway.
var ErrNoGateway = errors.New("search gateway not configured")
