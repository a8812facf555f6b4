package sparql

import "errors"

// Sentinel kinds for SPARQL client errors.
var (
	ErrEmptyQuery = errors.New("empty query")
	ErrTransport  = errors.New("sparql request failed")
	ErrDecode     = errors.New("sparql response malformed")
)
