package geo

import "errors"

// ErrUnknownMarker is returned when a handle is not on the layer.
var ErrUnknownMarker = errors.New("unknown marker")
