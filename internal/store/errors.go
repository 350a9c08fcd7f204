package store

import "errors"

// ErrInvalidDocument is returned for export lines that cannot be imported.
var ErrInvalidDocument = errors.New("invalid document")
