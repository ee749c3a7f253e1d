package utils

import "errors"

// ErrInventoryNotConfigured is returned by the backend resolver when the
// inventory source is absent from config or disabled. Callers treat it as
// "healing unavailable", not as a failure.
var ErrInventoryNotConfigured = errors.New("inventory database not configured or not enabled")
