package config

import (
	"os"
	"strings"
)

// InventorySourceForcedOff disables catalog healing regardless of what the
// ledger config says. Useful when the inventory backend is known to be
// misbehaving and operators want conversions to keep running without it.
//
// Set via env:
// - INVENTORY_SOURCE_FORCED_OFF=true
func InventorySourceForcedOff() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("INVENTORY_SOURCE_FORCED_OFF")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
