// Package id generates merchant order identifiers for gateway calls.
package id

import (
	"fmt"
	"time"
)

// Order identifier prefixes, one per gateway operation.
const (
	PrefixBillingKey = "PECAL_BK"
	PrefixApprove    = "PECAL_AP"
	PrefixRecurring  = "PECAL_RC"
	PrefixRemove     = "PECAL_RM"
	PrefixCancel     = "PECAL_CC"
)

// NewOrderID returns "{prefix}_{subject}_{unix millis}", e.g.
// PECAL_AP_42_1717171717171.
func NewOrderID(prefix string, subject uint, now time.Time) string {
	return fmt.Sprintf("%s_%d_%d", prefix, subject, now.UnixMilli())
}
