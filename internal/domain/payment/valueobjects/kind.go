package valueobjects

// ChargeKind distinguishes the checkout charge from scheduler renewals.
type ChargeKind string

const (
	ChargeKindInitial   ChargeKind = "INITIAL"
	ChargeKindRecurring ChargeKind = "RECURRING"
)

type PaymentStatus string

const (
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	// PaymentStatusUnknown is a charge whose outcome the gateway never
	// reported and whose cancellation also failed.
	PaymentStatusUnknown PaymentStatus = "UNKNOWN"
)

func (s PaymentStatus) String() string {
	return string(s)
}
