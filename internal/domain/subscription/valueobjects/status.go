package valueobjects

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "ACTIVE"
	StatusCanceled SubscriptionStatus = "CANCELED"
	StatusExpired  SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusExpired
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
// ACTIVE -> ACTIVE is the renewal self-loop.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	if s != StatusActive {
		return false
	}
	return ValidStatuses[target]
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusActive:   true,
	StatusCanceled: true,
	StatusExpired:  true,
}
