package constants

const (
	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyMemberID  = "member_id"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"

	// Database table names
	TablePlans           = "plans"
	TableBillingKeys     = "billing_keys"
	TableSubscriptions   = "subscriptions"
	TableBillingPayments = "billing_payments"
	TableStorageUsages   = "storage_usages"
	TableTeamMembers     = "team_members"

	// Roles
	RoleAdmin  = "admin"
	RoleMember = "member"
)
