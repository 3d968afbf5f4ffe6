package context

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// CompanyIDKey is the context key for the resolved tenant company ID.
const CompanyIDKey contextKey = "company_id"

// UserIDKey is the context key for the authenticated user identifier.
const UserIDKey contextKey = "user_id"

// WithCorrelationID adds a correlation ID to the context. The correlation ID
// tracks a request through the whole system, including background work spawned
// from it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCompanyID stores the tenant company ID in the context. Every repository
// call below the HTTP layer scopes its queries by this value.
func WithCompanyID(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, CompanyIDKey, companyID)
}

// GetCompanyID retrieves the tenant company ID from the context.
// The second return value is false when no tenant has been resolved.
func GetCompanyID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CompanyIDKey).(int64)
	return id, ok
}

// WithUserID stores the authenticated user identifier (JWT subject).
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID retrieves the authenticated user identifier from the context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
