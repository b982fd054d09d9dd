package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// User is the context key for the authenticated *domain.User.
	User contextKey = "user"
	// UserID is the context key for the authenticated user's ID.
	UserID contextKey = "userID"
	// PathParams is the context key for route path parameters (map[string]string).
	PathParams contextKey = "pathParams"
	// Remainder is the context key for the unmatched tail of a prefix route.
	Remainder contextKey = "remainder"
)
