package gateway

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/careerpilot/backend/internal/contextkeys"
	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/internal/handler"
)

const routeSampleSize = 10

// Authenticator resolves an Authorization header to a local user.
type Authenticator interface {
	Authenticate(ctx context.Context, authHeader string) (*domain.User, error)
}

// Gateway is the single entry point for /api traffic.
type Gateway struct {
	rules []compiledRule
	auth  Authenticator
}

// New compiles the rule table. Order is preserved and significant.
func New(rules []Rule, auth Authenticator) (*Gateway, error) {
	g := &Gateway{auth: auth}
	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		g.rules = append(g.rules, cr)
	}
	return g, nil
}

// ServeHTTP resolves the request to exactly one handler invocation, a 400 for
// a malformed parameter, or a 404 with a diagnostic route sample.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// r.URL.Path never carries the query string.
	path := r.URL.Path

	// Preflight and bare OPTIONS terminate before authentication and
	// dispatch; CORS headers were already written by the middleware.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	for i := range g.rules {
		rule := &g.rules[i]
		if rule.Method != r.Method {
			continue
		}
		params, remainder, ok := rule.match(path)
		if !ok {
			continue
		}
		g.dispatch(w, r, rule, params, remainder)
		return
	}

	handler.JSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": r.Method + " " + path,
		"routes":  g.routeSample(),
	})
}

func (g *Gateway) dispatch(w http.ResponseWriter, r *http.Request, rule *compiledRule, params map[string]string, remainder string) {
	// Coerce after the structural match: a bad numeric id on a known route
	// is a validation error, not an unknown route.
	if name := rule.intParam(); name != "" {
		if _, err := strconv.ParseInt(params[name], 10, 64); err != nil {
			handler.Error(w, domain.ErrBadRequest("invalid "+name))
			return
		}
	}

	ctx := r.Context()

	if !rule.Public {
		user, err := g.auth.Authenticate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			handler.Error(w, err)
			return
		}
		if !allowed(rule, user.Role) {
			handler.Error(w, domain.ErrForbidden("Access denied", requiredRoleMessage(rule)))
			return
		}
		ctx = context.WithValue(ctx, contextkeys.User, user)
		ctx = context.WithValue(ctx, contextkeys.UserID, user.ID)
	}

	if params != nil {
		ctx = context.WithValue(ctx, contextkeys.PathParams, params)
	}
	if rule.wildcard {
		ctx = context.WithValue(ctx, contextkeys.Remainder, remainder)
	}

	rule.Handler(w, r.WithContext(ctx))
}

// allowed is a flat set-membership check. There is no role hierarchy.
func allowed(rule *compiledRule, role string) bool {
	if rule.StrictRole != "" {
		return role == rule.StrictRole
	}
	if len(rule.Roles) == 0 {
		return true
	}
	return slices.Contains(rule.Roles, role)
}

func requiredRoleMessage(rule *compiledRule) string {
	if rule.StrictRole == domain.RoleSuperAdmin {
		return "Super admin access required"
	}
	if rule.StrictRole != "" || slices.Contains(rule.Roles, domain.RoleAdmin) {
		return "Admin access required"
	}
	return "You do not have access to this resource"
}

func (g *Gateway) routeSample() []string {
	sample := make([]string, 0, routeSampleSize)
	for _, rule := range g.rules {
		sample = append(sample, rule.Method+" "+rule.Pattern)
		if len(sample) == routeSampleSize {
			break
		}
	}
	return sample
}
