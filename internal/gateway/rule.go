// Package gateway resolves every inbound API call against a single ordered
// table of route rules, authenticates and authorizes where required, and
// invokes the bound handler.
package gateway

import (
	"fmt"
	"net/http"
	"strings"
)

// Rule binds a method and path pattern to a handler with its authorization
// requirement. Rules are evaluated in registration order; the first
// structural match wins, so more specific patterns must be registered before
// catch-alls.
//
// Pattern grammar: literal segments, at most one parameter segment written
// "{name}" (opaque) or "{name:int}" (numeric), and an optional trailing "/*"
// wildcard capturing the remainder.
type Rule struct {
	Method  string
	Pattern string
	// Public routes skip authentication entirely (webhooks carry their own
	// signature check instead).
	Public bool
	// Roles is the allowed role set; empty means any authenticated user.
	// Membership is flat: admin does not satisfy a super_admin-only rule.
	Roles []string
	// StrictRole, when set, is the single role allowed through, regardless
	// of Roles. Used for destructive operations.
	StrictRole string
	Handler    http.HandlerFunc
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segParamInt
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
}

type compiledRule struct {
	Rule
	segments []segment
	wildcard bool
}

func compileRule(r Rule) (compiledRule, error) {
	if r.Method == "" || !strings.HasPrefix(r.Pattern, "/") {
		return compiledRule{}, fmt.Errorf("invalid rule %q %q", r.Method, r.Pattern)
	}
	if r.Handler == nil {
		return compiledRule{}, fmt.Errorf("rule %s %s has no handler", r.Method, r.Pattern)
	}

	cr := compiledRule{Rule: r}
	parts := strings.Split(strings.TrimPrefix(r.Pattern, "/"), "/")
	params := 0
	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return compiledRule{}, fmt.Errorf("rule %s %s: wildcard must be the last segment", r.Method, r.Pattern)
			}
			cr.wildcard = true
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			kind := segParam
			if n, ok := strings.CutSuffix(name, ":int"); ok {
				name = n
				kind = segParamInt
			}
			if name == "" {
				return compiledRule{}, fmt.Errorf("rule %s %s: empty parameter name", r.Method, r.Pattern)
			}
			params++
			if params > 1 {
				return compiledRule{}, fmt.Errorf("rule %s %s: at most one parameter segment", r.Method, r.Pattern)
			}
			cr.segments = append(cr.segments, segment{kind: kind, value: name})
		default:
			cr.segments = append(cr.segments, segment{kind: segLiteral, value: part})
		}
	}
	return cr, nil
}

// match performs the structural test. Parameter values are returned raw;
// numeric coercion happens after the match so a malformed id on a structurally
// matched route yields 400, not 404.
func (cr *compiledRule) match(path string) (params map[string]string, remainder string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	if cr.wildcard {
		if len(parts) < len(cr.segments) {
			return nil, "", false
		}
	} else if len(parts) != len(cr.segments) {
		return nil, "", false
	}

	for i, seg := range cr.segments {
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return nil, "", false
			}
		case segParam, segParamInt:
			if parts[i] == "" {
				return nil, "", false
			}
			if params == nil {
				params = map[string]string{}
			}
			params[seg.value] = parts[i]
		}
	}

	if cr.wildcard {
		remainder = strings.Join(parts[len(cr.segments):], "/")
	}
	return params, remainder, true
}

// intParam returns the name of the rule's numeric parameter, or "".
func (cr *compiledRule) intParam() string {
	for _, seg := range cr.segments {
		if seg.kind == segParamInt {
			return seg.value
		}
	}
	return ""
}
