package tool

import (
	"fmt"
	"strings"
)

// MutatesConfig gates any call whose arguments mark a mutating operation.
// It checks the explicit "mutating" flag first, then falls back to a verb
// heuristic on the "operation" argument.
func MutatesConfig(args map[string]any) (bool, error) {
	if v, ok := args["mutating"]; ok {
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("mutating argument must be a bool, got %T", v)
		}
		return b, nil
	}

	op, _ := args["operation"].(string)
	switch {
	case op == "":
		return false, nil
	case strings.HasPrefix(op, "get"), strings.HasPrefix(op, "show"),
		strings.HasPrefix(op, "list"):
		return false, nil
	default:
		return true, nil
	}
}

// mutatingMethods is the set of HTTP methods considered state-changing.
var mutatingMethods = map[string]struct{}{
	"POST":   {},
	"PUT":    {},
	"PATCH":  {},
	"DELETE": {},
}

// HTTPMutatingMethod gates calls whose "method" argument is a mutating HTTP
// method. Missing method defaults to GET (ungated); a non-string method is
// an error, which the gateway treats as gated.
func HTTPMutatingMethod(args map[string]any) (bool, error) {
	v, ok := args["method"]
	if !ok {
		return false, nil
	}
	method, ok := v.(string)
	if !ok {
		return false, fmt.Errorf("method argument must be a string, got %T", v)
	}
	_, mutating := mutatingMethods[strings.ToUpper(method)]
	return mutating, nil
}

// AlwaysGated gates every call. Useful for tools whose every invocation is
// sensitive regardless of arguments.
func AlwaysGated(args map[string]any) (bool, error) {
	return true, nil
}
