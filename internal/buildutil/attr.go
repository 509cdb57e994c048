// Package buildutil reads and edits keyword arguments of buildtools call
// expressions.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// String returns the string value of the keyword argument name.
// If name is empty, the first positional string argument is returned instead.
// Returns "" if the argument is missing or not a string literal.
func String(call *build.CallExpr, name string) string {
	if name == "" {
		if len(call.List) > 0 {
			if str, ok := call.List[0].(*build.StringExpr); ok {
				return str.Value
			}
		}
		return ""
	}
	if assign := findKeyword(call, name); assign != nil {
		if str, ok := assign.RHS.(*build.StringExpr); ok {
			return str.Value
		}
	}
	return ""
}

// PositionalString returns the i-th positional string argument, or "".
func PositionalString(call *build.CallExpr, i int) string {
	n := 0
	for _, arg := range call.List {
		if _, ok := arg.(*build.AssignExpr); ok {
			continue
		}
		if n == i {
			if str, ok := arg.(*build.StringExpr); ok {
				return str.Value
			}
			return ""
		}
		n++
	}
	return ""
}

// SetString sets the keyword argument name to the string value, appending
// the argument if it is absent. It reports whether the call changed.
func SetString(call *build.CallExpr, name, value string) bool {
	if assign := findKeyword(call, name); assign != nil {
		if str, ok := assign.RHS.(*build.StringExpr); ok && str.Value == value {
			return false
		}
		assign.RHS = &build.StringExpr{Value: value}
		return true
	}
	call.List = append(call.List, &build.AssignExpr{
		LHS: &build.Ident{Name: name},
		Op:  "=",
		RHS: &build.StringExpr{Value: value},
	})
	return true
}

func findKeyword(call *build.CallExpr, name string) *build.AssignExpr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign
		}
	}
	return nil
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// MethodCall splits a call like ext.configure(...) into its receiver
// identifier and method name. ok is false for any other shape.
func MethodCall(call *build.CallExpr) (recv, method string, ok bool) {
	dot, isDot := call.X.(*build.DotExpr)
	if !isDot {
		return "", "", false
	}
	ident, isIdent := dot.X.(*build.Ident)
	if !isIdent {
		return "", "", false
	}
	return ident.Name, dot.Name, true
}
