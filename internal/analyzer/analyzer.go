// Package analyzer classifies Python scripts without executing them.
//
// A script's source is parsed into a syntax tree; the tree is inspected for
// the conventional execution signals (a __main__ guard, a main() entry
// point, argparse declarations) and the declared parameters are extracted.
// Analysis is a pure function of the source text: identical source always
// yields an identical ScriptInfo, and classification failures are encoded
// in the returned value, never raised.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// entryPointName is the conventional callable a script exposes for
// programmatic invocation.
const entryPointName = "main"

// Analyze reads and classifies the script at path.
func Analyze(path string) ScriptInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScriptInfo{
			Path:        path,
			DisplayName: displayName(path),
			Err:         fmt.Sprintf("read script: %v", err),
		}
	}
	return AnalyzeSource(path, string(data))
}

// AnalyzeSource classifies the given source text. The path is used only for
// naming and diagnostics; the source is never evaluated.
func AnalyzeSource(path, source string) ScriptInfo {
	info := ScriptInfo{Path: path, DisplayName: displayName(path)}

	if strings.TrimSpace(source) == "" {
		info.Err = "script is empty"
		return info
	}

	tree, err := parser.ParseString(source, py.ExecMode)
	if err != nil {
		info.Err = fmt.Sprintf("syntax error: %v", err)
		return info
	}
	module, ok := tree.(*ast.Module)
	if !ok {
		info.Err = fmt.Sprintf("unexpected parse result %T", tree)
		return info
	}

	info.HasMainGuard = hasMainGuard(module)

	entry := findEntryPoint(module)
	if entry != nil {
		info.EntryPoint = entryPointName
	}

	if params := extractArgparse(module); len(params) > 0 {
		info.HasArgParser = true
		info.Parameters = params
	} else if entry != nil {
		info.Parameters = entryParameters(entry)
	}

	info.Strategy = chooseStrategy(info.HasArgParser, info.HasMainGuard, entry != nil)
	return info
}

// hasMainGuard reports whether a module-level
// `if __name__ == "__main__":` block is present.
func hasMainGuard(m *ast.Module) bool {
	for _, stmt := range m.Body {
		ifStmt, ok := stmt.(*ast.If)
		if !ok {
			continue
		}
		if isMainGuardTest(ifStmt.Test) {
			return true
		}
	}
	return false
}

func isMainGuardTest(e ast.Expr) bool {
	cmp, ok := e.(*ast.Compare)
	if !ok || len(cmp.Ops) != 1 || cmp.Ops[0] != ast.Eq || len(cmp.Comparators) != 1 {
		return false
	}
	left, right := cmp.Left, cmp.Comparators[0]
	return (isName(left, "__name__") && isStringValue(right, "__main__")) ||
		(isName(right, "__name__") && isStringValue(left, "__main__"))
}

func isName(e ast.Expr, id string) bool {
	n, ok := e.(*ast.Name)
	return ok && string(n.Id) == id
}

func isStringValue(e ast.Expr, want string) bool {
	s, ok := stringLiteral(e)
	return ok && s == want
}

// findEntryPoint returns the first function definition named main, at any
// nesting depth.
func findEntryPoint(m *ast.Module) *ast.FunctionDef {
	var found *ast.FunctionDef
	ast.Walk(m, func(n ast.Ast) bool {
		if found != nil {
			return false
		}
		if fn, ok := n.(*ast.FunctionDef); ok && string(fn.Name) == entryPointName {
			found = fn
			return false
		}
		return true
	})
	return found
}

// extractArgparse collects one Parameter per add_argument call, keyed
// uniquely by cleaned argument name. The receiver of the call is not
// checked: any `X.add_argument("--name", ...)` counts, which matches how
// loosely scripts construct their parsers in practice.
func extractArgparse(m *ast.Module) []Parameter {
	var params []Parameter
	seen := map[string]bool{}
	ast.Walk(m, func(n ast.Ast) bool {
		call, ok := n.(*ast.Call)
		if !ok {
			return true
		}
		attr, ok := call.Func.(*ast.Attribute)
		if !ok || string(attr.Attr) != "add_argument" {
			return true
		}
		if p, ok := parseAddArgument(call); ok && !seen[p.Name] {
			seen[p.Name] = true
			params = append(params, p)
		}
		return true
	})
	return params
}

func parseAddArgument(call *ast.Call) (Parameter, bool) {
	if len(call.Args) == 0 {
		return Parameter{}, false
	}
	rawName, ok := stringLiteral(call.Args[0])
	if !ok {
		return Parameter{}, false
	}
	p := Parameter{Name: strings.TrimLeft(rawName, "-"), Kind: KindString}
	if p.Name == "" {
		return Parameter{}, false
	}
	positional := !strings.HasPrefix(rawName, "-")

	hasDefault := false
	for _, kw := range call.Keywords {
		switch string(kw.Arg) {
		case "required":
			if v, ok := boolLiteral(kw.Value); ok {
				p.Required = v
			}
		case "default":
			if v, ok := constantLiteral(kw.Value); ok && v != nil {
				p.Default = v
				hasDefault = true
			}
		case "help":
			if v, ok := stringLiteral(kw.Value); ok {
				p.Help = v
			}
		case "type":
			if name, ok := kw.Value.(*ast.Name); ok {
				switch string(name.Id) {
				case "int":
					p.Kind = KindInt
				case "float":
					p.Kind = KindFloat
				case "bool":
					p.Kind = KindBool
				}
			}
		case "choices":
			p.Choices = literalStrings(kw.Value)
		case "action":
			if v, ok := stringLiteral(kw.Value); ok && (v == "store_true" || v == "store_false") {
				p.Kind = KindBool
				p.Default = v == "store_false"
				hasDefault = true
			}
		}
	}
	if len(p.Choices) > 0 {
		p.Kind = KindChoice
	}
	if positional && !hasDefault {
		p.Required = true
	}
	return p, true
}

// entryParameters maps main()'s signature to parameters when the script
// declares no argparse arguments. Trailing parameters with literal defaults
// are optional; everything else is a required string.
func entryParameters(fn *ast.FunctionDef) []Parameter {
	if fn.Args == nil {
		return nil
	}
	args := fn.Args.Args
	defaults := fn.Args.Defaults
	firstDefault := len(args) - len(defaults)

	var params []Parameter
	for i, a := range args {
		name := string(a.Arg)
		if name == "self" {
			continue
		}
		p := Parameter{Name: name, Kind: KindString, Required: true}
		if i >= firstDefault {
			p.Required = false
			if v, ok := constantLiteral(defaults[i-firstDefault]); ok {
				p.Default = v
			}
		}
		params = append(params, p)
	}
	return params
}

func stringLiteral(e ast.Expr) (string, bool) {
	if s, ok := e.(*ast.Str); ok {
		return string(s.S), true
	}
	return "", false
}

func boolLiteral(e ast.Expr) (value, ok bool) {
	c, isConst := e.(*ast.NameConstant)
	if !isConst {
		return false, false
	}
	switch c.Value {
	case py.True:
		return true, true
	case py.False:
		return false, true
	}
	return false, false
}

// constantLiteral converts a literal expression to its Go value. Non-literal
// expressions (names, calls, comprehensions) yield ok=false and are treated
// as if the keyword were absent, matching the original tolerance for
// computed defaults.
func constantLiteral(e ast.Expr) (any, bool) {
	switch v := e.(type) {
	case *ast.Str:
		return string(v.S), true
	case *ast.Num:
		switch n := v.N.(type) {
		case py.Int:
			return int64(n), true
		case py.Float:
			return float64(n), true
		}
	case *ast.NameConstant:
		switch v.Value {
		case py.True:
			return true, true
		case py.False:
			return false, true
		}
	}
	return nil, false
}

// literalStrings flattens a list/tuple of literals into strings, the shape
// argparse choices are declared in.
func literalStrings(e ast.Expr) []string {
	var elts []ast.Expr
	switch v := e.(type) {
	case *ast.List:
		elts = v.Elts
	case *ast.Tuple:
		elts = v.Elts
	default:
		return nil
	}
	var out []string
	for _, elt := range elts {
		if s, ok := stringLiteral(elt); ok {
			out = append(out, s)
			continue
		}
		if v, ok := constantLiteral(elt); ok {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// displayName derives a human label from the filename: the stem with
// underscores and dashes as spaces, each word title-cased.
func displayName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
