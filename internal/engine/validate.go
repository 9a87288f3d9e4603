package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

// validateArgs checks the supplied arguments against the declared
// parameters and returns a coerced copy. It fails fast, before any process
// is started: unknown names are rejected, every required parameter must be
// present, and each value must coerce to its parameter's kind.
func validateArgs(params []analyzer.Parameter, supplied map[string]any) (map[string]any, error) {
	declared := make(map[string]analyzer.Parameter, len(params))
	for _, p := range params {
		declared[p.Name] = p
	}

	names := make([]string, 0, len(supplied))
	for name := range supplied {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(supplied))
	for _, name := range names {
		p, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("unknown argument %q", name)
		}
		value := supplied[name]
		if value == nil {
			continue
		}
		coerced, err := coerceValue(p, value)
		if err != nil {
			return nil, err
		}
		out[name] = coerced
	}

	for _, p := range params {
		if !p.Required {
			continue
		}
		if _, ok := out[p.Name]; !ok {
			return nil, fmt.Errorf("required argument %q not provided", p.Name)
		}
	}
	return out, nil
}

func coerceValue(p analyzer.Parameter, value any) (any, error) {
	switch p.Kind {
	case analyzer.KindInt:
		return coerceInt(p.Name, value)
	case analyzer.KindFloat:
		return coerceFloat(p.Name, value)
	case analyzer.KindBool:
		return coerceBool(p.Name, value)
	case analyzer.KindChoice:
		s := coerceString(value)
		for _, c := range p.Choices {
			if s == c {
				return s, nil
			}
		}
		return nil, fmt.Errorf("argument %q must be one of: %s", p.Name, strings.Join(p.Choices, ", "))
	default:
		return coerceString(value), nil
	}
}

func coerceInt(name string, value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("argument %q must be an integer", name)
}

func coerceFloat(name string, value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("argument %q must be a number", name)
}

func coerceBool(name string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v))); err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("argument %q must be a boolean", name)
}

func coerceString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
