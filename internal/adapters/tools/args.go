package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Клиенты MCP присылают числа как float64, а иногда строками; разбор терпим к обоим вариантам.

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func boolArg(args map[string]any, key string) (*bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case bool:
		return &val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("%s must be a boolean; got %q", key, val)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
}

func intArg(args map[string]any, key string) (*int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n int64
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("%s must be an integer; got %v", key, val)
		}
		n = int64(val)
	case int:
		n = int64(val)
	case int64:
		n = val
	case json.Number:
		parsed, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer; got %q", key, val.String())
		}
		n = parsed
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer; got %q", key, val)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func requiredIntArg(args map[string]any, key string) (int64, error) {
	n, err := intArg(args, key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return *n, nil
}
