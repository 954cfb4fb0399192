package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stockadvisor/pkg/errors"
)

func stringArg(args map[string]any, name, fallback string) string {
	v, ok := args[name]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}

func intArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func symbolArg(args map[string]any) (string, error) {
	sym := strings.ToUpper(stringArg(args, "symbol", ""))
	if sym == "" {
		return "", errors.NewValidationError("symbol", "is required", nil)
	}
	return sym, nil
}
