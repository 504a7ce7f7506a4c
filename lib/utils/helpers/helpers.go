package helpers

import (
	"context"
	"strings"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

// IsBlank пустая строка или только пробелы
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
