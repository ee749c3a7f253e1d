package utils

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TruncateString trims a value to the destination column width, counted in
// characters. Truncation is silent: the BackOffice schema caps these fields
// and the ERP UI does the same. Cutting on a rune boundary keeps the result
// valid UTF-8, which strict-mode MySQL columns insist on.
func TruncateString(value string, maxLength int) string {
	if maxLength <= 0 || len(value) <= maxLength {
		return value
	}
	if utf8.RuneCountInString(value) <= maxLength {
		return value
	}
	return string([]rune(value)[:maxLength])
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func IntFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
