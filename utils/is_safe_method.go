package utils

import (
	"net/http"
	"strings"
)

// IsSafeMethod reports whether method is read-only. An empty method is treated as GET.
func IsSafeMethod(method string) bool {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		m = http.MethodGet
	}
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
