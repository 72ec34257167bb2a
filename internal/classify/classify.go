// Package classify inspects failure messages and applies cross-cutting
// policy, independent of which operation produced them.
package classify

import "strings"

// Kind is the coarse category of a failure.
type Kind string

const (
	KindAuth    Kind = "auth"
	KindNetwork Kind = "network"
	KindServer  Kind = "server"
	KindUnknown Kind = "unknown"
)

// Substring rules per kind, matched case-insensitively. Auth wins over
// network wins over server when a message matches several.
var (
	authPatterns = []string{
		"401",
		"unauthorized",
		"token expired",
		"invalid token",
		"authentication failed",
		"token",
	}
	networkPatterns = []string{
		"network",
		"fetch failed",
		"connection refused",
		"no such host",
		"dial tcp",
		"timeout",
	}
	serverPatterns = []string{
		"500",
		"502",
		"503",
		"server error",
	}
)

// Classify maps a failure message to its Kind.
func Classify(message string) Kind {
	m := strings.ToLower(message)

	switch {
	case matchesAny(m, authPatterns):
		return KindAuth
	case matchesAny(m, networkPatterns):
		return KindNetwork
	case matchesAny(m, serverPatterns):
		return KindServer
	default:
		return KindUnknown
	}
}

func matchesAny(m string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(m, p) {
			return true
		}
	}
	return false
}
