// Package routing provides shared path-matching helpers used by the rate
// limiter, the access log and the metrics middleware.
package routing

import "strings"

// MatchesPrefix checks if path matches prefix with boundary enforcement.
// The path must either equal the prefix, the prefix must end with "/",
// or the character after the prefix in path must be "/".
func MatchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	if prefix[len(prefix)-1] == '/' {
		return true
	}
	return path[len(prefix)] == '/'
}

// Longest returns the longest prefix in prefixes that matches path.
func Longest(path string, prefixes []string) (string, bool) {
	best := ""
	for _, p := range prefixes {
		if len(p) > len(best) && MatchesPrefix(path, p) {
			best = p
		}
	}
	return best, best != ""
}

// Unmatched is the label reported for paths outside an EndpointSet.
const Unmatched = "unmatched"

// EndpointSet is a fixed set of exact endpoint paths. It turns arbitrary
// request paths into a bounded label space.
type EndpointSet struct {
	paths map[string]struct{}
}

// NewEndpointSet builds a set from the given exact paths.
func NewEndpointSet(paths ...string) *EndpointSet {
	s := &EndpointSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	return s
}

// Label returns path when it is a member of the set and Unmatched otherwise.
func (s *EndpointSet) Label(path string) string {
	if _, ok := s.paths[path]; ok {
		return path
	}
	return Unmatched
}
