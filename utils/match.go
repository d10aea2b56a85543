package utils

import "strings"

// MatchOperation checks if an operation id ("METHOD /path" or a dotted id
// like "unit.maintenance") matches the given pattern. Patterns may include:
//   - Wildcard '*' which matches any sequence within a segment, or
//     everything when it ends the pattern.
//   - Parameter prefix ':' (e.g. ':id') matching any path segment.
//
// If the pattern includes an HTTP method (space as separator), both method
// and path are matched.
func MatchOperation(value, pattern string) bool {
	valParts := strings.SplitN(value, " ", 2)
	patParts := strings.SplitN(pattern, " ", 2)

	if len(patParts) == 2 {
		if len(valParts) != 2 {
			return false
		}
		if patParts[0] == "*" && patParts[1] == "*" {
			return true
		}
		if patParts[0] != "*" && valParts[0] != patParts[0] {
			return false
		}
		return matchPattern(valParts[1], patParts[1])
	}
	return matchPattern(value, pattern)
}

// matchPattern matches a plain value against a pattern containing '*'
// wildcards and ':' parameters. Parameters and in-segment wildcards stop at
// a segment boundary ('/' or '.').
func matchPattern(value, pattern string) bool {
	vIndex, pIndex := 0, 0
	vLen, pLen := len(value), len(pattern)

	for pIndex < pLen {
		switch pattern[pIndex] {
		case '*':
			if pIndex == pLen-1 {
				return true
			}
			for vIndex < vLen && !isBoundary(value[vIndex]) {
				vIndex++
			}
			pIndex++
		case ':':
			pIndex++
			for pIndex < pLen && !isBoundary(pattern[pIndex]) {
				pIndex++
			}
			for vIndex < vLen && !isBoundary(value[vIndex]) {
				vIndex++
			}
		default:
			if vIndex < vLen && pattern[pIndex] == value[vIndex] {
				vIndex++
				pIndex++
			} else {
				return false
			}
		}
	}

	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "/*"))
	}
	return vIndex == vLen && pIndex == pLen
}

func isBoundary(c byte) bool {
	return c == '/' || c == '.'
}
