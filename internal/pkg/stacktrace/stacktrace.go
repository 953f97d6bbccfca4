// Package stacktrace trims panic stacks down to this module's own frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/...go:line" frames of a debug.Stack
// dump, innermost first. Frames of the recovery helpers are skipped.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		end := strings.IndexByte(line[idx:], ' ')
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}

		file := line[:end]
		internalIdx := strings.Index(file, "/internal/")
		if internalIdx == -1 {
			continue
		}
		file = file[internalIdx+1:]
		if strings.HasPrefix(file, "internal/pkg/stacktrace/") {
			continue
		}
		paths = append(paths, file)
	}
	return paths
}
