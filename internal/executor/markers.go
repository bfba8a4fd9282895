package executor

import (
	"path/filepath"
	"strings"
)

// Marker lists used by the classification predicates. Matching is
// case-insensitive where noted.
var (
	// downloadTools are programs whose invocation marks a command as network-bound.
	// They are also recognised inside shell scripts passed as a single argument.
	downloadTools = []string{"curl", "wget"}

	// indexRefreshSubcommands mark a package-index refresh.
	indexRefreshSubcommands = []string{"update"}

	// benignWarnings are package-manager lines dropped from echoed and collected output.
	benignWarnings = []string{"apt does not have a stable cli interface"}

	// errorLineMarkers flag a streamed line for the operator console.
	errorLineMarkers = []string{"error", "failed", "warning", "cannot", "unable", "e:"}

	// lockMarkers flag package-manager output that mentions a held lock.
	lockMarkers = []string{"lock"}

	// notFoundMarkers flag elevated runs whose program was missing.
	notFoundMarkers = []string{"command not found"}

	// urlPrefixes identify URL-looking arguments.
	urlPrefixes = []string{"https://", "http://", "ftp://"}
)

// IsNetworkCommand reports whether argv downloads something or refreshes a
// package index, which makes it eligible for retry.
func IsNetworkCommand(argv []string) bool {
	for _, arg := range argv {
		for _, sub := range indexRefreshSubcommands {
			if arg == sub {
				return true
			}
		}
		for _, field := range strings.Fields(arg) {
			if isDownloadTool(field) {
				return true
			}
		}
	}
	return false
}

func isDownloadTool(token string) bool {
	base := filepath.Base(strings.Trim(token, `"'()$;|&`))
	for _, tool := range downloadTools {
		if base == tool {
			return true
		}
	}
	return false
}

// FirstURL returns the first URL-looking token in argv, searching inside
// shell scripts as well. It returns "" when there is none.
func FirstURL(argv []string) string {
	for _, arg := range argv {
		for _, field := range strings.Fields(arg) {
			field = strings.Trim(field, `"'()`)
			for _, prefix := range urlPrefixes {
				if strings.HasPrefix(strings.ToLower(field), prefix) {
					return field
				}
			}
		}
	}
	return ""
}

// IsBenignWarning reports whether a package-manager output line is a known
// harmless warning.
func IsBenignWarning(line string) bool {
	return containsAnyFold(line, benignWarnings)
}

// IsErrorLine reports whether an output line looks like an error or warning.
func IsErrorLine(line string) bool {
	return containsAnyFold(line, errorLineMarkers)
}

// MentionsLock reports whether output mentions a package-manager lock.
func MentionsLock(output string) bool {
	return containsAnyFold(output, lockMarkers)
}

// MentionsCommandNotFound reports whether output contains a shell or sudo
// "command not found" message.
func MentionsCommandNotFound(output string) bool {
	return containsAnyFold(output, notFoundMarkers)
}

func containsAnyFold(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
