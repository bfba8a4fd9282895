package executor

import (
	"path/filepath"
	"slices"
	"strings"
)

var (
	// packageManagerPrograms are the system package-manager binaries.
	packageManagerPrograms = []string{"apt", "apt-get"}

	// quietFlags already present suppress quiet-flag injection.
	quietFlags = []string{"-q", "-qq", "-qqq"}

	// packageManagerEnv forces non-interactive frontends.
	packageManagerEnv = []string{
		"DEBIAN_FRONTEND=noninteractive",
		"APT_LISTCHANGES_FRONTEND=none",
	}
)

const (
	quietFlag      = "-qq"
	optionFlag     = "-o"
	statusFdOption = "APT::Status-Fd=/dev/null"
	statusFdKey    = "APT::Status-Fd="
)

// PackageManagerIndex returns the position of the package-manager program in
// argv, or -1. The program is looked for at position 0, or at position 1 when
// an elevation prefix was prepended.
func PackageManagerIndex(argv []string, elevated bool) int {
	idx := 0
	if elevated {
		idx = 1
	}
	if len(argv) <= idx {
		return -1
	}
	if slices.Contains(packageManagerPrograms, filepath.Base(argv[idx])) {
		return idx
	}
	return -1
}

// IsPackageManagerCommand reports whether argv invokes the system package manager.
func IsPackageManagerCommand(argv []string, elevated bool) bool {
	return PackageManagerIndex(argv, elevated) >= 0
}

// NormalizeQuiet returns a copy of argv with package-manager verbosity reduced:
// a -qq flag after the program (for update) or after the install subcommand,
// and a trailing option that silences the status side-channel.
// It never mutates argv and applying it twice is a no-op.
func NormalizeQuiet(argv []string, elevated bool) []string {
	out := slices.Clone(argv)
	idx := PackageManagerIndex(out, elevated)
	if idx < 0 {
		return out
	}

	if !hasAny(out, quietFlags) {
		rest := out[idx+1:]
		if slices.Contains(rest, "update") {
			out = slices.Insert(out, idx+1, quietFlag)
		} else if i := slices.Index(rest, "install"); i >= 0 {
			out = slices.Insert(out, idx+1+i+1, quietFlag)
		}
	}

	if !hasStatusFdOption(out) {
		out = append(out, optionFlag, statusFdOption)
	}
	return out
}

// PackageName returns the first non-flag argument after the install
// subcommand, or "".
func PackageName(argv []string) string {
	i := slices.Index(argv, "install")
	if i < 0 {
		return ""
	}
	skipNext := false
	for _, arg := range argv[i+1:] {
		if skipNext {
			skipNext = false
			continue
		}
		if arg == optionFlag {
			skipNext = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return arg
	}
	return ""
}

// withPackageManagerEnv returns base plus the non-interactive frontend
// variables, replacing any existing values.
func withPackageManagerEnv(base []string) []string {
	env := make([]string, 0, len(base)+len(packageManagerEnv))
	for _, kv := range base {
		if !overridden(kv) {
			env = append(env, kv)
		}
	}
	return append(env, packageManagerEnv...)
}

func overridden(kv string) bool {
	for _, forced := range packageManagerEnv {
		key := forced[:strings.IndexByte(forced, '=')+1]
		if strings.HasPrefix(kv, key) {
			return true
		}
	}
	return false
}

func hasAny(argv []string, flags []string) bool {
	for _, arg := range argv {
		if slices.Contains(flags, arg) {
			return true
		}
	}
	return false
}

func hasStatusFdOption(argv []string) bool {
	for _, arg := range argv {
		if strings.HasPrefix(arg, statusFdKey) {
			return true
		}
	}
	return false
}
