// Package pathdiff computes relative paths between absolute paths that may
// use different operating-system conventions.
//
// Package metadata produced on Windows contains paths such as
// C:\Users\dev\project\Cargo.toml, and that metadata is frequently consumed on
// Unix hosts (and vice versa). The functions in this package never consult the
// host OS: a path is treated as Windows-style when it starts with a drive
// letter, a UNC prefix (\\server\share), or one of the extended-length
// prefixes (\\?\, \\.\, \\?\UNC\). Forward-slash spellings of the same
// prefixes are accepted too.
//
// # Relative Paths
//
// [Diff] returns the relative path from a base to a target:
//
//	rel, err := pathdiff.Diff(`D:\a\ws\crate\Cargo.toml`, `D:\a\ws`)
//	// rel == "crate/Cargo.toml"
//
// Results always use forward slashes. [ErrUnrelated] is returned when no
// relative path can express the relationship: different drive letters,
// different UNC server or share names, or one Windows-style path and one
// POSIX path.
//
// # Case Sensitivity
//
// Drive letters are compared case-insensitively. UNC server and share names,
// and all other components, are compared case-sensitively, unlike real
// Windows file systems.
package pathdiff

import (
	"errors"
	"path"
	"strings"
)

// ErrUnrelated is returned by [Diff] when no relative path exists between the
// two inputs.
var ErrUnrelated = errors.New("no relative path between paths")

// windowsPrefix is the prefix of a Windows absolute path. Exactly one of
// drive or (server, share) is set.
type windowsPrefix struct {
	drive  byte
	server string
	share  string
}

// parseWindowsPrefix splits s into its Windows prefix and the remainder. The
// boolean result is false when s is not a Windows absolute path.
func parseWindowsPrefix(s string) (windowsPrefix, string, bool) {
	if strings.HasPrefix(s, `\\?\`) || strings.HasPrefix(s, "//?/") {
		inner := s[4:]
		if strings.HasPrefix(inner, `UNC\`) || strings.HasPrefix(inner, "UNC/") {
			return parseUNC(inner[4:])
		}
		return parseDriveOrUNC(inner)
	}
	// Device paths have no UNC variant.
	if strings.HasPrefix(s, `\\.\`) || strings.HasPrefix(s, "//./") {
		return parseDriveOrUNC(s[4:])
	}
	return parseDriveOrUNC(s)
}

func parseDriveOrUNC(s string) (windowsPrefix, string, bool) {
	if len(s) >= 3 && isASCIILetter(s[0]) && s[1] == ':' && isSep(s[2]) {
		return windowsPrefix{drive: toUpper(s[0])}, s[2:], true
	}
	if strings.HasPrefix(s, `\\`) || strings.HasPrefix(s, "//") {
		return parseUNC(s[2:])
	}
	return windowsPrefix{}, "", false
}

// parseUNC expects server\share\rest with the leading separators stripped.
func parseUNC(s string) (windowsPrefix, string, bool) {
	sep1 := strings.IndexAny(s, `\/`)
	if sep1 < 0 {
		return windowsPrefix{}, "", false
	}
	server := s[:sep1]
	afterServer := s[sep1+1:]

	sep2 := strings.IndexAny(afterServer, `\/`)
	if sep2 < 0 {
		sep2 = len(afterServer)
	}
	share := afterServer[:sep2]
	if server == "" || share == "" {
		return windowsPrefix{}, "", false
	}
	return windowsPrefix{server: server, share: share}, afterServer[sep2:], true
}

// IsWindows reports whether p looks like a Windows absolute path.
func IsWindows(p string) bool {
	_, _, ok := parseWindowsPrefix(p)
	return ok
}

// NormalizeWindows converts backslashes to forward slashes if p is a
// Windows-style path, so that [Parent] and similar operations work on any
// host. Other paths are returned unchanged.
func NormalizeWindows(p string) string {
	if IsWindows(p) {
		return strings.ReplaceAll(p, `\`, "/")
	}
	return p
}

// Parent returns p without its final component. The boolean result is false
// when p has no parent (an empty path or a bare root). A single relative
// component has the empty path as its parent.
func Parent(p string) (string, bool) {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "", false
	}
	i := strings.LastIndex(p, "/")
	switch {
	case i < 0:
		return "", true
	case i == 0:
		return "/", true
	default:
		return p[:i], true
	}
}

// Diff returns the relative path from base to p.
//
// When both paths are Windows-style their prefixes must match; the remaining
// components are compared after normalizing separators. When neither is
// Windows-style the paths are diffed lexically as POSIX paths. A mix of the
// two returns [ErrUnrelated]. Trailing separators do not affect the result,
// and identical paths yield ".".
func Diff(p, base string) (string, error) {
	pPrefix, pRest, pWin := parseWindowsPrefix(p)
	bPrefix, bRest, bWin := parseWindowsPrefix(base)

	switch {
	case pWin && bWin:
		if pPrefix != bPrefix {
			return "", ErrUnrelated
		}
		return relative(components(pRest), components(bRest)), nil
	case !pWin && !bWin:
		return diffPOSIX(p, base)
	default:
		return "", ErrUnrelated
	}
}

func diffPOSIX(p, base string) (string, error) {
	pAbs := strings.HasPrefix(p, "/")
	bAbs := strings.HasPrefix(base, "/")
	if pAbs != bAbs {
		if pAbs {
			return path.Clean(p), nil
		}
		return "", ErrUnrelated
	}

	pParts := components(path.Clean(p))
	bParts := components(path.Clean(base))
	// A relative base that climbs out of its own root cannot be inverted.
	if len(bParts) > 0 && bParts[0] == ".." {
		return "", ErrUnrelated
	}
	return relative(pParts, bParts), nil
}

// components splits a path on either separator, dropping empty and "."
// components.
func components(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' })
	out := fields[:0]
	for _, f := range fields {
		if f != "." {
			out = append(out, f)
		}
	}
	return out
}

func relative(target, base []string) string {
	common := 0
	for common < len(target) && common < len(base) && target[common] == base[common] {
		common++
	}

	parts := make([]string, 0, len(base)-common+len(target)-common)
	for range len(base) - common {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)

	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func isSep(c byte) bool { return c == '\\' || c == '/' }

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
