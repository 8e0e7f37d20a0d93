// Package semver matches Cargo version requirements against package versions.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3 that adapts
// Cargo's requirement syntax: a bare comparator such as "1.2.3" means
// "^1.2.3" in Cargo but "=1.2.3" in Masterminds, so bare comparators are
// rewritten with an explicit caret before parsing.
package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
type Version struct {
	v *mm.Version
}

// Requirement is a Cargo version requirement such as "^1.2", ">=0.3, <0.5" or
// "*".
type Requirement struct {
	raw string
	c   *mm.Constraints
}

// ParseVersion parses a strict semantic version, as used for package
// versions.
func ParseVersion(raw string) (*Version, error) {
	v, err := mm.StrictNewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return &Version{v: v}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(raw string) *Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseRustVersion parses a rust-version field, which may omit the minor
// and patch components ("1.70").
func ParseRustVersion(raw string) (*Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("semver: parse rust-version %q: %w", raw, err)
	}
	return &Version{v: v}, nil
}

func (v *Version) String() string { return v.v.String() }

func (v *Version) Major() uint64 { return v.v.Major() }

func (v *Version) Minor() uint64 { return v.v.Minor() }

func (v *Version) Patch() uint64 { return v.v.Patch() }

func (v *Version) Prerelease() string { return v.v.Prerelease() }

// Compare compares v and o, returning -1, 0 or 1. Build metadata is ignored.
func (v *Version) Compare(o *Version) int { return v.v.Compare(o.v) }

// Equal reports whether v and o have the same precedence.
func (v *Version) Equal(o *Version) bool { return v.v.Equal(o.v) }

// MarshalText implements encoding.TextMarshaler.
func (v *Version) MarshalText() ([]byte, error) { return []byte(v.v.String()), nil }

// ParseRequirement parses a Cargo version requirement. The empty string is
// treated as "*".
func ParseRequirement(raw string) (*Requirement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "*"
	}
	c, err := mm.NewConstraint(toMasterminds(raw))
	if err != nil {
		return nil, fmt.Errorf("semver: parse requirement %q: %w", raw, err)
	}
	return &Requirement{raw: raw, c: c}, nil
}

// MustParseRequirement is like ParseRequirement but panics on error.
func MustParseRequirement(raw string) *Requirement {
	r, err := ParseRequirement(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// AtLeast returns the requirement ">=v".
func AtLeast(v *Version) *Requirement {
	raw := ">=" + v.String()
	c, err := mm.NewConstraint(raw)
	if err != nil {
		panic(fmt.Sprintf("semver: constraint for valid version %s: %v", v, err))
	}
	return &Requirement{raw: raw, c: c}
}

// String returns the requirement as written.
func (r *Requirement) String() string { return r.raw }

// MarshalText implements encoding.TextMarshaler.
func (r *Requirement) MarshalText() ([]byte, error) { return []byte(r.raw), nil }

// Matches reports whether v satisfies r.
//
// Cargo accepts a pre-release version when the requirement would be satisfied
// by the same version without its pre-release tag, so that a path or git
// dependency at 0.3.0-alpha.1 still satisfies "0.3". Matches does the same.
func (r *Requirement) Matches(v *Version) bool {
	if r == nil || v == nil {
		return false
	}
	if r.c.Check(v.v) {
		return true
	}
	if v.v.Prerelease() == "" {
		return false
	}
	stripped, err := v.v.SetPrerelease("")
	if err != nil {
		return false
	}
	return r.c.Check(&stripped)
}

// toMasterminds rewrites bare comparators ("1.2.3") to explicit caret
// comparators ("^1.2.3"). Wildcards are left alone.
func toMasterminds(raw string) string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' && !strings.ContainsAny(p, "*xX") {
			p = "^" + p
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}
