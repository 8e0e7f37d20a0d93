package platform

import (
	"slices"
	"strings"
)

// PlatformSpecs is the set of platforms on which something is enabled.
//
// The zero value is the empty set: enabled nowhere. A set becomes "always"
// once an unconditional entry is added, and stays that way.
type PlatformSpecs struct {
	always bool
	specs  []*TargetSpec
}

// Always returns a set that is enabled on every platform.
func Always() PlatformSpecs { return PlatformSpecs{always: true} }

// Add adds spec to the set. A nil spec means "unconditionally".
func (p *PlatformSpecs) Add(spec *TargetSpec) {
	if p.always {
		return
	}
	if spec == nil {
		p.always = true
		p.specs = nil
		return
	}
	i, found := slices.BinarySearchFunc(p.specs, spec, compareSpecs)
	if found {
		return
	}
	p.specs = slices.Insert(slices.Clip(p.specs), i, spec)
}

// Union adds every member of other to p.
func (p *PlatformSpecs) Union(other PlatformSpecs) {
	if other.always {
		p.Add(nil)
		return
	}
	for _, s := range other.specs {
		p.Add(s)
	}
}

// IsAlways reports whether the set is unconditionally enabled.
func (p PlatformSpecs) IsAlways() bool { return p.always }

// IsNever reports whether the set is empty.
func (p PlatformSpecs) IsNever() bool { return !p.always && len(p.specs) == 0 }

// Specs returns the member specs in sorted order. It returns nil for an
// "always" set.
func (p PlatformSpecs) Specs() []*TargetSpec { return slices.Clone(p.specs) }

// Equal reports whether p and other contain the same members.
func (p PlatformSpecs) Equal(other PlatformSpecs) bool {
	if p.always || other.always {
		return p.always == other.always
	}
	return slices.EqualFunc(p.specs, other.specs, func(a, b *TargetSpec) bool {
		return a.raw == b.raw
	})
}

// Eval evaluates the set against pl: enabled if any member is enabled,
// unknown if none is enabled but some are unknown.
func (p PlatformSpecs) Eval(pl *Platform) Ternary {
	if p.always {
		return Enabled
	}
	result := Disabled
	for _, s := range p.specs {
		switch s.Eval(pl) {
		case Enabled:
			return Enabled
		case Unknown:
			result = Unknown
		}
	}
	return result
}

func (p PlatformSpecs) String() string {
	switch {
	case p.always:
		return "always"
	case len(p.specs) == 0:
		return "never"
	}
	parts := make([]string, len(p.specs))
	for i, s := range p.specs {
		parts[i] = s.raw
	}
	return strings.Join(parts, " | ")
}

func compareSpecs(a, b *TargetSpec) int { return strings.Compare(a.raw, b.raw) }
