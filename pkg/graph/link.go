package graph

import (
	"maps"
	"slices"

	"github.com/guppy-rs/guppy/pkg/dag"
	"github.com/guppy-rs/guppy/pkg/metadata"
	"github.com/guppy-rs/guppy/pkg/platform"
)

// DependencyKind is the section of the manifest a dependency is declared in.
type DependencyKind int

const (
	// DependencyNormal is [dependencies].
	DependencyNormal DependencyKind = iota
	// DependencyBuild is [build-dependencies], used only by build scripts.
	DependencyBuild
	// DependencyDev is [dev-dependencies], used by tests, examples and
	// benchmarks.
	DependencyDev
)

// DependencyKinds lists every kind in order.
var DependencyKinds = []DependencyKind{DependencyNormal, DependencyBuild, DependencyDev}

func (k DependencyKind) String() string {
	switch k {
	case DependencyNormal:
		return "normal"
	case DependencyBuild:
		return "build"
	default:
		return "dev"
	}
}

// ParseDependencyKind parses "normal", "build" or "dev".
func ParseDependencyKind(s string) (DependencyKind, bool) {
	switch metadata.DependencyKind(s) {
	case metadata.KindNormal:
		return DependencyNormal, true
	case metadata.KindBuild:
		return DependencyBuild, true
	case metadata.KindDev:
		return DependencyDev, true
	}
	return 0, false
}

// DepRequiredOrOptional is one half of a [DependencyReq]: the conditions
// contributed by either the required or the optional declarations of a
// dependency. Conditions only ever grow by union as declarations are folded
// in.
type DepRequiredOrOptional struct {
	// BuildIf is where the dependency is built at all.
	BuildIf platform.PlatformSpecs
	// DefaultFeaturesIf is where default features are requested.
	DefaultFeaturesIf platform.PlatformSpecs
	// NoDefaultFeaturesIf is where default-features = false was written.
	NoDefaultFeaturesIf platform.PlatformSpecs
	// FeatureTargets maps each requested feature to where it is requested.
	FeatureTargets map[string]platform.PlatformSpecs
}

func (d *DepRequiredOrOptional) addInstance(spec *platform.TargetSpec, dep *metadata.Dependency) {
	d.BuildIf.Add(spec)
	if dep.UsesDefaultFeatures {
		d.DefaultFeaturesIf.Add(spec)
	} else {
		d.NoDefaultFeaturesIf.Add(spec)
	}
	for _, f := range dep.Features {
		if d.FeatureTargets == nil {
			d.FeatureTargets = make(map[string]platform.PlatformSpecs)
		}
		specs := d.FeatureTargets[f]
		specs.Add(spec)
		d.FeatureTargets[f] = specs
	}
}

func (d *DepRequiredOrOptional) merge(other DepRequiredOrOptional) {
	d.BuildIf.Union(other.BuildIf)
	d.DefaultFeaturesIf.Union(other.DefaultFeaturesIf)
	d.NoDefaultFeaturesIf.Union(other.NoDefaultFeaturesIf)
	for f, specs := range other.FeatureTargets {
		if d.FeatureTargets == nil {
			d.FeatureTargets = make(map[string]platform.PlatformSpecs)
		}
		merged := d.FeatureTargets[f]
		merged.Union(specs)
		d.FeatureTargets[f] = merged
	}
}

// IsPresent reports whether any declaration contributed to this half.
func (d DepRequiredOrOptional) IsPresent() bool { return !d.BuildIf.IsNever() }

// Features returns the requested feature names in sorted order.
func (d DepRequiredOrOptional) Features() []string {
	return slices.Sorted(maps.Keys(d.FeatureTargets))
}

// FeatureOn reports whether feature is requested on p.
func (d DepRequiredOrOptional) FeatureOn(feature string, p *platform.Platform) platform.Ternary {
	return d.FeatureTargets[feature].Eval(p)
}

// Equal reports whether d and other hold the same conditions.
func (d DepRequiredOrOptional) Equal(other DepRequiredOrOptional) bool {
	return d.BuildIf.Equal(other.BuildIf) &&
		d.DefaultFeaturesIf.Equal(other.DefaultFeaturesIf) &&
		d.NoDefaultFeaturesIf.Equal(other.NoDefaultFeaturesIf) &&
		maps.EqualFunc(d.FeatureTargets, other.FeatureTargets, platform.PlatformSpecs.Equal)
}

// DependencyReq describes one kind (normal, build or dev) of dependency
// between two packages. A dependency may be optional in one declaration and
// required in another, so required and optional declarations are tracked
// separately.
type DependencyReq struct {
	Required DepRequiredOrOptional
	// Optional is never present for dev-dependencies.
	Optional DepRequiredOrOptional
}

func (r *DependencyReq) addInstance(spec *platform.TargetSpec, dep *metadata.Dependency) {
	if dep.Optional {
		r.Optional.addInstance(spec, dep)
	} else {
		r.Required.addInstance(spec, dep)
	}
}

func (r *DependencyReq) merge(other DependencyReq) {
	r.Required.merge(other.Required)
	r.Optional.merge(other.Optional)
}

// IsPresent reports whether the dependency is declared with this kind at
// all.
func (r DependencyReq) IsPresent() bool { return r.Required.IsPresent() || r.Optional.IsPresent() }

// IsOptionalOnly reports whether every declaration of this kind is
// optional.
func (r DependencyReq) IsOptionalOnly() bool { return !r.Required.IsPresent() && r.Optional.IsPresent() }

// RequiredOn reports whether the dependency is unconditionally built on p,
// independent of feature selection.
func (r DependencyReq) RequiredOn(p *platform.Platform) platform.Ternary {
	return r.Required.BuildIf.Eval(p)
}

// EnabledOn reports whether the dependency can be built on p, counting
// optional declarations as enabled.
func (r DependencyReq) EnabledOn(p *platform.Platform) platform.Ternary {
	return r.Required.BuildIf.Eval(p).Or(r.Optional.BuildIf.Eval(p))
}

// Status summarizes where the dependency is built: "always", "never",
// "optional", or the condition set.
func (r DependencyReq) Status() string {
	switch {
	case r.Required.BuildIf.IsAlways():
		return "always"
	case r.Required.IsPresent():
		return r.Required.BuildIf.String()
	case r.Optional.IsPresent():
		return "optional"
	default:
		return "never"
	}
}

// Equal reports whether r and other hold the same conditions.
func (r DependencyReq) Equal(other DependencyReq) bool {
	return r.Required.Equal(other.Required) && r.Optional.Equal(other.Optional)
}

// PackageLink is the edge from a package to one of its dependencies. There
// is at most one link per ordered pair of packages; every manifest
// declaration that produced the edge is folded into it.
type PackageLink struct {
	From PackageID
	To   PackageID

	// DepName is the name the dependency is declared under (the rename, if
	// any) in the first matching declaration.
	DepName string
	// ResolvedName is the symbol the dependency is referenced by in source
	// code.
	ResolvedName string
	// VersionReq, Registry and Path come from the first matching
	// declaration and are informational.
	VersionReq string
	Registry   string
	Path       string

	Normal DependencyReq
	Build  DependencyReq
	Dev    DependencyReq

	index dag.EdgeIndex
}

// Index returns the dense edge index of the link in its graph.
func (l *PackageLink) Index() dag.EdgeIndex { return l.index }

// Req returns the requirement record for kind.
func (l *PackageLink) Req(kind DependencyKind) *DependencyReq {
	switch kind {
	case DependencyNormal:
		return &l.Normal
	case DependencyBuild:
		return &l.Build
	default:
		return &l.Dev
	}
}

// DevOnly reports whether the link exists only because of dev-dependencies.
func (l *PackageLink) DevOnly() bool {
	return !l.Normal.IsPresent() && !l.Build.IsPresent()
}

// EnabledOn reports whether the link is built on p for any of the given
// kinds, or for every kind if none are given.
func (l *PackageLink) EnabledOn(p *platform.Platform, kinds ...DependencyKind) platform.Ternary {
	if len(kinds) == 0 {
		kinds = DependencyKinds
	}
	result := platform.Disabled
	for _, k := range kinds {
		result = result.Or(l.Req(k).EnabledOn(p))
	}
	return result
}

// Selected reports whether l has a declaration of one of kinds, or of any
// kind if none are given, that may be built on p. A nil p matches every
// platform.
func (l *PackageLink) Selected(p *platform.Platform, kinds ...DependencyKind) bool {
	if p != nil {
		return l.EnabledOn(p, kinds...) != platform.Disabled
	}
	if len(kinds) == 0 {
		kinds = DependencyKinds
	}
	for _, k := range kinds {
		if l.Req(k).IsPresent() {
			return true
		}
	}
	return false
}

// merge folds the conditions of other, a link between the same packages,
// into l. Scalar fields keep their first-seen values.
func (l *PackageLink) merge(other *PackageLink) {
	l.Normal.merge(other.Normal)
	l.Build.merge(other.Build)
	l.Dev.merge(other.Dev)
	if l.Registry == "" {
		l.Registry = other.Registry
	}
	if l.Path == "" {
		l.Path = other.Path
	}
}
