package graph

import (
	"encoding/json"
	"strings"

	"github.com/guppy-rs/guppy/pkg/dag"
	"github.com/guppy-rs/guppy/pkg/semver"
)

// PackageID is the opaque identifier Cargo assigns to a package: one
// concrete (name, version, source) combination.
type PackageID string

func (id PackageID) String() string { return string(id) }

// SourceKind classifies where a package comes from.
type SourceKind int

const (
	// SourceWorkspace is a workspace member. The path is relative to the
	// workspace root, with forward slashes; the root package has path "".
	SourceWorkspace SourceKind = iota
	// SourcePath is a non-member local package. The path is relative to the
	// workspace root when possible and absolute otherwise.
	SourcePath
	// SourceCratesIO is the default registry.
	SourceCratesIO
	// SourceExternal is any other source: an alternate registry or a git
	// repository. The source string is kept verbatim.
	SourceExternal
)

// Source strings Cargo uses for crates.io.
const (
	CratesIOGitURL    = "registry+https://github.com/rust-lang/crates.io-index"
	CratesIOSparseURL = "sparse+https://index.crates.io/"
)

// PackageSource describes where a package's source code lives.
type PackageSource struct {
	Kind SourceKind
	// Path is set for SourceWorkspace and SourcePath.
	Path string
	// Repr is the raw source string for SourceExternal.
	Repr string
}

// IsWorkspace reports whether the package is a workspace member.
func (s PackageSource) IsWorkspace() bool { return s.Kind == SourceWorkspace }

// IsLocal reports whether the package's sources are on the local file
// system (a workspace member or a path dependency).
func (s PackageSource) IsLocal() bool { return s.Kind == SourceWorkspace || s.Kind == SourcePath }

// IsCratesIO reports whether the package comes from crates.io.
func (s PackageSource) IsCratesIO() bool { return s.Kind == SourceCratesIO }

func (s PackageSource) String() string {
	switch s.Kind {
	case SourceWorkspace, SourcePath:
		return s.Path
	case SourceCratesIO:
		return CratesIOGitURL
	default:
		return s.Repr
	}
}

func isCratesIO(source string) bool {
	return source == CratesIOGitURL || source == CratesIOSparseURL
}

// PackagePublish is the set of registries a package may be published to.
type PackagePublish struct {
	// Unrestricted is true when the manifest has no publish field.
	Unrestricted bool
	// Registries lists allowed registries. An empty list together with
	// Unrestricted == false means the package is never published.
	Registries []string
}

// IsNever reports whether the package must not be published anywhere.
func (p PackagePublish) IsNever() bool { return !p.Unrestricted && len(p.Registries) == 0 }

func newPackagePublish(registries *[]string) PackagePublish {
	if registries == nil {
		return PackagePublish{Unrestricted: true}
	}
	return PackagePublish{Registries: *registries}
}

// FeatureDepKind classifies an entry in a named feature's list.
type FeatureDepKind int

const (
	// NamedFeature enables another feature of the same package: "std".
	NamedFeature FeatureDepKind = iota
	// OptionalDependency enables an optional dependency: "dep:serde".
	OptionalDependency
	// DependencyNamedFeature enables a feature of a dependency:
	// "serde/derive", or "serde?/derive" when it should not also enable an
	// optional serde.
	DependencyNamedFeature
)

// NamedFeatureDep is one entry in a named feature's list.
type NamedFeatureDep struct {
	Kind FeatureDepKind
	// Name is the feature name for NamedFeature and the dependency name
	// otherwise.
	Name string
	// Feature is the dependency's feature, for DependencyNamedFeature.
	Feature string
	// Weak is set for "dep?/feature".
	Weak bool
}

// ParseNamedFeatureDep parses a feature list entry as written in Cargo.toml.
func ParseNamedFeatureDep(s string) NamedFeatureDep {
	if dep, feature, ok := strings.Cut(s, "/"); ok {
		if name, weak := strings.CutSuffix(dep, "?"); weak {
			return NamedFeatureDep{Kind: DependencyNamedFeature, Name: name, Feature: feature, Weak: true}
		}
		return NamedFeatureDep{Kind: DependencyNamedFeature, Name: dep, Feature: feature}
	}
	if name, ok := strings.CutPrefix(s, "dep:"); ok {
		return NamedFeatureDep{Kind: OptionalDependency, Name: name}
	}
	return NamedFeatureDep{Kind: NamedFeature, Name: s}
}

func (d NamedFeatureDep) String() string {
	switch d.Kind {
	case OptionalDependency:
		return "dep:" + d.Name
	case DependencyNamedFeature:
		if d.Weak {
			return d.Name + "?/" + d.Feature
		}
		return d.Name + "/" + d.Feature
	default:
		return d.Name
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d NamedFeatureDep) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Feature is a named feature with its dependencies.
type Feature struct {
	Name string
	Deps []NamedFeatureDep
}

// PackageMetadata is everything known about a package. It is immutable once
// the graph is built.
type PackageMetadata struct {
	ID           PackageID
	Name         string
	Version      *semver.Version
	ManifestPath string
	Source       PackageSource
	Publish      PackagePublish
	Edition      string

	// RustVersion is the minimum supported Rust version, if declared, and
	// RustVersionReq is the equivalent ">=" requirement.
	RustVersion    *semver.Version
	RustVersionReq *semver.Requirement

	Authors       []string
	Description   string
	License       string
	LicenseFile   string
	Categories    []string
	Keywords      []string
	Readme        string
	Repository    string
	Homepage      string
	Documentation string
	Links         string
	DefaultRun    string
	MetadataTable json.RawMessage

	// HasDefaultFeature reports whether the manifest declares a "default"
	// feature.
	HasDefaultFeature bool

	index        dag.NodeIndex
	resolvedName resolvedName
	features     []Feature
	featureIndex map[string]int
	optionalDeps []string
	targets      map[BuildTargetID]*BuildTarget
}

// Index returns the dense node index of the package in its graph.
func (m *PackageMetadata) Index() dag.NodeIndex { return m.index }

// InWorkspace reports whether the package is a workspace member.
func (m *PackageMetadata) InWorkspace() bool { return m.Source.IsWorkspace() }

// ResolvedName returns the name dependents use to refer to this package's
// library in source code, and false if the package has no library target.
func (m *PackageMetadata) ResolvedName() (string, bool) {
	return m.resolvedName.name, m.resolvedName.kind != noLibTarget
}

// Features returns the named features: explicit ones sorted by name, then
// one implicit feature per optional dependency that no feature enables with
// "dep:", in optional dependency order.
func (m *PackageMetadata) Features() []Feature { return m.features }

// Feature returns the named feature with the given name.
func (m *PackageMetadata) Feature(name string) (Feature, bool) {
	i, ok := m.featureIndex[name]
	if !ok {
		return Feature{}, false
	}
	return m.features[i], true
}

// OptionalDeps returns the names (renamed where applicable) of optional
// dependencies in declaration order.
func (m *PackageMetadata) OptionalDeps() []string { return m.optionalDeps }

// BuildTargets returns the build targets ordered by identity.
func (m *PackageMetadata) BuildTargets() []*BuildTarget { return sortedTargets(m.targets) }

// BuildTarget returns the build target with the given identity.
func (m *PackageMetadata) BuildTarget(id BuildTargetID) (*BuildTarget, bool) {
	t, ok := m.targets[id]
	return t, ok
}

// IsProcMacro reports whether the package's library is a procedural macro.
func (m *PackageMetadata) IsProcMacro() bool {
	lib, ok := m.targets[LibraryID]
	return ok && lib.Kind == CompileProcMacro
}

// HasBuildScript reports whether the package has a build script.
func (m *PackageMetadata) HasBuildScript() bool {
	_, ok := m.targets[BuildTargetID{Kind: BuildScript}]
	return ok
}
