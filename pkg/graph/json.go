package graph

import (
	"encoding/json"
)

// =============================================================================
// Serialization Views
// =============================================================================

// PackageView is the JSON form of a package, used for API responses and
// command output. Conditions are rendered with PlatformSpecs.String.
type PackageView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Source       SourceView      `json:"source"`
	Edition      string          `json:"edition"`
	RustVersion  string          `json:"rust_version,omitempty"`
	ManifestPath string          `json:"manifest_path"`
	Publish      *[]string       `json:"publish"`
	Description  string          `json:"description,omitempty"`
	License      string          `json:"license,omitempty"`
	Repository   string          `json:"repository,omitempty"`
	ResolvedName *string         `json:"resolved_name"`
	Features     []FeatureView   `json:"features"`
	OptionalDeps []string        `json:"optional_deps"`
	Targets      []TargetView    `json:"targets"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// SourceView is the JSON form of a PackageSource.
type SourceView struct {
	Kind string `json:"kind"`
	// Path is set for workspace and path sources, Repr for external ones.
	Path *string `json:"path,omitempty"`
	Repr string  `json:"repr,omitempty"`
}

// FeatureView is one named feature.
type FeatureView struct {
	Name string   `json:"name"`
	Deps []string `json:"deps"`
}

// TargetView is one build target.
type TargetView struct {
	ID               string   `json:"id"`
	Kind             string   `json:"kind"`
	CrateTypes       []string `json:"crate_types,omitempty"`
	LibName          string   `json:"lib_name,omitempty"`
	RequiredFeatures []string `json:"required_features,omitempty"`
	Path             string   `json:"path"`
	Edition          string   `json:"edition"`
}

// LinkView is the JSON form of a PackageLink. Kinds the dependency is not
// declared with are omitted.
type LinkView struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	DepName      string   `json:"dep_name"`
	ResolvedName string   `json:"resolved_name"`
	VersionReq   string   `json:"version_req"`
	Registry     string   `json:"registry,omitempty"`
	Path         string   `json:"path,omitempty"`
	Normal       *ReqView `json:"normal,omitempty"`
	Build        *ReqView `json:"build,omitempty"`
	Dev          *ReqView `json:"dev,omitempty"`
}

// ReqView is the JSON form of a DependencyReq.
type ReqView struct {
	Status   string    `json:"status"`
	Required *HalfView `json:"required,omitempty"`
	Optional *HalfView `json:"optional,omitempty"`
}

// HalfView is the JSON form of a DepRequiredOrOptional.
type HalfView struct {
	BuildIf             string            `json:"build_if"`
	DefaultFeaturesIf   string            `json:"default_features_if"`
	NoDefaultFeaturesIf string            `json:"no_default_features_if"`
	Features            map[string]string `json:"features,omitempty"`
}

// NewPackageView converts a package to its JSON form.
func NewPackageView(p *PackageMetadata) PackageView {
	v := PackageView{
		ID:           string(p.ID),
		Name:         p.Name,
		Version:      p.Version.String(),
		Source:       newSourceView(p.Source),
		Edition:      p.Edition,
		ManifestPath: p.ManifestPath,
		Description:  p.Description,
		License:      p.License,
		Repository:   p.Repository,
		Features:     make([]FeatureView, len(p.features)),
		OptionalDeps: p.optionalDeps,
		Metadata:     p.MetadataTable,
	}
	if p.RustVersion != nil {
		v.RustVersion = p.RustVersion.String()
	}
	if !p.Publish.Unrestricted {
		registries := p.Publish.Registries
		if registries == nil {
			registries = []string{}
		}
		v.Publish = &registries
	}
	if name, ok := p.ResolvedName(); ok {
		v.ResolvedName = &name
	}
	if v.OptionalDeps == nil {
		v.OptionalDeps = []string{}
	}
	for i, f := range p.features {
		deps := make([]string, len(f.Deps))
		for j, d := range f.Deps {
			deps[j] = d.String()
		}
		v.Features[i] = FeatureView{Name: f.Name, Deps: deps}
	}
	for _, t := range p.BuildTargets() {
		v.Targets = append(v.Targets, TargetView{
			ID:               t.ID.String(),
			Kind:             t.Kind.String(),
			CrateTypes:       t.CrateTypes,
			LibName:          t.LibName,
			RequiredFeatures: t.RequiredFeatures,
			Path:             t.Path,
			Edition:          t.Edition,
		})
	}
	return v
}

func (k SourceKind) String() string {
	switch k {
	case SourceWorkspace:
		return "workspace"
	case SourcePath:
		return "path"
	case SourceCratesIO:
		return "crates-io"
	default:
		return "external"
	}
}

func newSourceView(s PackageSource) SourceView {
	v := SourceView{Kind: s.Kind.String()}
	switch s.Kind {
	case SourceWorkspace, SourcePath:
		path := s.Path
		v.Path = &path
	case SourceExternal:
		v.Repr = s.Repr
	}
	return v
}

// NewLinkView converts a link to its JSON form.
func NewLinkView(l *PackageLink) LinkView {
	return LinkView{
		From:         string(l.From),
		To:           string(l.To),
		DepName:      l.DepName,
		ResolvedName: l.ResolvedName,
		VersionReq:   l.VersionReq,
		Registry:     l.Registry,
		Path:         l.Path,
		Normal:       newReqView(l.Normal),
		Build:        newReqView(l.Build),
		Dev:          newReqView(l.Dev),
	}
}

func newReqView(r DependencyReq) *ReqView {
	if !r.IsPresent() {
		return nil
	}
	return &ReqView{
		Status:   r.Status(),
		Required: newHalfView(r.Required),
		Optional: newHalfView(r.Optional),
	}
}

func newHalfView(d DepRequiredOrOptional) *HalfView {
	if !d.IsPresent() {
		return nil
	}
	v := &HalfView{
		BuildIf:             d.BuildIf.String(),
		DefaultFeaturesIf:   d.DefaultFeaturesIf.String(),
		NoDefaultFeaturesIf: d.NoDefaultFeaturesIf.String(),
	}
	if len(d.FeatureTargets) > 0 {
		v.Features = make(map[string]string, len(d.FeatureTargets))
		for f, specs := range d.FeatureTargets {
			v.Features[f] = specs.String()
		}
	}
	return v
}
