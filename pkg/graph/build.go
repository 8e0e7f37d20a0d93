package graph

import (
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/guppy-rs/guppy/pkg/dag"
	gerrors "github.com/guppy-rs/guppy/pkg/errors"
	"github.com/guppy-rs/guppy/pkg/metadata"
	"github.com/guppy-rs/guppy/pkg/observability"
	"github.com/guppy-rs/guppy/pkg/pathdiff"
	"github.com/guppy-rs/guppy/pkg/semver"
)

// Option configures [Build].
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used for progress and tolerated anomalies.
// By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// FromJSON decodes "cargo metadata --format-version 1" output and builds
// its package graph.
func FromJSON(data []byte, opts ...Option) (*PackageGraph, error) {
	m, err := metadata.Parse(data)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "invalid cargo metadata")
	}
	return Build(m, opts...)
}

// FromReader is like FromJSON but reads the document from r.
func FromReader(r io.Reader, opts ...Option) (*PackageGraph, error) {
	m, err := metadata.Read(r)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "invalid cargo metadata")
	}
	return Build(m, opts...)
}

// Build constructs the package graph for m.
//
// Construction happens in two phases. The first adds a node for every
// package and classifies its build targets, which determines the name
// dependents use for it. The second matches every resolved dependency edge
// against the manifest declarations that produced it and folds them into a
// single [PackageLink] per package pair.
//
// Build fails on the first inconsistency and never returns a partial graph.
// Errors are *errors.Error values whose code names the violated invariant.
// Metadata generated with --no-deps has no resolve section; the graph then
// has no links.
func Build(m *metadata.Metadata, opts ...Option) (*PackageGraph, error) {
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	hooks := observability.Build()
	hooks.OnBuildStart(len(m.Packages))
	start := time.Now()

	g, err := newBuilder(m, o.logger).build()

	links := 0
	if g != nil {
		links = g.LinkCount()
	}
	hooks.OnBuildComplete(len(m.Packages), links, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("built package graph", "packages", g.Len(), "links", links, "elapsed", time.Since(start))
	return g, nil
}

type builder struct {
	meta    *metadata.Metadata
	logger  *log.Logger
	members map[PackageID]bool
	specs   *specCache
	graph   *PackageGraph
}

func newBuilder(m *metadata.Metadata, logger *log.Logger) *builder {
	members := make(map[PackageID]bool, len(m.WorkspaceMembers))
	for _, id := range m.WorkspaceMembers {
		members[PackageID(id)] = true
	}
	edges := 0
	if m.Resolve != nil {
		for _, n := range m.Resolve.Nodes {
			edges += len(n.Deps)
		}
	}
	return &builder{
		meta:    m,
		logger:  logger,
		members: members,
		specs:   newSpecCache(),
		graph: &PackageGraph{
			dag:      dag.New[PackageID, *PackageLink](len(m.Packages), edges),
			packages: make([]*PackageMetadata, 0, len(m.Packages)),
			ids:      make(map[PackageID]dag.NodeIndex, len(m.Packages)),
		},
	}
}

func (b *builder) build() (*PackageGraph, error) {
	b.logger.Debug("adding packages", "count", len(b.meta.Packages))
	for i := range b.meta.Packages {
		if err := b.addPackage(&b.meta.Packages[i]); err != nil {
			return nil, err
		}
	}
	for i := range b.meta.Packages {
		if err := b.fillPackage(&b.meta.Packages[i]); err != nil {
			return nil, err
		}
	}

	if b.meta.Resolve == nil {
		b.logger.Debug("metadata has no resolve section, skipping links")
	} else if err := b.addLinks(); err != nil {
		return nil, err
	}

	ws, err := b.workspace()
	if err != nil {
		return nil, err
	}
	b.graph.workspace = ws
	return b.graph, nil
}

// addPackage is the first phase: a node with its build targets.
func (b *builder) addPackage(p *metadata.Package) error {
	id := PackageID(p.ID)
	if _, dup := b.graph.ids[id]; dup {
		return gerrors.New(gerrors.ErrCodeInvalidPackage, "duplicate package ID '%s'", id)
	}

	version, err := semver.ParseVersion(p.Version)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidVersion, err, "package '%s' has invalid version", id)
	}
	targets, err := classifyTargets(id, p.Targets)
	if err != nil {
		return err
	}

	pkg := &PackageMetadata{
		ID:           id,
		Name:         p.Name,
		Version:      version,
		ManifestPath: p.ManifestPath,
		resolvedName: newResolvedName(p.Name, targets),
		targets:      targets,
	}
	pkg.index = b.graph.dag.AddNode(id)
	b.graph.ids[id] = pkg.index
	b.graph.packages = append(b.graph.packages, pkg)
	return nil
}

// fillPackage completes everything that does not affect dependency
// matching.
func (b *builder) fillPackage(p *metadata.Package) error {
	pkg := b.graph.packages[b.graph.ids[PackageID(p.ID)]]

	source, err := b.source(pkg.ID, p)
	if err != nil {
		return err
	}
	pkg.Source = source
	pkg.Publish = newPackagePublish(p.Publish)
	pkg.Edition = p.Edition

	if p.RustVersion != nil {
		v, err := semver.ParseRustVersion(*p.RustVersion)
		if err != nil {
			return gerrors.Wrap(gerrors.ErrCodeInvalidVersion, err, "package '%s' has invalid rust-version", pkg.ID)
		}
		pkg.RustVersion = v
		pkg.RustVersionReq = semver.AtLeast(v)
	}

	pkg.Authors = p.Authors
	pkg.Description = deref(p.Description)
	pkg.License = deref(p.License)
	pkg.LicenseFile = deref(p.LicenseFile)
	pkg.Categories = p.Categories
	pkg.Keywords = p.Keywords
	pkg.Readme = deref(p.Readme)
	pkg.Repository = deref(p.Repository)
	pkg.Homepage = deref(p.Homepage)
	pkg.Documentation = deref(p.Documentation)
	pkg.Links = deref(p.Links)
	pkg.DefaultRun = deref(p.DefaultRun)
	pkg.MetadataTable = p.Metadata

	pkg.optionalDeps = optionalDeps(p.Dependencies)
	_, pkg.HasDefaultFeature = p.Features["default"]
	features, err := namedFeatures(pkg.ID, p.Features, pkg.optionalDeps)
	if err != nil {
		return err
	}
	pkg.features = features
	pkg.featureIndex = make(map[string]int, len(features))
	for i, f := range features {
		pkg.featureIndex[f.Name] = i
	}
	return nil
}

// source classifies where a package comes from. Workspace membership wins
// over the source string.
func (b *builder) source(id PackageID, p *metadata.Package) (PackageSource, error) {
	root := b.meta.WorkspaceRoot
	switch {
	case b.members[id]:
		rel, err := pathdiff.Diff(p.ManifestPath, root)
		if err != nil {
			b.logger.Warn("workspace member cannot be reached from workspace root, using absolute path",
				"package", id, "manifest", p.ManifestPath, "root", root)
			rel = pathdiff.NormalizeWindows(p.ManifestPath)
		}
		dir, ok := pathdiff.Parent(rel)
		if !ok {
			return PackageSource{}, gerrors.New(gerrors.ErrCodeInvalidManifestPath,
				"workspace member '%s' has invalid manifest path %q", id, p.ManifestPath)
		}
		return PackageSource{Kind: SourceWorkspace, Path: dir}, nil

	case p.Source != nil && isCratesIO(*p.Source):
		return PackageSource{Kind: SourceCratesIO}, nil

	case p.Source != nil:
		return PackageSource{Kind: SourceExternal, Repr: *p.Source}, nil

	default:
		dir, ok := pathdiff.Parent(pathdiff.NormalizeWindows(p.ManifestPath))
		if !ok {
			return PackageSource{}, gerrors.New(gerrors.ErrCodeInvalidManifestPath,
				"package '%s': manifest path '%s' does not have parent", id, p.ManifestPath)
		}
		// Fall back to the absolute path when the two are unrelated, for
		// example on different drives.
		if rel, err := pathdiff.Diff(dir, root); err == nil {
			dir = rel
		}
		return PackageSource{Kind: SourcePath, Path: dir}, nil
	}
}

// addLinks is the second phase.
func (b *builder) addLinks() error {
	byID := make(map[PackageID]*metadata.Package, len(b.meta.Packages))
	for i := range b.meta.Packages {
		byID[PackageID(b.meta.Packages[i].ID)] = &b.meta.Packages[i]
	}

	for i := range b.meta.Resolve.Nodes {
		node := &b.meta.Resolve.Nodes[i]
		fromID := PackageID(node.ID)
		from, ok := b.graph.Metadata(fromID)
		if !ok {
			return gerrors.New(gerrors.ErrCodePackageNotFound, "no package data found for resolved package '%s'", fromID)
		}
		resolver, err := newDepResolver(fromID, byID[fromID].Dependencies, b.specs, b.logger)
		if err != nil {
			return err
		}

		for j := range node.Deps {
			edge := &node.Deps[j]
			to, ok := b.graph.Metadata(PackageID(edge.Pkg))
			if !ok {
				return gerrors.New(gerrors.ErrCodePackageNotFound,
					"%s: no package data found for dependency '%s'", fromID, edge.Pkg)
			}
			link, err := resolver.resolve(to, edge)
			if err != nil {
				return err
			}
			link.From, link.To = from.ID, to.ID
			if err := b.addLink(from.index, to.index, link); err != nil {
				return err
			}
		}
	}
	return nil
}

// addLink inserts link, or merges it into the existing link between the
// same packages so no conditions are lost.
func (b *builder) addLink(from, to dag.NodeIndex, link *PackageLink) error {
	if ei, ok := b.graph.dag.FindEdge(from, to); ok {
		b.graph.dag.EdgeWeight(ei).merge(link)
		return nil
	}
	ei, _, err := b.graph.dag.UpdateEdge(from, to, link)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInternal, err, "add link %s -> %s", link.From, link.To)
	}
	link.index = ei
	return nil
}

func (b *builder) workspace() (*Workspace, error) {
	members := make([]PackageID, len(b.meta.WorkspaceMembers))
	for i, id := range b.meta.WorkspaceMembers {
		members[i] = PackageID(id)
	}
	defaults := make([]PackageID, len(b.meta.WorkspaceDefaultMembers))
	for i, id := range b.meta.WorkspaceDefaultMembers {
		defaults[i] = PackageID(id)
	}
	return newWorkspace(Workspace{
		Root:            b.meta.WorkspaceRoot,
		TargetDirectory: b.meta.TargetDirectory,
		BuildDirectory:  b.meta.BuildDirectory,
		MetadataTable:   b.meta.Metadata,
	}, b.graph.Metadata, members, defaults)
}

// optionalDeps lists each dependency that is optional in any declaration,
// by rename or name, in first-seen order.
func optionalDeps(deps []metadata.Dependency) []string {
	var out []string
	seen := make(map[string]bool)
	for i := range deps {
		if !deps[i].Optional {
			continue
		}
		name := deps[i].Name
		if deps[i].Rename != nil {
			name = *deps[i].Rename
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// namedFeatures parses the feature table. Explicit features come first,
// sorted by name, followed by an implicit feature for every optional
// dependency that no feature enables through "dep:".
func namedFeatures(id PackageID, table map[string][]string, optional []string) ([]Feature, error) {
	optIndex := make(map[string]int, len(optional))
	for i, name := range optional {
		optIndex[name] = i
	}
	seenExplicit := make([]bool, len(optional))

	names := slices.Sorted(maps.Keys(table))
	features := make([]Feature, 0, len(table)+len(optional))
	position := make(map[string]int, len(table)+len(optional))
	for _, name := range names {
		entries := table[name]
		deps := make([]NamedFeatureDep, len(entries))
		for i, entry := range entries {
			dep := ParseNamedFeatureDep(entry)
			if dep.Kind == OptionalDependency {
				ix, ok := optIndex[dep.Name]
				if !ok {
					return nil, gerrors.New(gerrors.ErrCodeInvalidFeature,
						"package '%s': named feature %s specifies 'dep:%s', but %s is not an optional dependency",
						id, name, dep.Name, dep.Name)
				}
				seenExplicit[ix] = true
			}
			deps[i] = dep
		}
		position[name] = len(features)
		features = append(features, Feature{Name: name, Deps: deps})
	}

	for i, dep := range optional {
		if seenExplicit[i] {
			continue
		}
		implicit := Feature{Name: dep, Deps: []NamedFeatureDep{{Kind: OptionalDependency, Name: dep}}}
		if pos, ok := position[dep]; ok {
			features[pos] = implicit
			continue
		}
		position[dep] = len(features)
		features = append(features, implicit)
	}
	return features, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
