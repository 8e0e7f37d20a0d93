package graph

import (
	"strings"

	"github.com/charmbracelet/log"

	gerrors "github.com/guppy-rs/guppy/pkg/errors"
	"github.com/guppy-rs/guppy/pkg/metadata"
	"github.com/guppy-rs/guppy/pkg/platform"
	"github.com/guppy-rs/guppy/pkg/semver"
)

// declaration is a manifest dependency entry with its version requirement
// parsed.
type declaration struct {
	dep *metadata.Dependency
	req *semver.Requirement
	// rename is the rename with "-" replaced by "_", or empty.
	rename string
}

func (d *declaration) renameOrName() string {
	if d.dep.Rename != nil {
		return *d.dep.Rename
	}
	return d.dep.Name
}

// depResolver matches the resolved edges out of one package against that
// package's manifest declarations.
//
// Declarations are grouped by the name of the package they refer to, which
// is always the real package name even when the dependency is renamed.
type depResolver struct {
	from   PackageID
	byName map[string][]*declaration
	specs  *specCache
	logger *log.Logger
}

func newDepResolver(from PackageID, deps []metadata.Dependency, specs *specCache, logger *log.Logger) (*depResolver, error) {
	r := &depResolver{
		from:   from,
		byName: make(map[string][]*declaration, len(deps)),
		specs:  specs,
		logger: logger,
	}
	for i := range deps {
		dep := &deps[i]
		req, err := semver.ParseRequirement(dep.Req)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidVersion, err,
				"for package '%s': dependency '%s' has invalid version requirement %q", from, dep.Name, dep.Req)
		}
		d := &declaration{dep: dep, req: req}
		if dep.Rename != nil {
			d.rename = strings.ReplaceAll(*dep.Rename, "-", "_")
		}
		r.byName[dep.Name] = append(r.byName[dep.Name], d)
	}
	return r, nil
}

// matches returns the declarations that produced the resolved edge to
// target. A declaration matches when all of the following hold:
//
//  1. Its rename (with "-" turned into "_") or the target's resolved name
//     equals the symbol the edge is known by.
//  2. Its version requirement accepts the target's version.
//  3. Its (kind, platform) pair appears in the edge's dep_kinds. Metadata
//     from older Cargo versions has no dep_kinds; then every declaration that
//     passes the first two checks matches.
func (r *depResolver) matches(target *PackageMetadata, edge *metadata.NodeDep) []*declaration {
	var out []*declaration
	for _, d := range r.byName[target.Name] {
		if !(d.rename != "" && d.rename == edge.Name) && !target.resolvedName.matches(edge.Name) {
			continue
		}
		if !d.req.Matches(target.Version) {
			continue
		}
		if len(edge.DepKinds) > 0 && !matchesDepKinds(d.dep, edge.DepKinds) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesDepKinds(dep *metadata.Dependency, kinds []metadata.DepKindInfo) bool {
	for _, k := range kinds {
		if k.Kind == dep.Kind && sameTarget(k.Target, dep.Target) {
			return true
		}
	}
	return false
}

// sameTarget compares two optional platform strings. cfg() expressions are
// compared in their normalized form, so formatting differences between the
// manifest and resolve sections do not matter.
func sameTarget(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return normalizeTarget(*a) == normalizeTarget(*b)
}

func normalizeTarget(s string) string {
	spec, err := platform.Parse(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	if expr := spec.Expression(); expr != nil {
		return expr.String()
	}
	return spec.String()
}

// resolve builds the link for one resolved edge. The caller sets From, To and
// the edge index.
func (r *depResolver) resolve(target *PackageMetadata, edge *metadata.NodeDep) (*PackageLink, error) {
	decls := r.matches(target, edge)
	if len(decls) == 0 {
		return nil, gerrors.New(gerrors.ErrCodeUnmatchedDependency,
			"for package '%s': no dependencies found matching '%s' (resolved to '%s')", r.from, edge.Name, target.ID)
	}

	link := &PackageLink{ResolvedName: edge.Name}
	for _, d := range decls {
		dep := d.dep
		name := d.renameOrName()
		if link.DepName == "" {
			link.DepName = name
		} else if link.DepName != name {
			r.logger.Debug("dependency declared under different names",
				"package", r.from, "dependency", target.ID, "first", link.DepName, "other", name)
		}

		if dep.Kind == metadata.KindDev && dep.Optional {
			return nil, gerrors.New(gerrors.ErrCodeOptionalDevDependency,
				"for package '%s': dev-dependency '%s' marked optional", r.from, link.DepName)
		}

		if link.VersionReq == "" {
			link.VersionReq = d.req.String()
		}
		if link.Registry == "" && dep.Registry != nil {
			link.Registry = *dep.Registry
		}
		if link.Path == "" && dep.Path != nil {
			link.Path = *dep.Path
		}

		kind, ok := ParseDependencyKind(string(dep.Kind))
		if !ok {
			r.logger.Debug("skipping dependency with unknown kind",
				"package", r.from, "dependency", dep.Name, "kind", dep.Kind)
			continue
		}

		spec, err := r.specs.parse(dep.Target)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidPlatform, err,
				"for package '%s': for dependency '%s', parsing target '%s' failed", r.from, dep.Name, *dep.Target)
		}
		link.Req(kind).addInstance(spec, dep)
	}
	return link, nil
}

// specCache memoizes parsed platform specs. The same cfg() strings recur
// across many packages in a typical graph.
type specCache struct {
	specs map[string]*platform.TargetSpec
}

func newSpecCache() *specCache {
	return &specCache{specs: make(map[string]*platform.TargetSpec)}
}

// parse returns nil for a declaration without a platform condition.
func (c *specCache) parse(target *string) (*platform.TargetSpec, error) {
	if target == nil {
		return nil, nil
	}
	if spec, ok := c.specs[*target]; ok {
		return spec, nil
	}
	spec, err := platform.Parse(*target)
	if err != nil {
		return nil, err
	}
	c.specs[*target] = spec
	return spec, nil
}
