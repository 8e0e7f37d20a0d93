package graph

import (
	"encoding/json"
	"maps"
	"slices"

	gerrors "github.com/guppy-rs/guppy/pkg/errors"
)

// Workspace is the set of packages built together from one workspace root.
type Workspace struct {
	// Root is the absolute path of the workspace root directory.
	Root string
	// TargetDirectory is where Cargo writes build artifacts.
	TargetDirectory string
	// BuildDirectory is Cargo's intermediate artifact directory; empty when
	// the metadata predates it.
	BuildDirectory string
	// MetadataTable is [workspace.metadata], or nil.
	MetadataTable json.RawMessage

	byPath         map[string]PackageID
	byName         map[string]PackageID
	byID           map[PackageID]struct{}
	defaultMembers []PackageID
}

// newWorkspace indexes the members of a workspace. Every member must be a
// known package with a workspace source, member names must be unique, and
// every default member must be a member.
func newWorkspace(ws Workspace, packages func(PackageID) (*PackageMetadata, bool), members, defaults []PackageID) (*Workspace, error) {
	ws.byPath = make(map[string]PackageID, len(members))
	ws.byName = make(map[string]PackageID, len(members))
	ws.byID = make(map[PackageID]struct{}, len(members))

	for _, id := range members {
		pkg, ok := packages(id)
		if !ok {
			return nil, gerrors.New(gerrors.ErrCodePackageNotFound, "workspace member '%s' not found", id)
		}
		if pkg.Source.Kind != SourceWorkspace {
			return nil, gerrors.New(gerrors.ErrCodeWorkspaceMember,
				"workspace member '%s' at path %q not in workspace", id, pkg.ManifestPath)
		}
		ws.byPath[pkg.Source.Path] = id

		if prev, dup := ws.byName[pkg.Name]; dup {
			return nil, gerrors.New(gerrors.ErrCodeDuplicateMemberName,
				"duplicate package name in workspace: '%s' is name for '%s' and '%s'", pkg.Name, prev, id)
		}
		ws.byName[pkg.Name] = id
		ws.byID[id] = struct{}{}
	}

	for _, id := range defaults {
		if !ws.Contains(id) {
			return nil, gerrors.New(gerrors.ErrCodeInvalidWorkspaceConfig,
				"workspace default member '%s' not found in workspace members", id)
		}
	}
	ws.defaultMembers = defaults
	return &ws, nil
}

// Len returns the number of workspace members.
func (w *Workspace) Len() int { return len(w.byPath) }

// Paths returns the workspace-relative member paths in sorted order. The
// root package, if any, has the path "".
func (w *Workspace) Paths() []string {
	return slices.Sorted(maps.Keys(w.byPath))
}

// MembersByPath returns member IDs ordered by workspace-relative path.
func (w *Workspace) MembersByPath() []PackageID {
	paths := w.Paths()
	out := make([]PackageID, len(paths))
	for i, p := range paths {
		out[i] = w.byPath[p]
	}
	return out
}

// MemberByPath returns the member whose manifest directory is path,
// relative to the workspace root.
func (w *Workspace) MemberByPath(path string) (PackageID, bool) {
	id, ok := w.byPath[path]
	return id, ok
}

// MemberByName returns the member with the given package name.
func (w *Workspace) MemberByName(name string) (PackageID, bool) {
	id, ok := w.byName[name]
	return id, ok
}

// Names returns the member names in sorted order.
func (w *Workspace) Names() []string {
	return slices.Sorted(maps.Keys(w.byName))
}

// DefaultMembers returns the members "cargo build" selects with no package
// arguments, in metadata order.
func (w *Workspace) DefaultMembers() []PackageID { return w.defaultMembers }

// Contains reports whether id is a workspace member.
func (w *Workspace) Contains(id PackageID) bool {
	_, ok := w.byID[id]
	return ok
}
