package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	gerrors "github.com/guppy-rs/guppy/pkg/errors"
	"github.com/guppy-rs/guppy/pkg/metadata"
)

// TargetKind identifies the slot a build target occupies within its package.
type TargetKind int

const (
	Library TargetKind = iota
	BuildScript
	Binary
	Example
	Test
	Benchmark
)

func (k TargetKind) String() string {
	switch k {
	case Library:
		return "lib"
	case BuildScript:
		return "build-script"
	case Binary:
		return "bin"
	case Example:
		return "example"
	case Test:
		return "test"
	default:
		return "bench"
	}
}

// BuildTargetID is the identity of a build target. Name is empty for
// Library and BuildScript, which a package can have at most one of.
type BuildTargetID struct {
	Kind TargetKind
	Name string
}

// LibraryID is the identity of a package's library target.
var LibraryID = BuildTargetID{Kind: Library}

func (id BuildTargetID) String() string {
	if id.Name == "" {
		return id.Kind.String()
	}
	return id.Kind.String() + ":" + id.Name
}

// Compare orders ids by kind, then by name.
func (id BuildTargetID) Compare(other BuildTargetID) int {
	if id.Kind != other.Kind {
		return int(id.Kind) - int(other.Kind)
	}
	return strings.Compare(id.Name, other.Name)
}

// CompileKind describes what a build target compiles to.
type CompileKind int

const (
	// CompileBinary is an executable: binaries, tests, benchmarks and build
	// scripts.
	CompileBinary CompileKind = iota
	// CompileProcMacro is a procedural macro library.
	CompileProcMacro
	// CompileLibraryOrExample is a library or example built with the crate
	// types in BuildTarget.CrateTypes.
	CompileLibraryOrExample
)

func (k CompileKind) String() string {
	switch k {
	case CompileBinary:
		return "binary"
	case CompileProcMacro:
		return "proc-macro"
	default:
		return "library-or-example"
	}
}

// BuildTarget is a classified build target.
type BuildTarget struct {
	ID   BuildTargetID
	Kind CompileKind

	// CrateTypes is sorted and de-duplicated. It is only set for
	// CompileLibraryOrExample.
	CrateTypes []string

	// LibName is the target name for Library and BuildScript targets, and
	// empty otherwise.
	LibName string

	RequiredFeatures []string
	Path             string
	Edition          string

	DocByDefault     bool
	DoctestByDefault bool
	TestByDefault    bool
}

// buildTargets collects the classified targets of one package.
type buildTargets struct {
	packageID PackageID
	targets   map[BuildTargetID]*BuildTarget
}

// classifyTargets classifies every raw target of a package. It fails on
// proc-macro mixing, wrong crate types, targets without kinds, and duplicate
// identities.
func classifyTargets(id PackageID, raw []metadata.Target) (map[BuildTargetID]*BuildTarget, error) {
	bt := buildTargets{packageID: id, targets: make(map[BuildTargetID]*BuildTarget, len(raw))}
	for i := range raw {
		if err := bt.add(&raw[i]); err != nil {
			return nil, err
		}
	}
	return bt.targets, nil
}

func (b *buildTargets) add(t *metadata.Target) error {
	kinds := t.Kind
	crateTypes := slices.Compact(slices.Sorted(slices.Values(t.CrateTypes)))

	if len(kinds) > 1 && slices.Contains(kinds, "proc-macro") {
		return gerrors.New(gerrors.ErrCodeInvalidBuildTarget,
			"for package %s, proc-macro mixed with other kinds (%v)", b.packageID, kinds)
	}
	if len(crateTypes) > 1 && slices.Contains(crateTypes, "proc-macro") {
		return gerrors.New(gerrors.ErrCodeInvalidBuildTarget,
			"for package %s, proc-macro mixed with other crate types (%v)", b.packageID, crateTypes)
	}

	target := &BuildTarget{
		RequiredFeatures: t.RequiredFeatures,
		Path:             t.SrcPath,
		Edition:          t.Edition,
		DocByDefault:     t.Doc,
		DoctestByDefault: t.Doctest,
		TestByDefault:    t.Test,
	}

	switch {
	case len(kinds) == 0:
		return gerrors.New(gerrors.ErrCodeInvalidBuildTarget,
			"for package ID '%s': build target '%s' has no kinds", b.packageID, t.Name)

	case len(kinds) > 1:
		// Multiple kinds (e.g. lib and rlib) always describe a library.
		target.ID = LibraryID
		target.Kind = CompileLibraryOrExample
		target.CrateTypes = crateTypes
		target.LibName = t.Name

	default:
		switch kinds[0] {
		case "custom-build":
			target.ID = BuildTargetID{Kind: BuildScript}
			target.LibName = t.Name
		case "bin":
			target.ID = BuildTargetID{Kind: Binary, Name: t.Name}
		case "example":
			target.ID = BuildTargetID{Kind: Example, Name: t.Name}
		case "test":
			target.ID = BuildTargetID{Kind: Test, Name: t.Name}
		case "bench":
			target.ID = BuildTargetID{Kind: Benchmark, Name: t.Name}
		default:
			// lib, rlib, dylib, cdylib, staticlib, proc-macro, and kinds
			// added by future Cargo versions.
			target.ID = LibraryID
			target.LibName = t.Name
		}

		switch target.ID.Kind {
		case Library:
			if slices.Equal(crateTypes, []string{"proc-macro"}) {
				target.Kind = CompileProcMacro
			} else {
				target.Kind = CompileLibraryOrExample
				target.CrateTypes = crateTypes
			}
		case Example:
			target.Kind = CompileLibraryOrExample
			target.CrateTypes = crateTypes
		default:
			if !slices.Equal(crateTypes, []string{"bin"}) {
				return gerrors.New(gerrors.ErrCodeInvalidBuildTarget,
					"for package %s: build target '%s' has invalid crate types '%v'",
					b.packageID, target.ID, crateTypes)
			}
			target.Kind = CompileBinary
		}
	}

	if _, exists := b.targets[target.ID]; exists {
		return gerrors.New(gerrors.ErrCodeDuplicateBuildTarget,
			"for package ID '%s': duplicate build targets for %s", b.packageID, target.ID)
	}
	b.targets[target.ID] = target
	return nil
}

// sortedTargets returns the targets ordered by identity.
func sortedTargets(targets map[BuildTargetID]*BuildTarget) []*BuildTarget {
	ids := slices.SortedFunc(maps.Keys(targets), BuildTargetID.Compare)
	out := make([]*BuildTarget, len(ids))
	for i, id := range ids {
		out[i] = targets[id]
	}
	return out
}

// resolvedName is the name by which a package's library is referred to from
// the source code of its dependents, absent a rename.
type resolvedName struct {
	name string
	kind resolvedNameKind
}

type resolvedNameKind int

const (
	libNameSpecified resolvedNameKind = iota
	libNameNotSpecified
	noLibTarget
)

func newResolvedName(packageName string, targets map[BuildTargetID]*BuildTarget) resolvedName {
	lib, ok := targets[LibraryID]
	if !ok {
		return resolvedName{kind: noLibTarget}
	}
	if lib.LibName != packageName {
		return resolvedName{name: lib.LibName, kind: libNameSpecified}
	}
	return resolvedName{name: strings.ReplaceAll(lib.LibName, "-", "_"), kind: libNameNotSpecified}
}

// matches reports whether a resolved dependency symbol refers to this name.
//
// Packages without a library target (binary-only artifact dependencies) show
// up in resolve data with an empty symbol. Any such package matches any
// empty symbol, which is imprecise when a package has several of them; the
// metadata does not carry enough information to do better.
func (r resolvedName) matches(symbol string) bool {
	if r.kind == noLibTarget {
		return symbol == ""
	}
	return r.name == symbol
}

func (r resolvedName) String() string {
	if r.kind == noLibTarget {
		return "(no library)"
	}
	return fmt.Sprintf("%q", r.name)
}
