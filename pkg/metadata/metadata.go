// Package metadata decodes the JSON produced by
// "cargo metadata --format-version 1".
//
// The types mirror the JSON document: a list of packages with their declared
// dependencies, targets and features, the resolved dependency graph, and
// workspace information. Fields that Cargo may omit are given Cargo's default
// values while decoding (doc, doctest and test default to true,
// uses_default_features defaults to true, a missing or null dependency kind
// means "normal", and a missing edition means "2015").
//
// Decoding performs no validation beyond JSON well-formedness. Consistency
// checks (every resolved package exists, workspace members are known, and so
// on) happen when the package graph is built.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DependencyKind is the kind of a dependency declaration.
type DependencyKind string

const (
	KindNormal DependencyKind = "normal"
	KindBuild  DependencyKind = "build"
	KindDev    DependencyKind = "dev"
)

// UnmarshalJSON decodes null as KindNormal.
func (k *DependencyKind) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = KindNormal
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = DependencyKind(s)
	return nil
}

// Metadata is the top-level "cargo metadata" document.
type Metadata struct {
	Packages                []Package       `json:"packages"`
	WorkspaceMembers        []string        `json:"workspace_members"`
	WorkspaceDefaultMembers []string        `json:"workspace_default_members"`
	Resolve                 *Resolve        `json:"resolve"`
	WorkspaceRoot           string          `json:"workspace_root"`
	TargetDirectory         string          `json:"target_directory"`
	BuildDirectory          string          `json:"build_directory,omitempty"`
	Metadata                json.RawMessage `json:"metadata,omitempty"`
	Version                 int             `json:"version"`
}

// Package is one entry of the "packages" array.
type Package struct {
	Name          string              `json:"name"`
	Version       string              `json:"version"`
	ID            string              `json:"id"`
	Authors       []string            `json:"authors"`
	Description   *string             `json:"description"`
	License       *string             `json:"license"`
	LicenseFile   *string             `json:"license_file"`
	Source        *string             `json:"source"`
	Dependencies  []Dependency        `json:"dependencies"`
	Targets       []Target            `json:"targets"`
	Features      map[string][]string `json:"features"`
	ManifestPath  string              `json:"manifest_path"`
	Categories    []string            `json:"categories"`
	Keywords      []string            `json:"keywords"`
	Readme        *string             `json:"readme"`
	Repository    *string             `json:"repository"`
	Homepage      *string             `json:"homepage"`
	Documentation *string             `json:"documentation"`
	Edition       string              `json:"edition"`
	Links         *string             `json:"links"`
	DefaultRun    *string             `json:"default_run"`
	RustVersion   *string             `json:"rust_version"`
	Metadata      json.RawMessage     `json:"metadata,omitempty"`

	// Publish is nil when publishing is unrestricted. An empty list means the
	// package must never be published.
	Publish *[]string `json:"publish"`
}

// UnmarshalJSON applies Cargo's default edition.
func (p *Package) UnmarshalJSON(data []byte) error {
	type plain Package
	out := plain{Edition: "2015"}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = Package(out)
	return nil
}

// Dependency is a dependency declaration from a package manifest.
type Dependency struct {
	Name                string         `json:"name"`
	Source              *string        `json:"source"`
	Req                 string         `json:"req"`
	Kind                DependencyKind `json:"kind"`
	Optional            bool           `json:"optional"`
	UsesDefaultFeatures bool           `json:"uses_default_features"`
	Features            []string       `json:"features"`
	Target              *string        `json:"target"`
	Rename              *string        `json:"rename"`
	Registry            *string        `json:"registry"`
	Path                *string        `json:"path"`
}

// UnmarshalJSON applies Cargo's defaults for omitted fields.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	type plain Dependency
	out := plain{Kind: KindNormal, UsesDefaultFeatures: true}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*d = Dependency(out)
	return nil
}

// Target is a build target of a package.
type Target struct {
	Name             string   `json:"name"`
	Kind             []string `json:"kind"`
	CrateTypes       []string `json:"crate_types"`
	RequiredFeatures []string `json:"required-features"`
	SrcPath          string   `json:"src_path"`
	Edition          string   `json:"edition"`
	Doctest          bool     `json:"doctest"`
	Test             bool     `json:"test"`
	Doc              bool     `json:"doc"`
}

// UnmarshalJSON applies Cargo's defaults for omitted fields.
func (t *Target) UnmarshalJSON(data []byte) error {
	type plain Target
	out := plain{Edition: "2015", Doctest: true, Test: true, Doc: true}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*t = Target(out)
	return nil
}

// Resolve is the resolved dependency graph.
type Resolve struct {
	Nodes []Node  `json:"nodes"`
	Root  *string `json:"root"`
}

// Node is a package in the resolved graph along with its resolved edges.
type Node struct {
	ID           string    `json:"id"`
	Deps         []NodeDep `json:"deps"`
	Dependencies []string  `json:"dependencies"`
	Features     []string  `json:"features"`
}

// NodeDep is a resolved edge. Name is the symbol the dependency is known by
// in the depending crate's source code.
type NodeDep struct {
	Name     string        `json:"name"`
	Pkg      string        `json:"pkg"`
	DepKinds []DepKindInfo `json:"dep_kinds"`
}

// DepKindInfo is one (kind, platform) pair under which a resolved edge is
// active.
type DepKindInfo struct {
	Kind   DependencyKind `json:"kind"`
	Target *string        `json:"target"`
}

// UnmarshalJSON treats a missing kind as KindNormal.
func (d *DepKindInfo) UnmarshalJSON(data []byte) error {
	type plain DepKindInfo
	out := plain{Kind: KindNormal}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*d = DepKindInfo(out)
	return nil
}

// Read decodes a metadata document from r. Read does not close r.
func Read(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &m, nil
}

// Parse decodes a metadata document held in memory.
func Parse(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &m, nil
}

// Load reads and decodes the metadata file at path.
func Load(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
