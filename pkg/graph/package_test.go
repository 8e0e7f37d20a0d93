package graph

import (
	"slices"
	"testing"

	gerrors "github.com/guppy-rs/guppy/pkg/errors"
	"github.com/guppy-rs/guppy/pkg/metadata"
)

func TestParseNamedFeatureDep(t *testing.T) {
	tests := []struct {
		input string
		want  NamedFeatureDep
	}{
		{"std", NamedFeatureDep{Kind: NamedFeature, Name: "std"}},
		{"dep:serde", NamedFeatureDep{Kind: OptionalDependency, Name: "serde"}},
		{"serde/derive", NamedFeatureDep{Kind: DependencyNamedFeature, Name: "serde", Feature: "derive"}},
		{"serde?/derive", NamedFeatureDep{Kind: DependencyNamedFeature, Name: "serde", Feature: "derive", Weak: true}},
		// The slash is checked first, as Cargo does.
		{"dep:serde/derive", NamedFeatureDep{Kind: DependencyNamedFeature, Name: "dep:serde", Feature: "derive"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseNamedFeatureDep(tt.input)
			if got != tt.want {
				t.Errorf("ParseNamedFeatureDep(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestPackagePublish(t *testing.T) {
	if p := newPackagePublish(nil); !p.Unrestricted || p.IsNever() {
		t.Errorf("nil publish = %+v, want unrestricted", p)
	}
	if p := newPackagePublish(&[]string{}); p.Unrestricted || !p.IsNever() {
		t.Errorf("empty publish = %+v, want never", p)
	}
	p := newPackagePublish(&[]string{"internal"})
	if p.Unrestricted || p.IsNever() || !slices.Equal(p.Registries, []string{"internal"}) {
		t.Errorf("publish = %+v, want registries [internal]", p)
	}
}

func TestOptionalDeps(t *testing.T) {
	rename := "serde1"
	deps := []metadata.Dependency{
		{Name: "log", Optional: false},
		{Name: "serde", Rename: &rename, Optional: true},
		{Name: "rand", Optional: true},
		// Optional as a build dependency too; listed once.
		{Name: "rand", Kind: metadata.KindBuild, Optional: true},
		{Name: "serde", Optional: true},
	}
	got := optionalDeps(deps)
	want := []string{"serde1", "rand", "serde"}
	if !slices.Equal(got, want) {
		t.Errorf("optionalDeps = %v, want %v", got, want)
	}
}

func TestNamedFeatures(t *testing.T) {
	table := map[string][]string{
		"json":    {"dep:serde", "serde_json?/std"},
		"default": {"std"},
		"std":     {},
	}
	features, err := namedFeatures("c", table, []string{"serde", "foo"})
	if err != nil {
		t.Fatalf("namedFeatures: %v", err)
	}

	var names []string
	for _, f := range features {
		names = append(names, f.Name)
	}
	// Sorted explicit features, then the implicit one.
	want := []string{"default", "json", "std", "foo"}
	if !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	foo := features[3]
	if len(foo.Deps) != 1 || foo.Deps[0] != (NamedFeatureDep{Kind: OptionalDependency, Name: "foo"}) {
		t.Errorf("implicit feature foo = %+v, want [dep:foo]", foo.Deps)
	}
	json := features[1]
	if len(json.Deps) != 2 || json.Deps[1].Kind != DependencyNamedFeature || !json.Deps[1].Weak {
		t.Errorf("json deps = %+v", json.Deps)
	}
}

func TestNamedFeaturesImplicitReplacesSameName(t *testing.T) {
	// A feature that shares the optional dependency's name but never says
	// "dep:" is shadowed by the implicit feature.
	table := map[string][]string{"foo": {"std"}, "std": {}}
	features, err := namedFeatures("c", table, []string{"foo"})
	if err != nil {
		t.Fatalf("namedFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("len(features) = %d, want 2", len(features))
	}
	if got := features[0]; got.Name != "foo" || got.Deps[0].Kind != OptionalDependency {
		t.Errorf("features[0] = %+v, want implicit foo", got)
	}
}

func TestNamedFeaturesUnknownOptional(t *testing.T) {
	table := map[string][]string{"json": {"dep:serde"}}
	_, err := namedFeatures("c", table, nil)
	if !gerrors.Is(err, gerrors.ErrCodeInvalidFeature) {
		t.Errorf("error = %v, want %s", err, gerrors.ErrCodeInvalidFeature)
	}
}

func TestPackageSourceString(t *testing.T) {
	tests := []struct {
		source PackageSource
		want   string
	}{
		{PackageSource{Kind: SourceWorkspace, Path: "crates/app"}, "crates/app"},
		{PackageSource{Kind: SourcePath, Path: "../vendored"}, "../vendored"},
		{PackageSource{Kind: SourceCratesIO}, CratesIOGitURL},
		{PackageSource{Kind: SourceExternal, Repr: "git+https://example.com/repo"}, "git+https://example.com/repo"},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
