package graph

import (
	"testing"

	"github.com/guppy-rs/guppy/pkg/metadata"
	"github.com/guppy-rs/guppy/pkg/platform"
)

func strp(s string) *string { return &s }

func instance(target string, optional, defaults bool, features ...string) *metadata.Dependency {
	d := &metadata.Dependency{
		Name:                "dep",
		Req:                 "*",
		Kind:                metadata.KindNormal,
		Optional:            optional,
		UsesDefaultFeatures: defaults,
		Features:            features,
	}
	if target != "" {
		d.Target = strp(target)
	}
	return d
}

func specFor(t *testing.T, d *metadata.Dependency) *platform.TargetSpec {
	t.Helper()
	if d.Target == nil {
		return nil
	}
	return platform.MustParse(*d.Target)
}

func TestDependencyReqAddInstance(t *testing.T) {
	var req DependencyReq
	for _, d := range []*metadata.Dependency{
		instance("cfg(unix)", false, true, "std"),
		instance("cfg(windows)", false, false),
		instance("", true, true, "serde"),
	} {
		req.addInstance(specFor(t, d), d)
	}

	if got := req.Required.BuildIf.String(); got != "cfg(unix) | cfg(windows)" {
		t.Errorf("Required.BuildIf = %q", got)
	}
	if got := req.Required.DefaultFeaturesIf.String(); got != "cfg(unix)" {
		t.Errorf("Required.DefaultFeaturesIf = %q", got)
	}
	if got := req.Required.NoDefaultFeaturesIf.String(); got != "cfg(windows)" {
		t.Errorf("Required.NoDefaultFeaturesIf = %q", got)
	}
	if got := req.Required.FeatureTargets["std"].String(); got != "cfg(unix)" {
		t.Errorf("std feature = %q", got)
	}
	if !req.Optional.BuildIf.IsAlways() {
		t.Errorf("Optional.BuildIf = %v, want always", req.Optional.BuildIf)
	}
	if !req.Optional.FeatureTargets["serde"].IsAlways() {
		t.Errorf("optional serde feature = %v, want always", req.Optional.FeatureTargets["serde"])
	}
	if got := req.Status(); got != "cfg(unix) | cfg(windows)" {
		t.Errorf("Status() = %q", got)
	}
}

func TestDependencyReqStatus(t *testing.T) {
	required := instance("", false, true)
	optional := instance("", true, true)
	unix := instance("cfg(unix)", false, true)

	tests := []struct {
		name string
		deps []*metadata.Dependency
		want string
	}{
		{"Never", nil, "never"},
		{"Always", []*metadata.Dependency{required}, "always"},
		{"Optional", []*metadata.Dependency{optional}, "optional"},
		{"Conditional", []*metadata.Dependency{unix, optional}, "cfg(unix)"},
		{"AlwaysAbsorbs", []*metadata.Dependency{unix, required}, "always"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req DependencyReq
			for _, d := range tt.deps {
				req.addInstance(specFor(t, d), d)
			}
			if got := req.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Merging must lose nothing and must not depend on the order in which
// declarations are folded in.
func TestLinkMergeOrderIndependent(t *testing.T) {
	decls := []*metadata.Dependency{
		instance("cfg(unix)", false, true, "std"),
		instance("cfg(windows)", false, false, "alloc"),
		instance("", true, true, "serde"),
		instance("x86_64-pc-windows-msvc", false, true, "std"),
	}

	fold := func(order []int) *PackageLink {
		var link *PackageLink
		for _, i := range order {
			one := &PackageLink{}
			one.Normal.addInstance(specFor(t, decls[i]), decls[i])
			if link == nil {
				link = one
			} else {
				link.merge(one)
			}
		}
		return link
	}

	forward := fold([]int{0, 1, 2, 3})
	backward := fold([]int{3, 2, 1, 0})
	shuffled := fold([]int{2, 0, 3, 1})

	if !forward.Normal.Equal(backward.Normal) || !forward.Normal.Equal(shuffled.Normal) {
		t.Errorf("merge depends on order:\n%+v\n%+v\n%+v", forward.Normal, backward.Normal, shuffled.Normal)
	}

	got := forward.Normal.Required.FeatureTargets["std"].String()
	if got != "cfg(unix) | x86_64-pc-windows-msvc" {
		t.Errorf("std feature = %q", got)
	}
	if !forward.Normal.Optional.IsPresent() {
		t.Error("optional half lost in merge")
	}
}

func TestLinkMergeKeepsFirstScalars(t *testing.T) {
	a := &PackageLink{VersionReq: "^1", Path: ""}
	b := &PackageLink{VersionReq: "^2", Registry: "internal", Path: "../b"}
	a.merge(b)
	if a.VersionReq != "^1" {
		t.Errorf("VersionReq = %q, want ^1", a.VersionReq)
	}
	if a.Registry != "internal" || a.Path != "../b" {
		t.Errorf("Registry, Path = %q, %q; want internal, ../b", a.Registry, a.Path)
	}
}

func TestLinkEnabledOn(t *testing.T) {
	linux, err := platform.New("x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatal(err)
	}
	windows, err := platform.New("x86_64-pc-windows-msvc")
	if err != nil {
		t.Fatal(err)
	}

	link := &PackageLink{}
	unix := instance("cfg(unix)", false, true)
	link.Normal.addInstance(specFor(t, unix), unix)
	dev := instance("", false, true)
	link.Dev.addInstance(nil, dev)

	if got := link.EnabledOn(linux, DependencyNormal); got != platform.Enabled {
		t.Errorf("normal on linux = %v, want enabled", got)
	}
	if got := link.EnabledOn(windows, DependencyNormal); got != platform.Disabled {
		t.Errorf("normal on windows = %v, want disabled", got)
	}
	if got := link.EnabledOn(windows); got != platform.Enabled {
		t.Errorf("any kind on windows = %v, want enabled", got)
	}
	if link.DevOnly() {
		t.Error("DevOnly() = true for a link with normal declarations")
	}
}

func TestParseDependencyKind(t *testing.T) {
	for _, k := range DependencyKinds {
		got, ok := ParseDependencyKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseDependencyKind(%q) = %v, %v", k, got, ok)
		}
	}
	if _, ok := ParseDependencyKind("future"); ok {
		t.Error("ParseDependencyKind accepted an unknown kind")
	}
}

func TestLinkSelected(t *testing.T) {
	linux, err := platform.New("x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatal(err)
	}

	link := &PackageLink{}
	windows := instance("cfg(windows)", false, true)
	link.Normal.addInstance(specFor(t, windows), windows)
	link.Dev.addInstance(nil, instance("", false, true))

	tests := []struct {
		name  string
		p     *platform.Platform
		kinds []DependencyKind
		want  bool
	}{
		{"AnyPlatformAnyKind", nil, nil, true},
		{"AnyPlatformBuild", nil, []DependencyKind{DependencyBuild}, false},
		{"AnyPlatformNormal", nil, []DependencyKind{DependencyNormal}, true},
		{"LinuxNormal", linux, []DependencyKind{DependencyNormal}, false},
		{"LinuxAnyKind", linux, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := link.Selected(tt.p, tt.kinds...); got != tt.want {
				t.Errorf("Selected() = %v, want %v", got, tt.want)
			}
		})
	}
}
