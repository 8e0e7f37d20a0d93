package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gerrors "github.com/guppy-rs/guppy/pkg/errors"
)

var fixture = filepath.Join("..", "..", "pkg", "graph", "testdata", "workspace.json")

type result struct {
	out  string
	logs string
	err  error
}

// execute runs the root command with args and an empty config directory.
func execute(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Out = &out
	if stdin != nil {
		c.In = stdin
	}

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), logs: logs.String(), err: err}
}

func TestCheck(t *testing.T) {
	r := execute(t, nil, "check", fixture)
	if r.err != nil {
		t.Fatalf("check: %v", r.err)
	}
	for _, want := range []string{"7 packages", "8 links", "1 cycles", "app, my-lib", "cycle: app 0.1.0 → my-lib 0.2.0 → app 0.1.0"} {
		if !strings.Contains(r.out, want) {
			t.Errorf("output missing %q:\n%s", want, r.out)
		}
	}
}

func TestCheckInvalid(t *testing.T) {
	// libc is resolved but never declared.
	bad := `{
  "packages": [
    {"name": "a", "version": "1.0.0", "id": "a 1.0.0", "source": null, "manifest_path": "/ws/a/Cargo.toml",
     "dependencies": [], "features": {},
     "targets": [{"name": "a", "kind": ["lib"], "crate_types": ["lib"], "src_path": "/ws/a/src/lib.rs"}]},
    {"name": "libc", "version": "0.2.0", "id": "libc 0.2.0", "source": null, "manifest_path": "/ws/libc/Cargo.toml",
     "dependencies": [], "features": {},
     "targets": [{"name": "libc", "kind": ["lib"], "crate_types": ["lib"], "src_path": "/ws/libc/src/lib.rs"}]}
  ],
  "workspace_members": ["a 1.0.0", "libc 0.2.0"],
  "resolve": {"nodes": [
    {"id": "a 1.0.0", "deps": [{"name": "libc", "pkg": "libc 0.2.0", "dep_kinds": [{"kind": null, "target": null}]}]},
    {"id": "libc 0.2.0", "deps": []}
  ]},
  "workspace_root": "/ws", "target_directory": "/ws/target", "version": 1
}`
	r := execute(t, strings.NewReader(bad), "check", "-")
	if !gerrors.Is(r.err, gerrors.ErrCodeUnmatchedDependency) {
		t.Errorf("check error = %v, want %s", r.err, gerrors.ErrCodeUnmatchedDependency)
	}
}

func TestCheckMissingFile(t *testing.T) {
	r := execute(t, nil, "check", filepath.Join(t.TempDir(), "missing.json"))
	if r.err == nil || !strings.Contains(r.err.Error(), "missing.json") {
		t.Errorf("check error = %v, want mention of the file", r.err)
	}
}

func TestStdin(t *testing.T) {
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	r := execute(t, bytes.NewReader(data), "topo", "--workspace", "-")
	if r.err != nil {
		t.Fatalf("topo: %v", r.err)
	}
	lines := strings.Fields(r.out)
	if len(lines) != 2 {
		t.Errorf("topo --workspace printed %d lines, want 2:\n%s", len(lines), r.out)
	}
}

func TestMembers(t *testing.T) {
	r := execute(t, nil, "members", fixture)
	if r.err != nil {
		t.Fatalf("members: %v", r.err)
	}
	app := strings.Index(r.out, "app 0.1.0")
	lib := strings.Index(r.out, "my-lib 0.2.0")
	if app < 0 || lib < 0 || app > lib {
		t.Errorf("members output not sorted by path:\n%s", r.out)
	}
	if !strings.Contains(r.out, iconDefault) {
		t.Errorf("default member not marked:\n%s", r.out)
	}
}

func TestDeps(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "Linux",
			args:    []string{"app", "--platform", "x86_64-unknown-linux-gnu", "--kind", "normal"},
			want:    []string{"libc 0.2.150", "normal=cfg(unix)", "serde 1.0.200", "normal=optional"},
			notWant: []string{"winapi", "tempfile"},
		},
		{
			name: "AllKinds",
			args: []string{"app"},
			want: []string{"winapi 0.3.9", "tempfile 3.8.0", "dev=always"},
		},
		{
			name:    "PackageID",
			args:    []string{"path+file:///ws/app#0.1.0", "--kind", "dev"},
			want:    []string{"tempfile 3.8.0", "dev=always"},
			notWant: []string{"libc", "winapi"},
		},
		{
			name:    "Reverse",
			args:    []string{"libc", "--reverse"},
			want:    []string{"app 0.1.0", "my-lib 0.2.0"},
			notWant: []string{"serde"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, nil, append([]string{"deps", fixture}, tt.args...)...)
			if r.err != nil {
				t.Fatalf("deps: %v", r.err)
			}
			for _, s := range tt.want {
				if !strings.Contains(r.out, s) {
					t.Errorf("output missing %q:\n%s", s, r.out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(r.out, s) {
					t.Errorf("output contains %q:\n%s", s, r.out)
				}
			}
		})
	}
}

func TestDepsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code gerrors.Code
	}{
		{"TraversalName", []string{"../etc"}, gerrors.ErrCodeInvalidPackage},
		{"InvalidName", []string{"foo bar"}, gerrors.ErrCodeInvalidPackage},
		{"UnknownPackage", []string{"nope"}, gerrors.ErrCodePackageNotFound},
		{"UnknownKind", []string{"app", "--kind", "future"}, gerrors.ErrCodeInvalidInput},
		{"BadPlatform", []string{"app", "--platform", "linux"}, gerrors.ErrCodeInvalidPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, nil, append([]string{"deps", fixture}, tt.args...)...)
			if !gerrors.Is(r.err, tt.code) {
				t.Errorf("error = %v, want %s", r.err, tt.code)
			}
		})
	}
}

func TestDot(t *testing.T) {
	r := execute(t, nil, "dot", fixture)
	if r.err != nil {
		t.Fatalf("dot: %v", r.err)
	}
	if !strings.HasPrefix(r.out, "digraph G {") || !strings.Contains(r.out, "constraint=false") {
		t.Errorf("unexpected DOT:\n%s", r.out)
	}

	path := filepath.Join(t.TempDir(), "graph.dot")
	r = execute(t, nil, "dot", fixture, "--detailed", "-o", path)
	if r.err != nil {
		t.Fatalf("dot -o: %v", r.err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "features: default, json, std") {
		t.Errorf("detailed DOT missing app features:\n%s", data)
	}
	if !strings.Contains(r.out, path) {
		t.Errorf("output does not name the file: %q", r.out)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guppy.toml")
	cfg := "verbose = true\nplatform = \"x86_64-pc-windows-msvc\"\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	r := execute(t, nil, "--config", path, "deps", fixture, "app", "--kind", "normal")
	if r.err != nil {
		t.Fatalf("deps: %v", r.err)
	}
	if !strings.Contains(r.out, "winapi") || strings.Contains(r.out, "libc") {
		t.Errorf("config platform not applied:\n%s", r.out)
	}
	if !strings.Contains(r.logs, "Built graph") {
		t.Errorf("config verbose not applied, logs:\n%s", r.logs)
	}

	r = execute(t, nil, "--config", filepath.Join(dir, "missing.toml"), "check", fixture)
	if r.err == nil {
		t.Error("missing explicit config accepted")
	}
}
