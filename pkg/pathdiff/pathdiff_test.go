package pathdiff

import (
	"errors"
	"path"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		p    string
		base string
		want string
	}{
		// POSIX paths
		{"unix child", "/workspace/a/b/Crate/Cargo.toml", "/workspace/a/b", "Crate/Cargo.toml"},
		{"unix grandchild", "/workspace/a/b/Crate/Cargo.toml", "/workspace/a", "b/Crate/Cargo.toml"},
		{"unix sibling", "/data/foo", "/data/bar", "../foo"},
		{"unix unrelated roots", "/tmp/foo", "/data/bar", "../../tmp/foo"},
		{"unix out of pocket", "/workspace/a/b/Crate/Cargo.toml", "/workspace/a/b/.cargo/workspace", "../../Crate/Cargo.toml"},
		{"unix identical", "/data/foo", "/data/foo", "."},
		{"unix trailing slash", "/data/foo/", "/data/foo", "."},

		// Drive letters
		{"drive child", `D:\a\nextest\nextest\cargo-nextest\Cargo.toml`, `D:\a\nextest\nextest`, "cargo-nextest/Cargo.toml"},
		{"drive second child", `D:\a\nextest\nextest\internal-test\Cargo.toml`, `D:\a\nextest\nextest`, "internal-test/Cargo.toml"},
		{"drive up", `D:\workspace\a\b\Crate\Cargo.toml`, `D:\workspace\a\b\.cargo\workspace`, "../../Crate/Cargo.toml"},
		{"drive identical", `D:\a\nextest\nextest`, `D:\a\nextest\nextest`, "."},
		{"drive forward slashes", "D:/a/ws/crate", "D:/a/ws", "crate"},
		{"drive letter case", `c:\foo`, `C:\bar`, "../foo"},

		// UNC
		{"unc child", `\\server\share\workspace\crate\Cargo.toml`, `\\server\share\workspace`, "crate/Cargo.toml"},
		{"unc up", `\\server\share\workspace\crate\Cargo.toml`, `\\server\share\workspace\other`, "../crate/Cargo.toml"},

		// Extended-length and device prefixes
		{"extended drive", `\\?\D:\a\nextest\nextest\cargo-nextest\Cargo.toml`, `\\?\D:\a\nextest\nextest`, "cargo-nextest/Cargo.toml"},
		{"device drive", `\\.\C:\workspace\crate\Cargo.toml`, `\\.\C:\workspace`, "crate/Cargo.toml"},
		{"extended mixed with plain", `\\?\D:\a\nextest\cargo-nextest\Cargo.toml`, `D:\a\nextest`, "cargo-nextest/Cargo.toml"},
		{"device mixed with plain", `\\.\C:\workspace\crate\Cargo.toml`, `C:\workspace`, "crate/Cargo.toml"},
		{"extended unc", `\\?\UNC\server\share\workspace\crate\Cargo.toml`, `\\?\UNC\server\share\workspace`, "crate/Cargo.toml"},

		// Trailing slashes
		{"trailing on target", `C:\foo\`, `C:\foo`, "."},
		{"trailing on both", `C:\foo\bar\`, `C:\foo\`, "bar"},
		{"trailing on base", `C:\foo`, `C:\foo\`, "."},

		// Root-only
		{"root base", `C:\foo`, `C:\`, "foo"},
		{"root target", `C:\`, `C:\foo`, ".."},
		{"root both", `C:\`, `C:\`, "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Diff(tt.p, tt.base)
			if err != nil {
				t.Fatalf("Diff(%q, %q) error = %v", tt.p, tt.base, err)
			}
			if got != tt.want {
				t.Errorf("Diff(%q, %q) = %q, want %q", tt.p, tt.base, got, tt.want)
			}
		})
	}
}

func TestDiffUnrelated(t *testing.T) {
	tests := []struct {
		name string
		p    string
		base string
	}{
		{"different drives", `D:\foo\bar`, `C:\baz`},
		{"different drives reversed", `C:\foo`, `D:\bar`},
		{"different unc servers", `\\server1\share\path`, `\\server2\share\path`},
		{"different unc shares", `\\server\share1\path`, `\\server\share2\path`},
		// UNC names are compared case-sensitively, unlike real Windows.
		{"unc server case", `\\SERVER\share\path`, `\\server\share\other`},
		{"unc share case", `\\server\SHARE\path`, `\\server\share\other`},
		{"windows and posix", `C:\foo`, "/bar"},
		{"posix and windows", "/foo", `D:\bar`},
		{"relative and absolute", "foo/bar", "/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Diff(tt.p, tt.base)
			if !errors.Is(err, ErrUnrelated) {
				t.Errorf("Diff(%q, %q) = %q, %v, want ErrUnrelated", tt.p, tt.base, got, err)
			}
		})
	}
}

func TestDiffRoundTrip(t *testing.T) {
	tests := []struct {
		p    string
		base string
	}{
		{`C:\work\a\b\Cargo.toml`, `C:\work\c`},
		{`C:\work\a`, `C:\work\a\b\c`},
		{`\\srv\share\x\y`, `\\srv\share\z`},
		{`\\?\E:\deep\tree\leaf`, `E:\deep`},
	}

	for _, tt := range tests {
		rel, err := Diff(tt.p, tt.base)
		if err != nil {
			t.Fatalf("Diff(%q, %q) error = %v", tt.p, tt.base, err)
		}
		_, baseRest, _ := parseWindowsPrefix(tt.base)
		_, pRest, _ := parseWindowsPrefix(tt.p)
		joined := path.Join("/", strings.ReplaceAll(baseRest, `\`, "/"), rel)
		want := path.Clean("/" + strings.ReplaceAll(pRest, `\`, "/"))
		if joined != want {
			t.Errorf("join(%q, %q) = %q, want %q", tt.base, rel, joined, want)
		}
	}
}

func TestParseWindowsPrefix(t *testing.T) {
	tests := []struct {
		in       string
		want     windowsPrefix
		wantRest string
		wantOK   bool
	}{
		{`C:\foo\bar`, windowsPrefix{drive: 'C'}, `\foo\bar`, true},
		{"D:/foo/bar", windowsPrefix{drive: 'D'}, "/foo/bar", true},
		{`e:\x`, windowsPrefix{drive: 'E'}, `\x`, true},
		{`\\server\share\path`, windowsPrefix{server: "server", share: "share"}, `\path`, true},
		{`\\server\share`, windowsPrefix{server: "server", share: "share"}, "", true},
		{`\\?\C:\foo`, windowsPrefix{drive: 'C'}, `\foo`, true},
		{`\\?\UNC\server\share\path`, windowsPrefix{server: "server", share: "share"}, `\path`, true},
		{`\\.\C:\foo`, windowsPrefix{drive: 'C'}, `\foo`, true},
		{`\\server`, windowsPrefix{}, "", false},
		{`\\\share`, windowsPrefix{}, "", false},
		{"C:", windowsPrefix{}, "", false},
		{"/foo/bar", windowsPrefix{}, "", false},
		{"relative/path", windowsPrefix{}, "", false},
	}

	for _, tt := range tests {
		got, rest, ok := parseWindowsPrefix(tt.in)
		if ok != tt.wantOK || got != tt.want || rest != tt.wantRest {
			t.Errorf("parseWindowsPrefix(%q) = %+v, %q, %v, want %+v, %q, %v",
				tt.in, got, rest, ok, tt.want, tt.wantRest, tt.wantOK)
		}
	}
}

func TestNormalizeWindows(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\Users\dev\Cargo.toml`, "C:/Users/dev/Cargo.toml"},
		{`\\server\share\a\b`, "//server/share/a/b"},
		{"/home/dev/Cargo.toml", "/home/dev/Cargo.toml"},
		{`relative\path`, `relative\path`},
	}
	for _, tt := range tests {
		if got := NormalizeWindows(tt.in); got != tt.want {
			t.Errorf("NormalizeWindows(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"crates/foo/Cargo.toml", "crates/foo", true},
		{"Cargo.toml", "", true},
		{"../../Crate/Cargo.toml", "../../Crate", true},
		{"/Cargo.toml", "/", true},
		{"C:/dev/Cargo.toml", "C:/dev", true},
		{"/", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Parent(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parent(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
