package platform

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func mustPlatform(t *testing.T, triple string) *Platform {
	t.Helper()
	p, err := New(triple)
	assert.NoError(t, err)
	return p
}

func TestParseTriple(t *testing.T) {
	tests := []struct {
		triple string
		want   Triple
	}{
		{"x86_64-unknown-linux-gnu", Triple{
			Arch: "x86_64", Vendor: "unknown", OS: "linux", Env: "gnu",
			Families: []string{"unix"}, PointerWidth: 64, Endian: "little",
		}},
		{"i686-pc-windows-msvc", Triple{
			Arch: "x86", Vendor: "pc", OS: "windows", Env: "msvc",
			Families: []string{"windows"}, PointerWidth: 32, Endian: "little",
		}},
		{"x86_64-apple-darwin", Triple{
			Arch: "x86_64", Vendor: "apple", OS: "macos",
			Families: []string{"unix"}, PointerWidth: 64, Endian: "little",
		}},
		{"armv7-unknown-linux-gnueabihf", Triple{
			Arch: "arm", Vendor: "unknown", OS: "linux", Env: "gnu", ABI: "eabihf",
			Families: []string{"unix"}, PointerWidth: 32, Endian: "little",
		}},
		{"aarch64-linux-android", Triple{
			Arch: "aarch64", Vendor: "unknown", OS: "android",
			Families: []string{"unix"}, PointerWidth: 64, Endian: "little",
		}},
		{"wasm32-unknown-unknown", Triple{
			Arch: "wasm32", Vendor: "unknown", OS: "unknown",
			Families: []string{"wasm"}, PointerWidth: 32, Endian: "little",
		}},
		{"thumbv7em-none-eabihf", Triple{
			Arch: "arm", Vendor: "unknown", OS: "none", ABI: "eabihf",
			PointerWidth: 32, Endian: "little",
		}},
		{"s390x-unknown-linux-gnu", Triple{
			Arch: "s390x", Vendor: "unknown", OS: "linux", Env: "gnu",
			Families: []string{"unix"}, PointerWidth: 64, Endian: "big",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.triple, func(t *testing.T) {
			got, err := ParseTriple(tt.triple)
			assert.NoError(t, err)
			tt.want.Raw = tt.triple
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTripleInvalid(t *testing.T) {
	for _, input := range []string{"", "x86_64", "x86 64-linux", "x86_64--linux", "a-b-c-d-e-f"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTriple(input)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, input, perr.Input)
		})
	}
}

func TestParseExpressionString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cfg(unix)", "cfg(unix)"},
		{`cfg(all( unix ,target_os="linux"))`, `cfg(all(unix, target_os = "linux"))`},
		{`cfg(any(windows, all(unix, not(target_env = "musl")),))`, `cfg(any(windows, all(unix, not(target_env = "musl"))))`},
		{"cfg(all())", "cfg(all())"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpression(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"cfg(",
		"cfg()",
		"cfg(not(unix, windows))",
		"cfg(not())",
		"cfg(target_os = linux)",
		"cfg(unix) trailing",
		"x86_64",
		"",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
		})
	}
}

func TestEval(t *testing.T) {
	linux := mustPlatform(t, "x86_64-unknown-linux-gnu")
	windows := mustPlatform(t, "x86_64-pc-windows-msvc")
	mac := mustPlatform(t, "x86_64-apple-darwin")

	tests := []struct {
		spec     string
		platform *Platform
		want     Ternary
	}{
		{"cfg(unix)", linux, Enabled},
		{"cfg(unix)", windows, Disabled},
		{"cfg(windows)", windows, Enabled},
		{"cfg(not(windows))", linux, Enabled},
		{`cfg(all(unix, target_arch = "x86_64"))`, linux, Enabled},
		{`cfg(all(unix, target_arch = "aarch64"))`, linux, Disabled},
		{`cfg(target_os = "macos")`, mac, Enabled},
		{`cfg(target_env = "")`, mac, Enabled},
		{`cfg(target_family = "unix")`, mac, Enabled},
		{`cfg(target_pointer_width = "64")`, windows, Enabled},
		{`cfg(target_endian = "big")`, linux, Disabled},
		{`cfg(target_vendor = "pc")`, windows, Enabled},
		{"cfg(all())", linux, Enabled},
		{"cfg(any())", linux, Disabled},
		{`cfg(feature = "std")`, linux, Disabled},
		{"cfg(test)", linux, Disabled},
		{"cfg(test)", linux.WithFlags("test"), Enabled},
		{"x86_64-pc-windows-msvc", windows, Enabled},
		{"x86_64-pc-windows-msvc", linux, Disabled},

		// Target features
		{`cfg(target_feature = "sse2")`, linux, Disabled},
		{`cfg(target_feature = "sse2")`, linux.WithFeatures("sse2"), Enabled},
		{`cfg(target_feature = "sse2")`, Host(), Unknown},
		{`cfg(not(target_feature = "sse2"))`, Host(), Unknown},
		{`cfg(any(target_feature = "avx", all()))`, Host(), Enabled},
		{`cfg(all(target_feature = "avx", any()))`, Host(), Disabled},
		{`cfg(all(target_feature = "avx", all()))`, Host(), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"/"+tt.platform.String(), func(t *testing.T) {
			spec, err := Parse(tt.spec)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, spec.Eval(tt.platform))
		})
	}
}

func TestTargetSpecKinds(t *testing.T) {
	triple := MustParse(" x86_64-unknown-linux-gnu ")
	assert.True(t, triple.IsTriple())
	assert.Equal(t, "x86_64-unknown-linux-gnu", triple.String())
	assert.Equal(t, "linux", triple.Triple().OS)
	assert.Zero(t, triple.Expression())

	expr := MustParse("cfg(unix)")
	assert.False(t, expr.IsTriple())
	assert.Equal(t, "cfg(unix)", expr.Expression().String())
}

func TestTernaryNot(t *testing.T) {
	assert.Equal(t, Disabled, Enabled.Not())
	assert.Equal(t, Enabled, Disabled.Not())
	assert.Equal(t, Unknown, Unknown.Not())
}

func TestTernaryOrAnd(t *testing.T) {
	values := []Ternary{Disabled, Enabled, Unknown}
	wantOr := [3][3]Ternary{
		{Disabled, Enabled, Unknown},
		{Enabled, Enabled, Enabled},
		{Unknown, Enabled, Unknown},
	}
	wantAnd := [3][3]Ternary{
		{Disabled, Disabled, Disabled},
		{Disabled, Enabled, Unknown},
		{Disabled, Unknown, Unknown},
	}
	for i, a := range values {
		for j, b := range values {
			assert.Equal(t, wantOr[i][j], a.Or(b), "%s or %s", a, b)
			assert.Equal(t, wantAnd[i][j], a.And(b), "%s and %s", a, b)
		}
	}
}
