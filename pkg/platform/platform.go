package platform

import (
	"runtime"
	"slices"
	"strconv"
	"strings"
)

// Ternary is the result of evaluating a platform condition.
type Ternary int

const (
	Disabled Ternary = iota
	Enabled
	// Unknown means the result depends on information the platform does not
	// carry, such as unspecified target features.
	Unknown
)

// Not negates t. Unknown stays unknown.
func (t Ternary) Not() Ternary {
	switch t {
	case Enabled:
		return Disabled
	case Disabled:
		return Enabled
	default:
		return Unknown
	}
}

// Or returns Enabled if either side is enabled, Disabled if both are
// disabled, and Unknown otherwise.
func (t Ternary) Or(o Ternary) Ternary {
	switch {
	case t == Enabled || o == Enabled:
		return Enabled
	case t == Disabled && o == Disabled:
		return Disabled
	default:
		return Unknown
	}
}

// And returns Disabled if either side is disabled, Enabled if both are
// enabled, and Unknown otherwise.
func (t Ternary) And(o Ternary) Ternary {
	switch {
	case t == Disabled || o == Disabled:
		return Disabled
	case t == Enabled && o == Enabled:
		return Enabled
	default:
		return Unknown
	}
}

func (t Ternary) String() string {
	switch t {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Triple is a target triple decomposed into the cfg values rustc derives
// from it.
type Triple struct {
	Raw          string
	Arch         string
	Vendor       string
	OS           string
	Env          string
	ABI          string
	Families     []string
	PointerWidth int
	Endian       string
}

var knownVendors = map[string]bool{
	"unknown": true, "pc": true, "apple": true, "sun": true, "fortanix": true,
	"nvidia": true, "wrs": true, "sony": true, "nintendo": true, "esp": true,
	"espressif": true, "kmc": true, "unikraft": true, "uwp": true, "win7": true,
	"openwrt": true, "risc0": true, "amd": true, "ibm": true, "lynx": true,
}

var unixOS = map[string]bool{
	"linux": true, "android": true, "macos": true, "ios": true, "tvos": true,
	"watchos": true, "visionos": true, "freebsd": true, "netbsd": true,
	"openbsd": true, "dragonfly": true, "solaris": true, "illumos": true,
	"haiku": true, "fuchsia": true, "redox": true, "emscripten": true,
	"aix": true, "hurd": true, "nto": true, "l4re": true, "vxworks": true,
	"horizon": true, "espidf": true,
}

// ParseTriple validates a target triple and derives its cfg values. Any
// syntactically valid triple is accepted: two to five dash-separated
// components made of ASCII letters, digits, '_' and '.'.
func ParseTriple(s string) (Triple, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 2 || len(parts) > 5 {
		return Triple{}, &ParseError{Input: s, Reason: "target triple must have between 2 and 5 components"}
	}
	for _, p := range parts {
		if p == "" || !isTripleComponent(p) {
			return Triple{}, &ParseError{Input: s, Reason: "invalid target triple component " + strconv.Quote(p)}
		}
	}

	t := Triple{Raw: s, Arch: normalizeArch(parts[0])}
	rest := parts[1:]
	if len(rest) >= 2 && knownVendors[rest[0]] {
		t.Vendor, rest = rest[0], rest[1:]
	} else {
		t.Vendor = "unknown"
	}
	if len(rest) > 0 {
		t.OS, rest = normalizeOS(rest[0]), rest[1:]
	}
	if len(rest) > 0 {
		t.Env, t.ABI = splitEnv(rest[0])
		if strings.HasPrefix(rest[0], "android") {
			t.OS = "android"
		}
	}

	switch {
	case t.OS == "windows":
		t.Families = []string{"windows"}
	case unixOS[t.OS]:
		t.Families = []string{"unix"}
	}
	if strings.HasPrefix(t.Arch, "wasm") {
		t.Families = append(t.Families, "wasm")
	}
	t.PointerWidth = pointerWidth(t.Arch, parts[0])
	t.Endian = endian(parts[0])
	return t, nil
}

func isTripleComponent(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

func normalizeArch(a string) string {
	switch {
	case a == "i386" || a == "i586" || a == "i686":
		return "x86"
	case a == "arm64":
		return "aarch64"
	case strings.HasPrefix(a, "aarch64"):
		return "aarch64"
	case strings.HasPrefix(a, "arm"), strings.HasPrefix(a, "thumb"):
		return "arm"
	case strings.HasPrefix(a, "riscv64"):
		return "riscv64"
	case strings.HasPrefix(a, "riscv32"):
		return "riscv32"
	case strings.HasPrefix(a, "powerpc64"):
		return "powerpc64"
	case strings.HasPrefix(a, "mips64"):
		return "mips64"
	case strings.HasPrefix(a, "mips"):
		return "mips"
	default:
		return a
	}
}

func normalizeOS(os string) string {
	switch os {
	case "darwin":
		return "macos"
	default:
		return os
	}
}

// splitEnv splits an environment component such as gnueabihf into the
// environment (gnu) and ABI (eabihf).
func splitEnv(env string) (string, string) {
	for _, base := range []string{"gnu", "musl", "msvc", "sgx", "uclibc", "newlib", "ohos", "relibc"} {
		if strings.HasPrefix(env, base) {
			return base, strings.TrimPrefix(env, base)
		}
	}
	if strings.HasPrefix(env, "android") {
		return "", strings.TrimPrefix(env, "android")
	}
	return "", env
}

func pointerWidth(arch, raw string) int {
	switch arch {
	case "x86_64", "aarch64", "riscv64", "powerpc64", "mips64", "s390x",
		"sparc64", "wasm64", "loongarch64", "bpfel", "bpfeb", "nvptx64":
		if strings.HasSuffix(raw, "_32") {
			return 32
		}
		return 64
	case "avr", "msp430":
		return 16
	default:
		return 32
	}
}

func endian(rawArch string) string {
	switch {
	case rawArch == "s390x", rawArch == "sparc64", rawArch == "sparc", rawArch == "bpfeb":
		return "big"
	case strings.HasPrefix(rawArch, "powerpc") && !strings.HasSuffix(rawArch, "le"):
		return "big"
	case strings.HasPrefix(rawArch, "mips") && !strings.HasSuffix(rawArch, "el"):
		return "big"
	case strings.HasSuffix(rawArch, "_be"):
		return "big"
	default:
		return "little"
	}
}

// Platform is a compilation target against which conditions are evaluated.
type Platform struct {
	Triple Triple

	// Features lists enabled target features. It is ignored when
	// FeaturesUnknown is set, in which case target_feature predicates
	// evaluate to Unknown.
	Features        []string
	FeaturesUnknown bool

	// Flags are additional cfg flags, such as test or debug_assertions.
	Flags []string
}

// New creates a platform for the given triple with no target features and no
// extra flags.
func New(triple string) (*Platform, error) {
	t, err := ParseTriple(triple)
	if err != nil {
		return nil, err
	}
	return &Platform{Triple: t}, nil
}

// Host returns the platform for the machine running the current process, with
// target features unknown.
func Host() *Platform {
	arch := map[string]string{
		"amd64": "x86_64", "arm64": "aarch64", "386": "i686", "arm": "armv7",
		"riscv64": "riscv64gc", "ppc64le": "powerpc64le", "s390x": "s390x",
		"loong64": "loongarch64", "wasm": "wasm32",
	}[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}
	var suffix string
	switch runtime.GOOS {
	case "darwin":
		suffix = "apple-darwin"
	case "windows":
		suffix = "pc-windows-msvc"
	case "linux":
		suffix = "unknown-linux-gnu"
		if arch == "armv7" {
			suffix = "unknown-linux-gnueabihf"
		}
	default:
		suffix = "unknown-" + runtime.GOOS
	}
	p, err := New(arch + "-" + suffix)
	if err != nil {
		return &Platform{Triple: Triple{Raw: arch + "-" + suffix}, FeaturesUnknown: true}
	}
	p.FeaturesUnknown = true
	return p
}

// WithFeatures returns a copy of p with the given target features enabled.
func (p *Platform) WithFeatures(features ...string) *Platform {
	out := *p
	out.Features = slices.Clone(features)
	out.FeaturesUnknown = false
	return &out
}

// WithFlags returns a copy of p with extra cfg flags set.
func (p *Platform) WithFlags(flags ...string) *Platform {
	out := *p
	out.Flags = append(slices.Clone(p.Flags), flags...)
	return &out
}

func (p *Platform) String() string { return p.Triple.Raw }

func (p *Platform) evalFlag(flag string) Ternary {
	switch flag {
	case "unix", "windows":
		return boolTernary(slices.Contains(p.Triple.Families, flag))
	}
	return boolTernary(slices.Contains(p.Flags, flag))
}

func (p *Platform) evalKey(key, value string) Ternary {
	t := p.Triple
	switch key {
	case "target_arch":
		return boolTernary(t.Arch == value)
	case "target_os":
		return boolTernary(t.OS == value)
	case "target_vendor":
		return boolTernary(t.Vendor == value)
	case "target_env":
		return boolTernary(t.Env == value)
	case "target_abi":
		return boolTernary(t.ABI == value)
	case "target_family":
		return boolTernary(slices.Contains(t.Families, value))
	case "target_endian":
		return boolTernary(t.Endian == value)
	case "target_pointer_width":
		return boolTernary(strconv.Itoa(t.PointerWidth) == value)
	case "target_feature":
		if p.FeaturesUnknown {
			return Unknown
		}
		return boolTernary(slices.Contains(p.Features, value))
	case "target_has_atomic":
		return Unknown
	default:
		return Disabled
	}
}

func boolTernary(b bool) Ternary {
	if b {
		return Enabled
	}
	return Disabled
}
