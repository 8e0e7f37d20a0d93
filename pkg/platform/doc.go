// Package platform evaluates Cargo platform conditions.
//
// # Overview
//
// Cargo dependencies can be made platform-specific with a [target] table
// whose key is either a target triple or a cfg() expression:
//
//	[target.'cfg(unix)'.dependencies]
//	libc = "0.2"
//
//	[target.x86_64-pc-windows-msvc.dependencies]
//	winapi = "0.3"
//
// [Parse] turns either spelling into a [TargetSpec]. Expressions are parsed
// with a participle grammar supporting all(), any(), not(), bare flags and
// key = "value" pairs. Triples are validated syntactically; they are matched
// by exact string comparison.
//
// # Platforms
//
// A [Platform] describes a compilation target: its [Triple] decomposed into
// architecture, vendor, OS, environment and ABI, the derived family, pointer
// width and endianness, plus the enabled target features and cfg flags.
// [TargetSpec.Eval] evaluates a spec against a platform and returns a
// [Ternary]: the result is [Unknown] when it depends on information the
// platform does not carry (for example target features that were never
// specified).
//
// # Condition Sets
//
// [PlatformSpecs] is a union of target specs with an explicit "always"
// sentinel. Adding a nil spec (an unconditional dependency) turns the set into
// [Always], which then absorbs every later addition. Union is total,
// associative and commutative: specs are kept sorted and de-duplicated, so the
// order in which manifest declarations are folded in never changes the result.
package platform
