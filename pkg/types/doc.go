/*
Package types defines the value types shared across the gobj runtime:
the generic kw payload, the attribute schema's semantic type and flag
vocabulary, and the per-object role variant.

# KW

KW is a nested map[string]any, the Go stand-in for the JSON kw object
exchanged between gobjs (spec.md §3 "Data model"). Clone, Merge and
DeleteKeys implement the deep-copy and key-removal rules the pub/sub
engine applies while building each subscriber's delivered payload
(spec.md §4.6.2).

# SemType and AttrFlag

SemType names the declared type of one attribute, command parameter, or
authz parameter (string, boolean, int32/int64, uint32/uint64, real,
json, pointer, list, iter). AttrFlag is the bitset attached to each
schema field: readable/writable/required, the three stats-rollup flags
(stats/rstats/pstats), persistent, volatile, public, and the two authz
gates (authz_read/authz_write).

# Role

Role replaces the source C library's combinable per-object flag bitmask
(yuno / service / default_service / unique_name) with a single tagged
variant, since those four are mutually exclusive in practice; volatile
is kept as its own orthogonal bool on Gobj because it genuinely
combines with any role.
*/
package types
