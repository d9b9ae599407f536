// Package convert implements the lenient value conversions the dispatch
// engine falls back on when strict type matching fails: null handling,
// text parsing for enum-like types, scalar conversions and a registry of
// per-type converters.
//
// None of these functions dispatch through call sites; they are pure
// helpers. The orchestration (delegate adapters, interface proxies,
// explicit dynamic conversion) lives in package dyn.
package convert
