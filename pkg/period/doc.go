// Package period calculates the half-open time windows backing periodic
// allowances: billing cycles anchored to an external subscription, calendar
// months/weeks/days, fixed durations, and caller-supplied custom windows.
//
// The calculator is pure given its inputs except for one external read, the
// optional AnchorProvider exposing subscription billing anchors. A missing
// provider, an inactive subscription, or a failed anchor read all degrade to
// calendar fallbacks; only misconfiguration (an unknown period kind, a custom
// window func returning garbage) is an error.
//
// All windows are computed in UTC. Every method takes an explicit now so
// window math is trivially testable with fixed clocks.
package period
