// Package dedupe suppresses repeated deliveries of the same message within a
// time window.
package dedupe
