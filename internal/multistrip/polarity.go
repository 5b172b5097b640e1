//go:build !multistrip_active_low

package multistrip

// activeLow inverts every sampled channel line. Build with the
// multistrip_active_low tag for switches that pull the line low when closed.
const activeLow = false
