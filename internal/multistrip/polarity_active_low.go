//go:build multistrip_active_low

package multistrip

const activeLow = true
