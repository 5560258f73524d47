// SPDX-License-Identifier: Apache-2.0

//go:build !arenadebug

package arenastring

// debugEnabled selects the diagnostic build mode. In the default build,
// tagged-pointer casts are unchecked and FieldStringSlot.Swap exchanges
// pointers. Build with -tags arenadebug to enable assertions and content-swap
// semantics.
const debugEnabled = false

func assert(bool, string) {}
