// SPDX-License-Identifier: Apache-2.0

//go:build arenadebug

package arenastring

const debugEnabled = true

// assert panics when a caller contract is violated: a tagged-pointer cast
// with the wrong tag, or an operation applied to a slot in a state it
// documents as a precondition violation.
func assert(cond bool, msg string) {
	if !cond {
		panic("arenastring: " + msg)
	}
}
