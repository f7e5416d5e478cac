// Package gate implements the archive's passphrase gate. It is a
// family-facing lock screen, not an authentication system: one shared
// phrase, compared in constant time, with no accounts or tokens behind
// it.
package gate

import "crypto/subtle"

// Gate holds the configured phrase.
type Gate struct {
	phrase []byte
}

func New(phrase string) *Gate {
	return &Gate{phrase: []byte(phrase)}
}

// Enabled reports whether a phrase is configured at all. An empty
// phrase disables the gate.
func (g *Gate) Enabled() bool {
	return len(g.phrase) > 0
}

// Check compares attempt against the configured phrase in constant
// time. A disabled gate accepts everything.
func (g *Gate) Check(attempt []byte) bool {
	if !g.Enabled() {
		return true
	}
	return subtle.ConstantTimeCompare(g.phrase, attempt) == 1
}
