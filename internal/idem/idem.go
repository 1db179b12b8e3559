// Package idem implements the idempotency fingerprint: a canonical content
// hash of a candidate entry, stable across JSON field reordering so that
// semantically identical payloads always hash identically.
package idem

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/finbooks/ledger/internal/ledger"
)

const (
	MinKeyLen = 1
	MaxKeyLen = 255
)

// ValidKey reports whether k is an acceptable client idempotency key.
func ValidKey(k string) bool {
	return len(k) >= MinKeyLen && len(k) <= MaxKeyLen
}

// Fingerprint returns the sha256 hex digest of the canonical form of c.
// Fields are marshaled in a fixed order and the date is reduced to its
// calendar form; line order is preserved because it is semantically
// meaningful (it becomes LineIndex).
func Fingerprint(c ledger.CandidateEntry) string {
	type line struct {
		Code   string `json:"code"`
		Debit  int64  `json:"debit"`
		Credit int64  `json:"credit"`
	}
	type payload struct {
		Date      string `json:"date"`
		Narration string `json:"narration"`
		Reverses  string `json:"reverses,omitempty"`
		Lines     []line `json:"lines"`
	}
	p := payload{
		Date:      ledger.Date(c.Date).Format("2006-01-02"),
		Narration: c.Narration,
		Lines:     make([]line, 0, len(c.Lines)),
	}
	if c.ReversesEntryID != nil {
		p.Reverses = c.ReversesEntryID.String()
	}
	for _, ln := range c.Lines {
		p.Lines = append(p.Lines, line{Code: ln.AccountCode, Debit: ln.DebitCents, Credit: ln.CreditCents})
	}
	b, _ := json.Marshal(p)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
