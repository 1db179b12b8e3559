package idem

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/ledger/internal/ledger"
)

func candidate() ledger.CandidateEntry {
	return ledger.CandidateEntry{
		Date:      time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Narration: "lunch",
		Lines: []ledger.CandidateLine{
			{AccountCode: "1001", DebitCents: 1500},
			{AccountCode: "4001", CreditCents: 1500},
		},
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(candidate())
	b := Fingerprint(candidate())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintIgnoresTimeOfDay(t *testing.T) {
	c := candidate()
	c.Date = c.Date.Add(13 * time.Hour)
	assert.Equal(t, Fingerprint(candidate()), Fingerprint(c))
}

func TestFingerprintSensitiveToContent(t *testing.T) {
	base := Fingerprint(candidate())

	c := candidate()
	c.Narration = "dinner"
	assert.NotEqual(t, base, Fingerprint(c))

	c = candidate()
	c.Lines[0].DebitCents = 1501
	c.Lines[1].CreditCents = 1501
	assert.NotEqual(t, base, Fingerprint(c))

	c = candidate()
	id := uuid.New()
	c.ReversesEntryID = &id
	assert.NotEqual(t, base, Fingerprint(c))

	// line order is semantically meaningful
	c = candidate()
	c.Lines[0], c.Lines[1] = c.Lines[1], c.Lines[0]
	assert.NotEqual(t, base, Fingerprint(c))
}

func TestValidKey(t *testing.T) {
	assert.False(t, ValidKey(""))
	assert.True(t, ValidKey("k"))
	assert.True(t, ValidKey(strings.Repeat("k", 255)))
	assert.False(t, ValidKey(strings.Repeat("k", 256)))
}
