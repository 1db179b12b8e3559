package ledger

import (
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates the broad classification of an account in the ledger.
type AccountType string

const (
	// AccountTypeAsset increases on the debit side and holds resources owned by the entity.
	AccountTypeAsset AccountType = "asset"
	// AccountTypeLiability increases on the credit side and tracks obligations.
	AccountTypeLiability AccountType = "liability"
	// AccountTypeEquity captures the owner's residual interest in the entity.
	AccountTypeEquity AccountType = "equity"
	// AccountTypeRevenue represents inflows that increase equity.
	AccountTypeRevenue AccountType = "revenue"
	// AccountTypeExpense represents outflows that decrease equity.
	AccountTypeExpense AccountType = "expense"
)

// ValidType reports whether t is one of the five account types.
func ValidType(t AccountType) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Polarity is the side on which an account type naturally increases.
type Polarity string

const (
	PolarityDebit  Polarity = "debit"
	PolarityCredit Polarity = "credit"
)

// NormalPolarity returns the normal balance side for an account type.
// Assets and expenses are debit-normal; liabilities, equity and revenue are
// credit-normal. The validator never consults this; only reporting does.
func NormalPolarity(t AccountType) Polarity {
	if t == AccountTypeAsset || t == AccountTypeExpense {
		return PolarityDebit
	}
	return PolarityCredit
}

// Account represents a ledger account identified by its unique code.
// Accounts are created once and never mutated; they may be retired only while
// no journal line references them.
type Account struct {
	ID   uuid.UUID
	Code string
	Name string
	Type AccountType
}

// JournalEntry captures an immutable, balanced set of journal lines.
// ReversesEntryID is set only on reversal entries and is a weak back-reference
// to the entry being corrected.
type JournalEntry struct {
	ID              uuid.UUID
	Date            time.Time
	Narration       string
	PostedAt        time.Time
	ReversesEntryID *uuid.UUID
	Lines           []JournalLine
}

// JournalLine belongs to exactly one entry and references one account.
// Exactly one of DebitCents/CreditCents is strictly positive.
type JournalLine struct {
	ID          uuid.UUID
	EntryID     uuid.UUID
	AccountID   uuid.UUID
	AccountCode string
	LineIndex   int
	DebitCents  int64
	CreditCents int64
}

// Totals returns the entry's summed debit and credit cents.
func (e JournalEntry) Totals() (debits, credits int64) {
	for _, ln := range e.Lines {
		debits += ln.DebitCents
		credits += ln.CreditCents
	}
	return debits, credits
}

// IdempotencyRecord maps a client key to the content hash of the request it
// first arrived with and the entry created for it. Written at most once per key.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	EntryID     uuid.UUID
}

// CandidateEntry is a caller-submitted entry before validation and
// persistence. Line order is preserved and becomes the stored LineIndex.
type CandidateEntry struct {
	Date            time.Time
	Narration       string
	ReversesEntryID *uuid.UUID
	Lines           []CandidateLine
}

// CandidateLine names an account by code with an amount on exactly one side.
type CandidateLine struct {
	AccountCode string
	DebitCents  int64
	CreditCents int64
}

// Date truncates t to a UTC calendar date. Entry dates carry no time of day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReversalOf returns a candidate that inverts e line by line: debit and credit
// swapped, account and position preserved, with a back-reference to e. The
// result goes through the full validation and idempotency path like any other
// entry; reversal is not a privileged code path.
func ReversalOf(e JournalEntry, date time.Time, narration string) CandidateEntry {
	if narration == "" {
		narration = "reversal of " + e.ID.String() + ": " + e.Narration
	}
	if len(narration) > 500 {
		narration = narration[:500]
	}
	id := e.ID
	c := CandidateEntry{
		Date:            Date(date),
		Narration:       narration,
		ReversesEntryID: &id,
		Lines:           make([]CandidateLine, 0, len(e.Lines)),
	}
	for _, ln := range e.Lines {
		c.Lines = append(c.Lines, CandidateLine{
			AccountCode: ln.AccountCode,
			DebitCents:  ln.CreditCents,
			CreditCents: ln.DebitCents,
		})
	}
	return c
}
