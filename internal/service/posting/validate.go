package posting

import (
	"context"

	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

// validate runs the double-entry rules against a candidate whose accounts
// have already been resolved. Checks run in a fixed order and the first
// violation wins. The rules are polarity-agnostic: any account may carry
// either a debit or a credit line.
func (s *service) validate(ctx context.Context, c ledger.CandidateEntry, accounts map[string]ledger.Account) error {
	if len(c.Lines) < 2 {
		return errs.NewValidation("too_few_lines", "entry must have at least two lines, got %d", len(c.Lines))
	}

	for i, ln := range c.Lines {
		if ln.DebitCents != 0 && ln.CreditCents != 0 {
			return errs.NewValidation("both_sides_set",
				"line %d: exactly one of debit or credit must be set, got both", i)
		}
		if ln.DebitCents == 0 && ln.CreditCents == 0 {
			return errs.NewValidation("no_side_set",
				"line %d: exactly one of debit or credit must be set, got neither", i)
		}
	}

	seen := make(map[string]struct{}, len(c.Lines))
	for _, ln := range c.Lines {
		if _, dup := seen[ln.AccountCode]; dup {
			return errs.NewValidation("duplicate_account",
				"account %s appears on more than one line", ln.AccountCode)
		}
		seen[ln.AccountCode] = struct{}{}
	}

	for i, ln := range c.Lines {
		if ln.DebitCents < 0 || ln.CreditCents < 0 {
			return errs.NewValidation("negative_amount",
				"line %d: amounts must be non-negative, got debit=%d credit=%d", i, ln.DebitCents, ln.CreditCents)
		}
	}

	var debits, credits int64
	for _, ln := range c.Lines {
		debits += ln.DebitCents
		credits += ln.CreditCents
	}
	if debits != credits {
		return errs.NewValidation("unbalanced",
			"entry is unbalanced: total debits %d != total credits %d", debits, credits)
	}
	if debits == 0 {
		return errs.NewValidation("zero_entry", "entry total must be greater than zero")
	}

	if ledger.Date(c.Date).After(ledger.Date(s.now())) {
		return errs.NewValidation("future_date",
			"entry date %s is in the future", ledger.Date(c.Date).Format("2006-01-02"))
	}

	if c.ReversesEntryID != nil {
		if _, err := s.repo.EntryByID(ctx, *c.ReversesEntryID); err != nil {
			return err
		}
	}
	return nil
}
