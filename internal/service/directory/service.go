// Package directory implements the account directory: the authoritative
// mapping from account code to account identity and type. Codes are unique;
// accounts are immutable after creation and may be retired only while no
// journal line references them.
package directory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finbooks/ledger/internal/code"
	"github.com/finbooks/ledger/internal/errs"
	"github.com/finbooks/ledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountByCode(ctx context.Context, c string) (ledger.Account, error)
	AccountsByCodes(ctx context.Context, codes []string) (map[string]ledger.Account, error)
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	AccountHasActivity(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error
}

// Service exposes account creation, resolution and retirement.
type Service interface {
	Create(ctx context.Context, c, name string, t ledger.AccountType) (ledger.Account, error)
	Get(ctx context.Context, c string) (ledger.Account, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Resolve(ctx context.Context, codes []string) (map[string]ledger.Account, error)
	HasActivity(ctx context.Context, c string) (bool, error)
	Retire(ctx context.Context, c string) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Create(ctx context.Context, c, name string, t ledger.AccountType) (ledger.Account, error) {
	c = code.Normalize(c)
	if !code.IsValid(c) {
		return ledger.Account{}, errs.NewValidation("invalid_code", "code %q is not a valid account code", c)
	}
	if name == "" {
		return ledger.Account{}, errs.NewValidation("missing_name", "name is required")
	}
	if !ledger.ValidType(t) {
		return ledger.Account{}, errs.NewValidation("invalid_type", "type %q is not a valid account type", t)
	}
	a := ledger.Account{ID: uuid.New(), Code: c, Name: name, Type: t}
	// Uniqueness of the code is enforced by the store; a duplicate surfaces
	// as errs.ErrConflict.
	return s.writer.CreateAccount(ctx, a)
}

func (s *service) Get(ctx context.Context, c string) (ledger.Account, error) {
	return s.repo.AccountByCode(ctx, code.Normalize(c))
}

func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Resolve returns the accounts for the given codes. Every missing code is
// reported in one combined error rather than failing on the first.
func (s *service) Resolve(ctx context.Context, codes []string) (map[string]ledger.Account, error) {
	uniq := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = code.Normalize(c)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	found, err := s.repo.AccountsByCodes(ctx, uniq)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, c := range uniq {
		if _, ok := found[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &errs.MissingAccounts{Codes: missing}
	}
	return found, nil
}

func (s *service) HasActivity(ctx context.Context, c string) (bool, error) {
	a, err := s.repo.AccountByCode(ctx, code.Normalize(c))
	if err != nil {
		return false, err
	}
	return s.repo.AccountHasActivity(ctx, a.ID)
}

// Retire deletes an account that has never been posted to. Accounts with
// activity are immutable history and stay.
func (s *service) Retire(ctx context.Context, c string) error {
	a, err := s.repo.AccountByCode(ctx, code.Normalize(c))
	if err != nil {
		return err
	}
	active, err := s.repo.AccountHasActivity(ctx, a.ID)
	if err != nil {
		return err
	}
	if active {
		return errs.ErrHasActivity
	}
	return s.writer.DeleteAccount(ctx, a.ID)
}
