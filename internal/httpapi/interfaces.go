package httpapi

import (
	"context"

	"github.com/finbooks/ledger/internal/service/directory"
	"github.com/finbooks/ledger/internal/service/posting"
	"github.com/finbooks/ledger/internal/service/report"
)

// Repository abstracts read-side operations needed by the API. It is the
// union of the per-service read interfaces; overlapping methods share one
// signature so a single store satisfies all of them.
type Repository interface {
	directory.Repo
	posting.Repo
	report.Repo
}

// Writer abstracts write-side operations needed by the API.
type Writer interface {
	directory.Writer
	posting.Writer
}

// ReadyChecker is implemented by stores that can verify connectivity.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
