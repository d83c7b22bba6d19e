package sheets

import (
	"context"
	"time"

	"floosafandy/internal/core"
)

// Entry is one row of the backup journal. Deleted transactions are recorded
// as tombstone rows rather than removed, so the journal stays append-only.
type Entry struct {
	TransactionID int64
	Owner         string
	AccountID     int64
	Date          time.Time
	Direction     core.Direction
	Amount        core.Money
	Description   string
	Category      string
	Deleted       bool
}

// JournalWriter is the outbound port for the backup journal.
type JournalWriter interface {
	Append(ctx context.Context, e Entry) (rowRef string, err error)
}
