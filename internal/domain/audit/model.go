package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit log record. The census engine writes one
// summary entry per reconciliation run; registry services write one per
// mutating operation.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Category    string    `db:"category" json:"category"`
	Action      string    `db:"action" json:"action"`
	Target      string    `db:"target" json:"target"`
	Description string    `db:"description" json:"description"`
	Actor       string    `db:"actor" json:"actor"`
	Recorded    time.Time `db:"recorded" json:"recorded"`
}
