package explorer

import (
	"time"

	"github.com/google/uuid"
)

// StakingEvent is the indexed form of a ledger event. Attributes keeps the
// raw attribute map as JSON so new event fields never require a migration.
type StakingEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type       string    `gorm:"size:64;index" json:"type"`
	Depositor  string    `gorm:"size:64;index" json:"depositor,omitempty"`
	Attributes string    `gorm:"type:text" json:"attributes"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
