package explorer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stakevault/core/events"
	"stakevault/core/types"
)

// Indexer persists every emitted staking event into a relational store so the
// read API can serve histories without touching the ledger.
type Indexer struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time
}

// Open initialises the event store at the given sqlite DSN.
func Open(dsn string, logger *slog.Logger) (*Indexer, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("explorer: dsn must be configured")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("explorer: open database: %w", err)
	}
	if err := db.AutoMigrate(&StakingEvent{}); err != nil {
		return nil, fmt.Errorf("explorer: migrate schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		db:     db,
		logger: logger,
		nowFn:  time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (ix *Indexer) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	sqlDB, err := ix.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Emit implements events.Emitter. Indexing failures are logged rather than
// propagated: the ledger operation has already committed by the time the
// event reaches the indexer.
func (ix *Indexer) Emit(evt events.Event) {
	if ix == nil || evt == nil {
		return
	}
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	payload := carrier.Event()
	if payload == nil {
		return
	}
	attrs, err := json.Marshal(payload.Attributes)
	if err != nil {
		ix.logger.Error("encode event attributes", "type", payload.Type, "err", err)
		return
	}
	row := StakingEvent{
		ID:         uuid.New(),
		Type:       payload.Type,
		Depositor:  payload.Attributes["addr"],
		Attributes: string(attrs),
		CreatedAt:  ix.nowFn().UTC(),
	}
	if err := ix.db.Create(&row).Error; err != nil {
		ix.logger.Error("index staking event", "type", payload.Type, "err", err)
	}
}

// Events returns the most recent events, optionally filtered by type.
func (ix *Indexer) Events(eventType string, limit int) ([]StakingEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := ix.db.Order("created_at desc, id").Limit(limit)
	if trimmed := strings.TrimSpace(eventType); trimmed != "" {
		query = query.Where("type = ?", trimmed)
	}
	var rows []StakingEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("explorer: list events: %w", err)
	}
	return rows, nil
}

// DepositorEvents returns the most recent events attributed to addr.
func (ix *Indexer) DepositorEvents(addr string, limit int) ([]StakingEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []StakingEvent
	err := ix.db.
		Where("depositor = ?", strings.TrimSpace(addr)).
		Order("created_at desc, id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("explorer: list depositor events: %w", err)
	}
	return rows, nil
}
