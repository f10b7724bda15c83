package persist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Event kinds written to island_events.
const (
	KindKill     = "kill"
	KindArrival  = "arrival"
	KindDepart   = "departure"
	KindTeardown = "teardown"
)

// LedgerEntry is one audit row. The simulation never reads these back.
type LedgerEntry struct {
	Kind    string
	Island  uint64
	Entity  uint64
	Other   uint64 // killer for kills, 0 otherwise
	X, Y, Z int32
	Detail  string
	Tick    uint64
}

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// WriteBatch writes a batch of entries in a single transaction.
func (r *LedgerRepo) WriteBatch(ctx context.Context, entries []LedgerEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO island_events (kind, island_id, entity_id, other_id, pos_x, pos_y, pos_z, detail, tick)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.Kind, int64(e.Island), int64(e.Entity), int64(e.Other), e.X, e.Y, e.Z, e.Detail, int64(e.Tick),
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// BatchWriter is the storage side of the async ledger.
type BatchWriter interface {
	WriteBatch(ctx context.Context, entries []LedgerEntry) error
}

// DropCounter receives the number of entries lost to a full queue.
type DropCounter interface {
	LedgerDropped(n int)
}

// AsyncLedger moves ledger writes off the game loop. Submit never blocks; a
// full queue drops the batch and counts it.
type AsyncLedger struct {
	repo     BatchWriter
	queue    chan []LedgerEntry
	interval time.Duration
	maxBatch int
	dropped  int
	drops    DropCounter
	done     chan struct{}
	log      *zap.Logger
}

func NewAsyncLedger(repo BatchWriter, maxBatch int, interval time.Duration, log *zap.Logger) *AsyncLedger {
	if maxBatch <= 0 {
		maxBatch = 256
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &AsyncLedger{
		repo:     repo,
		queue:    make(chan []LedgerEntry, 64),
		interval: interval,
		maxBatch: maxBatch,
		done:     make(chan struct{}),
		log:      log,
	}
}

// CountDrops reports dropped entries to c as well as the log.
func (l *AsyncLedger) CountDrops(c DropCounter) { l.drops = c }

// Submit hands a batch to the writer goroutine. Game loop only.
func (l *AsyncLedger) Submit(entries []LedgerEntry) bool {
	if len(entries) == 0 {
		return true
	}
	select {
	case l.queue <- entries:
		return true
	default:
		l.dropped += len(entries)
		if l.drops != nil {
			l.drops.LedgerDropped(len(entries))
		}
		l.log.Warn("事件紀錄佇列已滿，丟棄批次", zap.Int("entries", len(entries)), zap.Int("dropped_total", l.dropped))
		return false
	}
}

// Run writes batches until ctx is cancelled, then flushes what is buffered.
func (l *AsyncLedger) Run(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var buf []LedgerEntry
	flush := func(ctx context.Context) {
		for len(buf) > 0 {
			n := min(len(buf), l.maxBatch)
			if err := l.repo.WriteBatch(ctx, buf[:n]); err != nil {
				l.log.Error("事件紀錄寫入失敗", zap.Error(err), zap.Int("entries", n))
			}
			buf = buf[n:]
		}
		buf = nil
	}

	for {
		select {
		case batch := <-l.queue:
			buf = append(buf, batch...)
			if len(buf) >= l.maxBatch {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
		drain:
			for {
				select {
				case batch := <-l.queue:
					buf = append(buf, batch...)
				default:
					break drain
				}
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			flush(shutdownCtx)
			cancel()
			return
		}
	}
}

// Done is closed after Run returned.
func (l *AsyncLedger) Done() <-chan struct{} { return l.done }
