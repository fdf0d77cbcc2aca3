// Package localstore is the device-local block store. It holds the mirrored
// block list that call and message screening consults, plus the audit log of
// what screening intercepted. Backed by an embedded BadgerDB so screening
// keeps working with no network and survives restarts.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// Key prefixes. Block entries are keyed by phone number; audit entries by a
// timestamp-ordered id so iteration returns them oldest first.
const (
	prefixNumber  = "num:"
	prefixCall    = "call:"
	prefixMessage = "msg:"
)

// A blocked message audit entry keeps only the first 50 characters of the
// message body.
const messagePreviewLimit = 50

// BlockEntry is the locally enforced block for one phone number.
type BlockEntry struct {
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name"`
	BlockedAt   time.Time `json:"blocked_at"`
}

// BlockedCall records an intercepted incoming call.
type BlockedCall struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BlockedMessage records an intercepted incoming message. Preview is
// truncated, never the full body.
type BlockedMessage struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name"`
	Preview     string    `json:"preview"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Store wraps a BadgerDB instance. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local block store: %w", err)
	}

	logger.Named("localstore").Info("Opened local block store", zap.String("dir", dir))

	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Block upserts a block entry for the phone number.
func (s *Store) Block(ctx context.Context, entry BlockEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.BlockedAt.IsZero() {
		entry.BlockedAt = time.Now().UTC()
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal block entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixNumber+entry.Phone), value)
	})
}

// Unblock removes the block entry for the phone number. Removing an absent
// number is a no-op.
func (s *Store) Unblock(ctx context.Context, phone string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixNumber + phone))
	})
}

// Lookup returns the block entry for a phone number, or found=false when the
// number is not blocked.
func (s *Store) Lookup(ctx context.Context, phone string) (BlockEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return BlockEntry{}, false, err
	}

	var entry BlockEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixNumber + phone))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return BlockEntry{}, false, nil
	}
	if err != nil {
		return BlockEntry{}, false, fmt.Errorf("failed to look up block entry: %w", err)
	}

	return entry, true, nil
}

// Snapshot returns phone -> contact name for every locally blocked number.
// The sync engine diffs this against the remote set.
func (s *Store) Snapshot(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := make(map[string]string)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixNumber)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry BlockEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			snapshot[entry.Phone] = entry.ContactName
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot block list: %w", err)
	}

	return snapshot, nil
}

// AppendBlockedCall records an intercepted call in the audit log.
func (s *Store) AppendBlockedCall(ctx context.Context, call BlockedCall) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fillAudit(&call.ID, &call.OccurredAt)

	value, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("failed to marshal blocked call: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(prefixCall, call.OccurredAt, call.ID), value)
	})
}

// AppendBlockedMessage records an intercepted message, truncating the body to
// the preview limit.
func (s *Store) AppendBlockedMessage(ctx context.Context, msg BlockedMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fillAudit(&msg.ID, &msg.OccurredAt)
	msg.Preview = TruncatePreview(msg.Preview)

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal blocked message: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(prefixMessage, msg.OccurredAt, msg.ID), value)
	})
}

// ListBlockedCalls returns intercepted calls, oldest first.
func (s *Store) ListBlockedCalls(ctx context.Context) ([]BlockedCall, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var calls []BlockedCall
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixCall)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var call BlockedCall
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &call)
			})
			if err != nil {
				return err
			}
			calls = append(calls, call)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked calls: %w", err)
	}

	return calls, nil
}

// ListBlockedMessages returns intercepted messages, oldest first.
func (s *Store) ListBlockedMessages(ctx context.Context) ([]BlockedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var messages []BlockedMessage
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixMessage)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var msg BlockedMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked messages: %w", err)
	}

	return messages, nil
}

// TruncatePreview cuts a message body to the stored preview length.
func TruncatePreview(body string) string {
	runes := []rune(body)
	if len(runes) <= messagePreviewLimit {
		return body
	}
	return string(runes[:messagePreviewLimit])
}

func fillAudit(id *string, occurredAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if occurredAt.IsZero() {
		*occurredAt = time.Now().UTC()
	}
}

// auditKey orders audit entries by time; the id suffix breaks ties.
func auditKey(prefix string, ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefix, ts.UTC().Format(time.RFC3339Nano), id))
}
