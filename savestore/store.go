package savestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const slotPrefix = "slot:"

var (
	ErrNotFound    = errors.New("savestore: slot not found")
	ErrClosed      = errors.New("savestore: store closed")
	ErrInvalidSlot = errors.New("savestore: invalid slot name")
)

// Record is one saved snapshot. Data holds the caller's JSON document untouched.
type Record struct {
	ID      uuid.UUID       `json:"id"`
	Slot    string          `json:"slot"`
	Level   string          `json:"level"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Store keeps save slots in badger, one zstd-compressed record per slot.
type Store struct {
	db      *badger.DB
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	mu      sync.RWMutex
	isReady bool
	now     func() time.Time
}

// Open opens the store at path. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("savestore: open %q: %w", path, err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("savestore: zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("savestore: zstd reader: %w", err)
	}
	return &Store{db: db, enc: enc, dec: dec, isReady: true, now: time.Now}, nil
}

// Close flushes and closes the store. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

// Save marshals v into slot, replacing what was there.
func (s *Store) Save(slot, level string, v any) (Record, error) {
	if err := checkSlot(slot); err != nil {
		return Record{}, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("savestore: marshal %s: %w", slot, err)
	}
	rec := Record{
		ID:      uuid.New(),
		Slot:    slot,
		Level:   level,
		SavedAt: s.now().UTC(),
		Data:    data,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return Record{}, ErrClosed
	}

	blob, err := s.encode(rec)
	if err != nil {
		return Record{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(slotKey(slot), blob)
	})
	if err != nil {
		return Record{}, fmt.Errorf("savestore: save %s: %w", slot, err)
	}
	log.Printf("savestore: saved %s (%s, %d bytes)", slot, level, len(blob))
	return rec, nil
}

// Load reads slot and, when v is not nil, unmarshals its data into v.
func (s *Store) Load(slot string, v any) (Record, error) {
	if err := checkSlot(slot); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return Record{}, ErrClosed
	}

	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(slot))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return Record{}, fmt.Errorf("savestore: load %s: %w", slot, err)
	}

	rec, err := s.decode(blob)
	if err != nil {
		return Record{}, err
	}
	if v != nil {
		if err := json.Unmarshal(rec.Data, v); err != nil {
			return Record{}, fmt.Errorf("savestore: unmarshal %s: %w", slot, err)
		}
	}
	return rec, nil
}

// List returns every record sorted by slot name.
func (s *Store) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return nil, ErrClosed
	}

	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(slotPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			blob, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := s.decode(blob)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("savestore: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// Delete removes slot. Deleting a missing slot returns ErrNotFound.
func (s *Store) Delete(slot string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(slotKey(slot)); err != nil {
			return err
		}
		return txn.Delete(slotKey(slot))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return fmt.Errorf("savestore: delete %s: %w", slot, err)
	}
	return nil
}

func (s *Store) encode(rec Record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("savestore: marshal record: %w", err)
	}
	return s.enc.EncodeAll(raw, nil), nil
}

func (s *Store) decode(blob []byte) (Record, error) {
	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return Record{}, fmt.Errorf("savestore: decompress: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("savestore: unmarshal record: %w", err)
	}
	return rec, nil
}

func checkSlot(slot string) error {
	if strings.TrimSpace(slot) == "" || strings.ContainsAny(slot, "\x00\n") {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}

func slotKey(slot string) []byte {
	return []byte(slotPrefix + slot)
}
