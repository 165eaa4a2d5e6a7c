// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"errors"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// errDurableMiss distinguishes "key absent or expired" from tier failure.
var errDurableMiss = errors.New("durable tier miss")

// durableTier is the local BadgerDB-backed fallback.
//
// TTL enforcement is native: Badger stamps each entry with an expiry and
// stops returning it the moment the TTL passes, so an expired entry is
// never served even before GC reclaims it.
type durableTier struct {
	db       *badgerdb.DB
	maxBytes int64
}

func (t *durableTier) get(key string) ([]byte, error) {
	var value []byte
	err := t.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, errDurableMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (t *durableTier) set(key string, value []byte, ttl time.Duration) error {
	err := t.db.Update(func(txn *badgerdb.Txn) error {
		return txn.SetEntry(badgerdb.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return err
	}
	t.maybeEvict()
	return nil
}

func (t *durableTier) clearAll() error {
	return t.db.DropAll()
}

// entryCount counts live (unexpired) entries.
func (t *durableTier) entryCount() (int, error) {
	count := 0
	err := t.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// maybeEvict enforces the byte cap.
//
// When LSM+vlog size exceeds the cap, entries closest to expiry are deleted
// until the live set is an estimated 10% under the cap. This is the
// observable "an entry may vanish before its nominal TTL under pressure"
// behavior; it is deliberate, since the alternative is unbounded disk use.
func (t *durableTier) maybeEvict() {
	if t.maxBytes <= 0 {
		return
	}
	lsm, vlog := t.db.Size()
	if lsm+vlog <= t.maxBytes {
		return
	}

	type victim struct {
		key       []byte
		expiresAt uint64
		size      int64
	}
	var victims []victim

	err := t.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			victims = append(victims, victim{
				key:       item.KeyCopy(nil),
				expiresAt: item.ExpiresAt(),
				size:      item.EstimatedSize(),
			})
		}
		return nil
	})
	if err != nil {
		return
	}

	// Soonest-to-expire first: those entries were about to vanish anyway.
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].expiresAt < victims[j].expiresAt
	})

	excess := (lsm + vlog) - (t.maxBytes * 9 / 10)
	var reclaimed int64
	wb := t.db.NewWriteBatch()
	defer wb.Cancel()
	for _, v := range victims {
		if reclaimed >= excess {
			break
		}
		if err := wb.Delete(v.key); err != nil {
			return
		}
		reclaimed += v.size
	}
	_ = wb.Flush()
}

func (t *durableTier) close() error {
	return t.db.Close()
}
