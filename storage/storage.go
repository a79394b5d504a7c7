/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package storage persists named domains.
//
// A domain is a named set of JSON-serializable values, stored one
// bucket per domain with caller-chosen keys.  Domain exposes a stored
// domain as a replay.Source in key order, so a variable can range
// over it.
package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Comcast/rove/replay"

	bolt "go.etcd.io/bbolt"
)

// Storage is a BoltDB-backed domain store.
type Storage struct {
	Debug bool

	filename string
	db       *bolt.DB
}

// NewStorage makes a Storage that will live in the given file.
func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

// Open opens the database file.
func (s *Storage) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close closes the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("Storage."+format, args...)
	}
}

// Add stores a value in the given domain under the given key.
func (s *Storage) Add(ctx context.Context, domain string, key string, value interface{}) error {
	s.logf("Add %s %s", domain, key)

	js, err := json.Marshal(&value)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(domain))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), js)
	})
}

// Rem removes a value from the given domain.
func (s *Storage) Rem(ctx context.Context, domain string, key string) error {
	s.logf("Rem %s %s", domain, key)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(domain))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// RemDomain removes an entire domain.
func (s *Storage) RemDomain(ctx context.Context, domain string) error {
	s.logf("RemDomain %s", domain)

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(domain)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(domain))
	})
}

// Get retrieves one value (if present) from the given domain.
func (s *Storage) Get(ctx context.Context, domain string, key string) (interface{}, bool, error) {
	var (
		x    interface{}
		have bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(domain))
		if b == nil {
			return nil
		}
		bs := b.Get([]byte(key))
		if bs == nil {
			return nil
		}
		if err := json.Unmarshal(bs, &x); err != nil {
			return err
		}
		have = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return x, have, nil
}

// Domains lists the stored domain names.
func (s *Storage) Domains(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 8)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Domain exposes a stored domain as a replay.Source.
//
// The source reads a snapshot of the domain (in key order) on its
// first pull, so a variable built over it won't see writes that land
// mid-enumeration.  An unknown domain gives an empty source.
func (s *Storage) Domain(domain string) replay.Source {
	var (
		vals   []interface{}
		loaded bool
		i      int
	)

	return func() (interface{}, bool, error) {
		if !loaded {
			err := s.db.View(func(tx *bolt.Tx) error {
				b := tx.Bucket([]byte(domain))
				if b == nil {
					return nil
				}
				c := b.Cursor()
				for k, bs := c.First(); k != nil; k, bs = c.Next() {
					var x interface{}
					if err := json.Unmarshal(bs, &x); err != nil {
						return err
					}
					vals = append(vals, x)
				}
				return nil
			})
			if err != nil {
				return nil, false, err
			}
			loaded = true
		}

		if len(vals) <= i {
			return nil, false, nil
		}
		x := vals[i]
		i++
		return x, true, nil
	}
}
