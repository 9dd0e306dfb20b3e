package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/messagely/internal/client/storage"
)

var sessionKey = []byte("current")

var errBucketMissing = errors.New("session bucket not found")

// SaveSession stores the current session
func (s *Storage) SaveSession(_ context.Context, session *storage.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return errBucketMissing
		}
		if err := bucket.Put(sessionKey, data); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// GetSession retrieves the stored session
func (s *Storage) GetSession(_ context.Context) (*storage.Session, error) {
	var session *storage.Session

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return errBucketMissing
		}

		data := bucket.Get(sessionKey)
		if data == nil {
			return storage.ErrSessionNotFound
		}

		// data живёт только внутри транзакции, Unmarshal копирует
		session = &storage.Session{}
		if err := json.Unmarshal(data, session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes the stored session (logout)
func (s *Storage) DeleteSession(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return errBucketMissing
		}
		if bucket.Get(sessionKey) == nil {
			return storage.ErrSessionNotFound
		}
		if err := bucket.Delete(sessionKey); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

var _ storage.SessionStorage = (*Storage)(nil)
