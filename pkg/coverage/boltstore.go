package coverage

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/battleready/core/pkg/domain"
)

var signatureBucket = []byte("signatures")

// BoltStore is a persistent signature store backed by a bbolt database,
// for caching signatures across runs.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt-backed signature store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open signature store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(signatureBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init signature store %s: %w", path, err)
	}

	return &BoltStore{db: db}, nil
}

// Get implements SignatureStore.
func (s *BoltStore) Get(key domain.TestKey) (domain.CoverageSignature, bool) {
	var sig domain.CoverageSignature
	found := false

	_ = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(signatureBucket).Get([]byte(key.String()))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &sig); err != nil {
			return nil // treat corrupt entries as missing
		}
		found = true
		return nil
	})

	return sig, found
}

// Put implements SignatureStore. Existing entries are kept unchanged.
func (s *BoltStore) Put(key domain.TestKey, sig domain.CoverageSignature) error {
	raw, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signature for %s: %w", key, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(signatureBucket)
		if bucket.Get([]byte(key.String())) != nil {
			return nil
		}
		return bucket.Put([]byte(key.String()), raw)
	})
}

// Close implements SignatureStore.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
