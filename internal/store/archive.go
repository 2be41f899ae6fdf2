package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/seatwheel/seatwheel/internal/fingerprint"
	"github.com/seatwheel/seatwheel/internal/seating"
)

var (
	commitsBucket      = []byte("commits")
	fingerprintsBucket = []byte("fingerprints")

	ErrCommitNotFound = errors.New("no commit with that fingerprint")
)

// Commit is one archived history entry.
type Commit struct {
	Sequence    uint64              `json:"sequence"`
	Fingerprint string              `json:"fingerprint"`
	Arrangement seating.Arrangement `json:"arrangement"`
	CommittedAt int64               `json:"committedAt"` // Unix seconds
}

// OpenDB opens (or creates) the bbolt database at path.
func OpenDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return db, nil
}

// Archive is a bbolt-backed audit log of every committed arrangement. Unlike
// the JSON history file it is written on every commit, not only when the
// operator asks for the history to be saved.
type Archive struct {
	db  *bolt.DB
	now func() time.Time
}

// NewArchive creates or opens the archive buckets in the given database.
func NewArchive(db *bolt.DB) (*Archive, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(commitsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(fingerprintsBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db, now: time.Now}, nil
}

// Record appends a to the archive and returns the stored commit.
func (ar *Archive) Record(a seating.Arrangement) (Commit, error) {
	c := Commit{
		Fingerprint: fingerprint.Generate(a),
		Arrangement: a,
		CommittedAt: ar.now().Unix(),
	}

	err := ar.db.Update(func(tx *bolt.Tx) error {
		commits := tx.Bucket(commitsBucket)
		seq, err := commits.NextSequence()
		if err != nil {
			return err
		}
		c.Sequence = seq

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		key := sequenceKey(seq)
		if err := commits.Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(fingerprintsBucket).Put([]byte(c.Fingerprint), key)
	})
	if err != nil {
		return Commit{}, err
	}
	return c, nil
}

// Lookup returns the most recent commit with the given fingerprint.
func (ar *Archive) Lookup(fp string) (Commit, error) {
	var c Commit
	err := ar.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(fingerprintsBucket).Get([]byte(fp))
		if key == nil {
			return ErrCommitNotFound
		}
		data := tx.Bucket(commitsBucket).Get(key)
		if data == nil {
			return ErrCommitNotFound
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return Commit{}, err
	}
	return c, nil
}

// List returns every commit in the order it was recorded.
func (ar *Archive) List() ([]Commit, error) {
	var commits []Commit
	err := ar.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(commitsBucket).ForEach(func(_, v []byte) error {
			var c Commit
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			commits = append(commits, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// Count returns the number of archived commits.
func (ar *Archive) Count() (int, error) {
	var n int
	err := ar.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(commitsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// sequenceKey encodes seq big-endian so bbolt's byte ordering matches commit
// order.
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
