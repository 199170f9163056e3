package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/squad-console/pkg/logger"
)

var bucketSession = []byte("session")

// BoltStore keeps the token in a bbolt file so it survives restarts.
type BoltStore struct {
	db     *bolt.DB
	logger logger.Logger
	mu     sync.RWMutex
}

// NewBoltStore opens (creating if needed) the token database.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Open BoltStore; call Close when done
//   - Error if the database cannot be opened
func NewBoltStore(cfg Config, log logger.Logger) (*BoltStore, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketSession)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	log.Debug("token store opened", "db_path", dbPath)

	return &BoltStore{db: db, logger: log}, nil
}

// Read implements Reader.
func (s *BoltStore) Read() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		if data := b.Get([]byte(Key)); data != nil {
			token = string(data)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("token read failed", "error", err)
		return "", false
	}

	return token, token != ""
}

// Save implements Store.
func (s *BoltStore) Save(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSession)
		if err != nil {
			return err
		}
		return b.Put([]byte(Key), []byte(token))
	})
	if err != nil {
		s.logger.Error("token save failed", "error", err)
	}
}

// Clear implements Store.
func (s *BoltStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(Key))
	})
	if err != nil {
		s.logger.Error("token clear failed", "error", err)
	}
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
