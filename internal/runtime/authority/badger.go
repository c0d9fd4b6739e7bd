package authority

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
	"github.com/dayflower/hiptail-bot/internal/runtime/hipchat"
	jsoncodec "github.com/dayflower/hiptail-bot/internal/runtime/jsoncodec"
)

const keyPrefix = "authority:"

// BadgerProvider persists installations in a BadgerDB. Keys are
// "authority:{oauthId}", values the JSON encoded Authority.
type BadgerProvider struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerProvider uses an already opened database. Closing it stays the
// caller's job.
func NewBadgerProvider(db *badger.DB) *BadgerProvider {
	return &BadgerProvider{db: db}
}

// OpenBadgerProvider opens (or creates) the database at path. An empty path
// opens an in-memory database.
func OpenBadgerProvider(path string) (*BadgerProvider, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open authority store: %w", err)
	}
	return &BadgerProvider{db: db, ownsDB: true}, nil
}

// OpenBadgerProviderReadOnly opens an existing database without write
// access. Missing directories are an error; nothing is created.
func OpenBadgerProviderReadOnly(path string) (*BadgerProvider, error) {
	if path == "" {
		return nil, errors.New("open authority store: read-only mode needs a path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open authority store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open authority store: %s is not a directory", path)
	}
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING).
		WithReadOnly(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open authority store: %w", err)
	}
	return &BadgerProvider{db: db, ownsDB: true}, nil
}

// Close closes the database if the provider opened it.
func (p *BadgerProvider) Close() error {
	if !p.ownsDB {
		return nil
	}
	return p.db.Close()
}

func (p *BadgerProvider) Register(_ context.Context, auth hipchat.Authority) error {
	if err := Validate(auth); err != nil {
		return err
	}
	value, err := jsoncodec.Marshal(auth)
	if err != nil {
		return err
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storageKey(auth.OAuthID), value)
	})
}

func (p *BadgerProvider) Unregister(_ context.Context, oauthID string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storageKey(oauthID))
	})
}

func (p *BadgerProvider) Get(_ context.Context, oauthID string) (hipchat.Authority, error) {
	var auth hipchat.Authority
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(oauthID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errspkg.ErrAuthorityNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return jsoncodec.Unmarshal(val, &auth)
		})
	})
	if err != nil {
		return hipchat.Authority{}, err
	}
	return auth, nil
}

// List returns installations in key order.
func (p *BadgerProvider) List(_ context.Context) ([]hipchat.Authority, error) {
	var out []hipchat.Authority
	err := p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var auth hipchat.Authority
			if err := it.Item().Value(func(val []byte) error {
				return jsoncodec.Unmarshal(val, &auth)
			}); err != nil {
				return err
			}
			out = append(out, auth)
		}
		return nil
	})
	return out, err
}

func storageKey(oauthID string) []byte {
	return []byte(keyPrefix + oauthID)
}
