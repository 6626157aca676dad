package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/doublesearch/core"
)

const defaultTTL = 24 * time.Hour

// TranslationCache stores validated filters keyed by the query text that
// produced them.
type TranslationCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Option is a functional option for configuring a TranslationCache.
type Option func(*TranslationCache)

// WithTTL overrides the default 24h entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *TranslationCache) {
		c.ttl = ttl
	}
}

// Open opens a translation cache at the specified path, creating the
// directory if it doesn't exist. An empty path with inMemory true gives an
// ephemeral cache for tests.
func Open(filePath string, inMemory bool, opts ...Option) (*TranslationCache, error) {
	var badgerOpts badger.Options

	if inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		badgerOpts = badger.DefaultOptions(filePath)
	}

	badgerOpts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	cache := &TranslationCache{
		db:     db,
		ttl:    defaultTTL,
		logger: slog.Default().With("component", "translation-cache"),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// Get returns the cached filter for the query text, or ok=false on a miss.
// A corrupt entry is treated as a miss; the translator will repopulate it.
func (c *TranslationCache) Get(ctx context.Context, queryText string) (*core.Filter, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	var filter *core.Filter

	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTranslationKey(queryText))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			filter, err = UnmarshalFilter(val)
			return err
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("dropping unreadable cache entry", "err", err)
		}
		return nil, false
	}

	return filter, true
}

// Put stores a validated filter under the query text.
func (c *TranslationCache) Put(ctx context.Context, queryText string, filter *core.Filter) error {
	if filter == nil {
		return core.InvalidArgumentf("cannot cache a nil filter")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := MarshalFilter(filter)
	err := c.db.Update(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeTranslationKey(queryText), data).WithTTL(c.ttl)
		return tx.SetEntry(entry)
	})
	if err != nil {
		return err
	}

	c.logger.Debug("cached translation", "query", queryText)
	return nil
}

// Close closes the underlying database.
func (c *TranslationCache) Close() error {
	return c.db.Close()
}
