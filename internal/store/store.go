// Package store manages collection namespaces: one SQLite database file per
// collection, named <prefix><uuid>.db inside the data directory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmitrijs2005/charkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/charkeeper/internal/client/repositories/characters"
	"github.com/dmitrijs2005/charkeeper/internal/client/repositories/collectioninfo"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/filex"
	"github.com/dmitrijs2005/charkeeper/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const fileExt = ".db"

// Manager creates, opens and enumerates namespaces under one directory.
type Manager struct {
	dir    string
	prefix string
	logger logging.Logger
}

// NewManager prepares dir and returns a Manager for namespaces carrying
// prefix. An empty prefix falls back to common.DefaultNamespacePrefix.
func NewManager(dir, prefix string, logger logging.Logger) (*Manager, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	if prefix == "" {
		prefix = common.DefaultNamespacePrefix
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{dir: abs, prefix: prefix, logger: logger}, nil
}

// NamespaceName derives the namespace of a collection uuid.
func (m *Manager) NamespaceName(uuid string) string {
	return m.prefix + uuid
}

// UUID strips the prefix from a namespace name.
func (m *Manager) UUID(name string) string {
	return strings.TrimPrefix(name, m.prefix)
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+fileExt)
}

// Exists reports whether the namespace file is present.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(m.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat namespace %s: %w", name, err)
}

// Create makes a new namespace and applies the schema. It fails with
// common.ErrCollectionExists if the namespace is already present.
func (m *Manager) Create(ctx context.Context, name string) (*Namespace, error) {
	f, err := os.OpenFile(m.path(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", common.ErrCollectionExists, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create namespace %s: %w", name, err)
	}
	_ = f.Close()

	ns, err := m.open(ctx, name)
	if err != nil {
		_ = os.Remove(m.path(name))
		return nil, err
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, ns.db, migrations.FS)
	if err == nil {
		_, err = p.Up(ctx)
	}
	if err != nil {
		_ = ns.Close()
		_ = os.Remove(m.path(name))
		return nil, fmt.Errorf("migrate namespace %s: %w", name, err)
	}

	m.logger.Debug(ctx, "namespace created", "namespace", name)
	return ns, nil
}

// Open returns a handle to an existing namespace or
// common.ErrCollectionNotFound.
func (m *Manager) Open(ctx context.Context, name string) (*Namespace, error) {
	ok, err := m.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrCollectionNotFound, name)
	}
	return m.open(ctx, name)
}

func (m *Manager) open(ctx context.Context, name string) (*Namespace, error) {
	db, err := sql.Open("sqlite", m.path(name)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open namespace %s: %w", name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open namespace %s: %w", name, err)
	}

	return &Namespace{
		Name:       name,
		db:         db,
		info:       collectioninfo.NewSQLiteRepository(db),
		characters: characters.NewSQLiteRepository(db),
	}, nil
}

// List returns the names of all namespaces carrying the manager's prefix,
// sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, m.prefix) || !strings.HasSuffix(n, fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a namespace file. Removing a missing namespace reports
// common.ErrCollectionNotFound.
func (m *Manager) Remove(ctx context.Context, name string) error {
	err := os.Remove(m.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", common.ErrCollectionNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("remove namespace %s: %w", name, err)
	}
	m.logger.Debug(ctx, "namespace removed", "namespace", name)
	return nil
}
