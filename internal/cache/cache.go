// Package cache persists decoded division exports so that a re-run skips
// every division already downloaded for the same dataset version.
package cache

import (
	"context"
	"strings"

	"github.com/sells-group/groupements-cli/internal/model"
)

// Store is a key-value store of decoded division exports. An entry is
// immutable once written: Set on an existing key keeps the first value.
type Store interface {
	// Get returns the cached table, or nil if the key is absent.
	Get(ctx context.Context, key string) (*model.Table, error)
	// Set stores tbl under key unless the key is already present.
	Set(ctx context.Context, key string, tbl *model.Table) error
	// Keys lists cached keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Migrate(ctx context.Context) error
	Close() error
}

// likePrefix escapes prefix for use in a LIKE pattern with ESCAPE '\'.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
