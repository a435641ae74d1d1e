package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Protocol-Lattice/go-probe/src/cache"
)

// DiskCache persists one pretty-printed JSON argument file per tool name
// under a single directory. Entries are idempotent re-derivations of a tool's
// sample arguments, so concurrent runs writing the same key are last-writer-
// wins and need no coordination. An in-memory LRU front keeps a run from
// re-reading files it already loaded.
type DiskCache struct {
	dir  string
	memo *cache.LRUCache
}

// NewDiskCache ensures the cache directory exists and returns a handle to it.
// The directory is created once here, not ambiently on every access.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir, memo: cache.NewLRUCache(256, time.Hour)}, nil
}

// Path returns the cache file for a tool, with path-unsafe and space
// characters in the name replaced so any tool maps to a flat file.
func (c *DiskCache) Path(toolName string) string {
	return filepath.Join(c.dir, sanitizeName(toolName)+"_params.json")
}

// Load returns the cached argument set for a tool. A missing entry is
// ok=false with a nil error, not a fault.
func (c *DiskCache) Load(toolName string) (map[string]any, bool, error) {
	if v, ok := c.memo.Get(toolName); ok {
		if args, ok := v.(map[string]any); ok {
			return args, true, nil
		}
	}

	data, err := os.ReadFile(c.Path(toolName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached params: %w", err)
	}

	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, false, fmt.Errorf("parse cached params: %w", err)
	}
	c.memo.Set(toolName, args)
	return args, true, nil
}

// Save writes the argument set as pretty-printed JSON.
func (c *DiskCache) Save(toolName string, args map[string]any) error {
	data, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if err := os.WriteFile(c.Path(toolName), data, 0o644); err != nil {
		return fmt.Errorf("write cached params: %w", err)
	}
	c.memo.Set(toolName, args)
	return nil
}

var nameSanitizer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

func sanitizeName(name string) string {
	return nameSanitizer.Replace(name)
}
