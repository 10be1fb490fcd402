package inventory

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Scanner discovers installed applications.
type Scanner interface {
	Scan(ctx context.Context) ([]types.AppIdentity, error)
}

// BundleScanner finds .app bundles under a set of root directories.
type BundleScanner struct {
	roots []string
}

// NewBundleScanner creates a scanner over the given roots. With no roots it
// uses the standard application directories.
func NewBundleScanner(roots ...string) *BundleScanner {
	if len(roots) == 0 {
		roots = defaultRoots()
	}
	return &BundleScanner{roots: roots}
}

func defaultRoots() []string {
	roots := []string{"/Applications", "/System/Applications"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "Applications"))
	}
	return roots
}

// Scan walks the roots and returns one identity per bundle, sorted by name.
// Roots that do not exist are skipped; the scan fails only if every root is
// unreadable.
func (s *BundleScanner) Scan(ctx context.Context) ([]types.AppIdentity, error) {
	var (
		mu   sync.Mutex
		apps []types.AppIdentity
		seen = make(map[string]struct{})
	)

	conf := fastwalk.Config{Follow: false}
	var firstErr error
	scanned := 0

	for _, root := range s.roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		scanned++

		err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil || !d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(p, ".app") {
				return nil
			}

			name := strings.TrimSuffix(filepath.Base(p), ".app")
			mu.Lock()
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				apps = append(apps, types.AppIdentity{Name: name, Path: p})
			}
			mu.Unlock()

			// Do not descend into the bundle itself.
			return filepath.SkipDir
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if scanned == 0 || (len(apps) == 0 && firstErr != nil) {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, os.ErrNotExist
	}

	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}
