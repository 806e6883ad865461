package compiler

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/lhaig/storyscript/internal/tree"
)

// Registry discovers syntax-tree files and keeps the trees it has loaded.
// Load may be called concurrently.
type Registry struct {
	exts map[string]bool

	mu    sync.Mutex
	trees map[string]*tree.Node // cleaned file path -> decoded tree
}

// NewRegistry creates a registry that recognises files with the given
// extensions (".yaml", ".json", ...) when walking directories.
func NewRegistry(exts []string) *Registry {
	r := &Registry{
		exts:  make(map[string]bool, len(exts)),
		trees: make(map[string]*tree.Node),
	}
	for _, ext := range exts {
		r.exts[strings.ToLower(ext)] = true
	}
	return r
}

// Discover expands paths into tree files. Directories are walked
// recursively, skipping hidden directories, for files with a recognised
// extension; files named directly are taken whatever their extension.
// Results keep argument order, with each directory's files in lexical
// order, and each file appears once. Missing or unreadable paths do not
// stop discovery; their errors are combined and returned with the files
// that were found.
func (r *Registry) Discover(paths ...string) ([]string, error) {
	var (
		files []string
		errs  error
		seen  = make(map[string]bool)
	)
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if r.exts[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		errs = multierr.Append(errs, err)
	}
	return files, errs
}

// Load reads the tree file at path, caching the decoded tree.
func (r *Registry) Load(path string) (*tree.Node, error) {
	path = filepath.Clean(path)

	r.mu.Lock()
	root, ok := r.trees[path]
	r.mu.Unlock()
	if ok {
		return root, nil
	}

	root, err := tree.Load(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.trees[path] = root
	r.mu.Unlock()
	return root, nil
}
