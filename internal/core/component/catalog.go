package component

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/pkg/concurrent"
	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
	"github.com/zeusync/provision/pkg/sequence"
)

// Catalog maps component ids to their merged definitions. Load parses files
// concurrently but the catalog itself is not safe for concurrent use.
type Catalog struct {
	log         log.Log
	workers     int
	components  map[string]Component
	fingerprint uint64
}

type Option func(*Catalog)

// WithWorkers bounds the number of files parsed at once.
func WithWorkers(n int) Option {
	return func(c *Catalog) { c.workers = n }
}

func NewCatalog(logger log.Log, opts ...Option) *Catalog {
	c := &Catalog{
		log:        logger.With(log.Component("catalog")),
		components: make(map[string]Component),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sourceFile struct {
	path string
	raw  []byte
	root jsonvalue.Value
	err  error
}

// Load clears the catalog and merges every top-level *.json file of each
// folder. Folders merge in the given order and files in lexical order, so a
// later folder or file wins when ids collide.
func (c *Catalog) Load(folders []string) LoadReport {
	return c.LoadContext(context.Background(), folders)
}

func (c *Catalog) LoadContext(ctx context.Context, folders []string) LoadReport {
	c.Clear()
	report := LoadReport{Folders: slices.Clone(folders)}

	var paths []string
	for _, folder := range folders {
		files, err := listJSON(folder)
		if err != nil {
			if os.IsNotExist(err) {
				c.log.Debug("component folder missing", log.String("folder", folder))
				report.MissingFolders = append(report.MissingFolders, folder)
				continue
			}
			c.log.Warn("component folder unreadable", log.String("folder", folder), log.Error(err))
			report.Failed = append(report.Failed, FileError{Path: folder, Err: err})
			continue
		}
		paths = append(paths, files...)
	}
	report.Files = len(paths)

	parsed, err := concurrent.ParallelMap(ctx, sequence.From(paths), c.workers, func(_ context.Context, path string) (sourceFile, error) {
		return parseFile(path), nil
	})
	if err != nil {
		c.log.Warn("component load cancelled", log.Error(err))
		report.Failed = append(report.Failed, FileError{Path: "", Err: err})
		return report
	}

	digest := xxhash.New()
	for _, src := range parsed {
		_, _ = digest.WriteString(src.path)
		_, _ = digest.Write(src.raw)

		if src.err != nil {
			c.log.Warn("component file skipped", log.String("file", src.path), log.Error(src.err))
			report.Failed = append(report.Failed, FileError{Path: src.path, Err: src.err})
			continue
		}
		merged, overridden, err := c.merge(src)
		if err != nil {
			c.log.Debug("component file ignored", log.String("file", src.path), log.Error(err))
			continue
		}
		report.Merged += merged
		report.Overridden += overridden
	}
	c.fingerprint = digest.Sum64()

	c.log.Info("component catalog loaded",
		log.Int("files", report.Files),
		log.Int("components", len(c.components)),
		log.Int("failed", len(report.Failed)),
	)
	return report
}

func (c *Catalog) merge(src sourceFile) (merged, overridden int, err error) {
	root, ok := src.root.Object()
	if !ok {
		return 0, 0, ErrRootNotObject
	}
	comps, ok := jsonvalue.GetObject(root, "components")
	if !ok {
		return 0, 0, ErrNoComponents
	}
	comps.Range(func(id string, v jsonvalue.Value) bool {
		if strings.TrimSpace(id) == "" {
			return true
		}
		bundle, isObj := v.Object()
		if !isObj {
			return true
		}
		if prev, exists := c.components[id]; exists {
			c.log.Debug("component overridden",
				log.String("id", id),
				log.String("previous", prev.Source),
				log.String("file", src.path),
			)
			overridden++
		}
		comp := Decode(id, bundle)
		comp.Source = src.path
		c.components[id] = comp
		merged++
		return true
	})
	return merged, overridden, nil
}

// Get returns the component for a non-blank id.
func (c *Catalog) Get(id string) (Component, bool) {
	if strings.TrimSpace(id) == "" {
		return Component{}, false
	}
	comp, ok := c.components[id]
	return comp, ok
}

// MustGet is Get reporting ErrUnknownComponent.
func (c *Catalog) MustGet(id string) (Component, error) {
	comp, ok := c.Get(id)
	if !ok {
		return Component{}, fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	return comp, nil
}

// TagOf returns the value declared by a Tag component.
func (c *Catalog) TagOf(id string) (string, bool) {
	comp, ok := c.Get(id)
	if !ok {
		return "", false
	}
	return comp.TagValue()
}

func (c *Catalog) Len() int { return len(c.components) }

// IDs returns every component id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.components))
	for id := range c.components {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Fingerprint is an xxhash digest over the paths and bytes of the files read
// by the last Load.
func (c *Catalog) Fingerprint() uint64 { return c.fingerprint }

func (c *Catalog) Clear() {
	clear(c.components)
	c.fingerprint = 0
}

func parseFile(path string) sourceFile {
	src := sourceFile{path: path}
	src.raw, src.err = os.ReadFile(path)
	if src.err != nil {
		return src
	}
	src.root, src.err = jsonvalue.ParseBytes(src.raw)
	return src
}

// listJSON returns the top-level *.json files of dir in lexical order.
func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
