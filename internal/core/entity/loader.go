package entity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeusync/provision/internal/core/observability/log"
)

// Loader produces the ordered definition list for a scene: core definitions
// first, then the scene's own file.
type Loader struct {
	// CorePath is a single JSON file shared by every scene. Optional.
	CorePath string
	// ScenesDir holds one entity file per scene.
	ScenesDir string
	// Override, when non-empty, replaces both sources.
	Override []byte

	log log.Log
}

func NewLoader(logger log.Log, corePath, scenesDir string) *Loader {
	return &Loader{
		CorePath:  corePath,
		ScenesDir: scenesDir,
		log:       logger.With(log.Component("entities")),
	}
}

// SourceError records a payload that could not be used.
type SourceError struct {
	Path string
	Err  error
}

func (e SourceError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e SourceError) Unwrap() error { return e.Err }

type LoadReport struct {
	Scene      string
	CoreFile   string
	CoreCount  int
	SceneFile  string
	SceneCount int
	Override   bool
	Failed     []SourceError
}

func (r LoadReport) Total() int { return r.CoreCount + r.SceneCount }

// Load never fails as a whole: unreadable or malformed sources are reported
// and contribute no definitions.
func (l *Loader) Load(scene string) ([]Definition, LoadReport) {
	report := LoadReport{Scene: scene}

	if len(l.Override) > 0 {
		report.Override = true
		defs, err := Decode(l.Override)
		if err != nil {
			l.log.Warn("entity override rejected", log.Error(err))
			report.Failed = append(report.Failed, SourceError{Path: "override", Err: err})
			return nil, report
		}
		stamp(defs, "override")
		report.CoreCount = len(defs)
		return defs, report
	}

	var defs []Definition
	if core := l.loadCore(&report); len(core) > 0 {
		defs = append(defs, core...)
	}
	if own := l.loadScene(scene, &report); len(own) > 0 {
		defs = append(defs, own...)
	}

	l.log.Info("entity definitions loaded",
		log.String("scene", scene),
		log.Int("core", report.CoreCount),
		log.Int("scene_entities", report.SceneCount),
	)
	return defs, report
}

func (l *Loader) loadCore(report *LoadReport) []Definition {
	if l.CorePath == "" {
		return nil
	}
	defs, err := l.loadFile(l.CorePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.log.Debug("core entity file missing", log.String("file", l.CorePath))
			return nil
		}
		l.log.Warn("core entity file skipped", log.String("file", l.CorePath), log.Error(err))
		report.Failed = append(report.Failed, SourceError{Path: l.CorePath, Err: err})
		return nil
	}
	report.CoreFile = l.CorePath
	report.CoreCount = len(defs)
	return defs
}

func (l *Loader) loadScene(scene string, report *LoadReport) []Definition {
	if strings.TrimSpace(scene) == "" {
		l.log.Warn("scene has no name; scene entities skipped")
		return nil
	}
	path, err := SelectSceneFile(l.ScenesDir, scene)
	if err != nil {
		l.log.Warn("no scene entity file", log.String("scene", scene), log.String("dir", l.ScenesDir), log.Error(err))
		return nil
	}
	defs, err := l.loadFile(path)
	if err != nil {
		l.log.Warn("scene entity file skipped", log.String("file", path), log.Error(err))
		report.Failed = append(report.Failed, SourceError{Path: path, Err: err})
		return nil
	}
	report.SceneFile = path
	report.SceneCount = len(defs)
	return defs
}

func (l *Loader) loadFile(path string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	stamp(defs, path)
	return defs, nil
}

func stamp(defs []Definition, source string) {
	for i := range defs {
		defs[i].Source = source
	}
}

// SelectSceneFile picks the entity file for scene among the top-level *.json
// files of dir: an exact case-insensitive "{scene}.json" match first, then a
// case-insensitive stem match.
func SelectSceneFile(dir, scene string) (string, error) {
	if strings.TrimSpace(scene) == "" {
		return "", ErrNoSceneName
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		candidates = append(candidates, e.Name())
	}

	want := scene + ".json"
	for _, name := range candidates {
		if strings.EqualFold(name, want) {
			return filepath.Join(dir, name), nil
		}
	}
	for _, name := range candidates {
		if strings.EqualFold(strings.TrimSuffix(name, filepath.Ext(name)), scene) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrNoSceneFile, scene, dir)
}
