// Package provision drives one load of the provisioning engine: component
// catalog, entity definitions, registration and create-on-start spawning.
package provision

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zeusync/provision/internal/core/component"
	"github.com/zeusync/provision/internal/core/entity"
	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/registry"
	"github.com/zeusync/provision/pkg/sequence"
)

const eventSource = "engine"

// builtinTags are always required by hosts, whether or not a component
// declares them.
var builtinTags = []string{"Enemy", "Player"}

// Settings are the per-engine inputs that are not collaborators.
type Settings struct {
	Folders []string
	Scene   string
}

// TagSink receives the tags a load needs before any entity is registered,
// so hosts can declare them in their own tag registries.
type TagSink func(tags []string)

// Engine owns the catalog, the loader and the registry of one host. It is
// driven from the host's main thread.
type Engine struct {
	log      log.Log
	catalog  *component.Catalog
	loader   *entity.Loader
	registry *registry.Registry
	events   bus.EventBus
	tagSink  TagSink

	folders []string
	scene   string
	loads   int
	defs    []entity.Definition
}

func NewEngine(
	settings Settings,
	logger log.Log,
	catalog *component.Catalog,
	loader *entity.Loader,
	reg *registry.Registry,
	events bus.EventBus,
) *Engine {
	return &Engine{
		log:      logger.With(log.Component("engine")),
		catalog:  catalog,
		loader:   loader,
		registry: reg,
		events:   events,
		folders:  slices.Clone(settings.Folders),
		scene:    settings.Scene,
	}
}

// SetTagSink installs the callback that receives RequiredTags on each load.
func (e *Engine) SetTagSink(sink TagSink) { e.tagSink = sink }

// LoadReport summarises one Load.
type LoadReport struct {
	Scene       string
	Catalog     component.LoadReport
	Entities    entity.LoadReport
	Registered  int
	Rejected    int
	Spawned     int
	SpawnFailed int
	Fingerprint uint64
	Elapsed     time.Duration
}

func (e *Engine) Load(scene string) (LoadReport, error) {
	return e.LoadContext(context.Background(), scene)
}

// LoadContext rebuilds everything for scene. Instances from a previous load
// are destroyed first. Broken files and entities are reported, not fatal;
// only cancellation aborts the load.
func (e *Engine) LoadContext(ctx context.Context, scene string) (LoadReport, error) {
	start := time.Now()
	report := LoadReport{Scene: scene}

	if e.loads > 0 {
		e.registry.Teardown()
	} else {
		e.registry.Reset()
	}
	e.scene = scene
	e.loads++

	report.Catalog = e.catalog.LoadContext(ctx, e.folders)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("load %q: %w", scene, err)
	}
	report.Fingerprint = e.catalog.Fingerprint()

	defs, entReport := e.loader.Load(scene)
	report.Entities = entReport
	e.defs = defs

	if e.tagSink != nil {
		e.tagSink(e.RequiredTags())
	}

	var onStart []string
	for _, def := range defs {
		id, err := e.registry.Register(def)
		if err != nil {
			report.Rejected++
			e.log.Warn("entity rejected",
				log.String("name", def.Name),
				log.String("source", def.Source),
				log.Error(err))
			continue
		}
		report.Registered++
		if def.CreateOnStart {
			onStart = append(onStart, id)
		}
	}

	for _, id := range onStart {
		if _, err := e.registry.Spawn(id); err != nil {
			report.SpawnFailed++
			e.log.Warn("create on start failed", log.String("entity_id", id), log.Error(err))
			continue
		}
		report.Spawned++
	}

	report.Elapsed = time.Since(start)
	e.log.Info("scene loaded",
		log.String("scene", scene),
		log.Int("components", e.catalog.Len()),
		log.Int("entities", report.Registered),
		log.Int("spawned", report.Spawned),
		log.Int("failed_files", len(report.Catalog.Failed)+len(report.Entities.Failed)),
		log.Duration("elapsed", report.Elapsed))

	if e.events != nil {
		err := e.events.Publish(bus.NewEvent(bus.TypeCatalogLoaded, eventSource, bus.LoadEvent{
			Scene:       scene,
			Components:  e.catalog.Len(),
			Entities:    report.Registered,
			Spawned:     report.Spawned,
			Fingerprint: report.Fingerprint,
		}))
		if err != nil {
			e.log.Warn("event handler failed", log.String("event", bus.TypeCatalogLoaded), log.Error(err))
		}
	}
	return report, nil
}

// Reload repeats the last Load with the same scene.
func (e *Engine) Reload(ctx context.Context) (LoadReport, error) {
	return e.LoadContext(ctx, e.scene)
}

// RequiredTags lists every tag value declared by a Tag component of a loaded
// definition, plus the built-in tags, sorted.
func (e *Engine) RequiredTags() []string {
	declared := sequence.FlatMap(sequence.From(e.defs), func(def entity.Definition) []string {
		var tags []string
		for _, id := range def.Components {
			if tag, ok := e.catalog.TagOf(id); ok && strings.TrimSpace(tag) != "" {
				tags = append(tags, tag)
			}
		}
		return tags
	})
	return sequence.Distinct(sequence.Chain(sequence.From(builtinTags), declared)).
		Sort(strings.Compare).
		Collect()
}

func (e *Engine) Scene() string                { return e.scene }
func (e *Engine) Registry() *registry.Registry { return e.registry }
func (e *Engine) Catalog() *component.Catalog  { return e.catalog }
func (e *Engine) Events() bus.EventBus         { return e.events }
func (e *Engine) Logger() log.Log              { return e.log }
