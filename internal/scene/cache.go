package scene

import (
	"context"
	"log/slog"

	"github.com/geo3d/tileviewer/internal/fetchtask"
	"github.com/geo3d/tileviewer/internal/gpu"
	"github.com/geo3d/tileviewer/internal/tileapi"
	"github.com/geo3d/tileviewer/internal/view"
)

// Config configures a Cache.
type Config struct {
	// Logger receives diagnostic messages; defaults to slog.Default() when nil.
	Logger *slog.Logger

	// PixelErrorBudget overrides view.PixelErrorBudget for this cache's
	// traversal; zero means use the package default.
	PixelErrorBudget float64

	// MaxTraversalDepth overrides maxTraversalDepth for this cache's
	// traversal; zero means use the package default.
	MaxTraversalDepth int

	// DisablePlanetAwareFarPlane falls back to the conventional projective
	// far plane instead of the origin-facing substitution. False (the zero
	// value) keeps the planet-aware behavior every tileset needs.
	DisablePlanetAwareFarPlane bool
}

func (c Config) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) pixelErrorBudget() float64 {
	if c.PixelErrorBudget > 0 {
		return c.PixelErrorBudget
	}
	return view.PixelErrorBudget
}

func (c Config) maxTraversalDepth() int {
	if c.MaxTraversalDepth > 0 {
		return c.MaxTraversalDepth
	}
	return maxTraversalDepth
}

// Cache is the tile store: a map-keyed cache of Tile built lazily from
// the tile API's node hierarchy as the camera demands more detail, plus
// the per-frame renderer that walks it. It owns the shared material every
// tile draws with and the background fetch runner that feeds it.
type Cache struct {
	cfg    Config
	runner *fetchtask.Runner
	gpuCtx gpu.Context

	clientFuture fetchtask.ClientFuture
	client       *tileapi.Client

	cache        map[string]*Tile
	roots        []string
	nodePromises []fetchtask.NodeFuture

	material *gpu.Material

	hasLoadRoot bool
}

// NewCache starts the client bootstrap on runner and returns a Cache whose
// store is empty until the bootstrap resolves and the first Load call
// fills the root tile.
func NewCache(runner *fetchtask.Runner, gpuCtx gpu.Context, apiKey string, tileCfg tileapi.Config, cfg Config) *Cache {
	return &Cache{
		cfg:          cfg,
		runner:       runner,
		gpuCtx:       gpuCtx,
		clientFuture: fetchtask.BootstrapClient(runner, apiKey, tileCfg),
		cache:        make(map[string]*Tile),
		material:     gpu.NewMaterial(),
	}
}

// Roots returns the keys of the cache's root tiles (valid once the client
// has bootstrapped and the first Load has run).
func (c *Cache) Roots() []string {
	return c.roots
}

// Tile looks up a cached tile by key.
func (c *Cache) Tile(key string) (*Tile, bool) {
	t, ok := c.cache[key]
	return t, ok
}

// Load advances the cache's asynchronous state by one step: it polls for
// the client bootstrap, seeds the root tile on first success, drains any
// ready lazily-fetched node results into their parent tiles, and promotes
// any tile whose content fetch has completed from Loading to Ready. It is
// meant to be called once per frame alongside Render.
func (c *Cache) Load(ctx context.Context) {
	if c.client == nil {
		result, ready := c.clientFuture.Poll()
		if !ready {
			return
		}
		if result.Err != nil {
			c.cfg.log().Error("tile client bootstrap failed", "error", result.Err)
			return
		}
		c.client = result.Client
	}

	if c.client.Session() == "" {
		return
	}

	if !c.hasLoadRoot {
		c.hasLoadRoot = true
		Fill(c.client.Root(), "", false, c.cache, &c.roots, true)
	}

	c.drainNodePromises()
	c.promoteReadyContent()
}

// drainNodePromises polls every outstanding lazy node fetch exactly once,
// splicing each ready subtree into the cache under a fresh set of roots
// and appending those roots to the requesting parent's children. Futures
// still pending are kept for the next call; ready ones are dropped from
// nodePromises so they are never observed twice.
func (c *Cache) drainNodePromises() {
	var remaining []fetchtask.NodeFuture
	for _, f := range c.nodePromises {
		result, ok := f.Poll()
		if !ok {
			remaining = append(remaining, f)
			continue
		}
		if result.Err != nil {
			c.cfg.log().Warn("lazy node fetch failed", "error", result.Err)
			continue
		}

		var newRoots []string
		Fill(result.Node, result.ParentKey, true, c.cache, &newRoots, true)
		if parent, ok := c.cache[result.ParentKey]; ok {
			parent.Children = append(parent.Children, newRoots...)
		}
	}
	c.nodePromises = remaining
}

func (c *Cache) promoteReadyContent() {
	for _, t := range c.cache {
		if t.ContentState != ContentLoading {
			continue
		}
		result, ok := t.ContentFuture.Poll()
		if !ok {
			continue
		}
		if result.Err != nil {
			// Stays Loading forever: content state only ever moves
			// None -> Loading -> Ready, and fetches are never retried.
			c.cfg.log().Warn("content fetch failed", "error", result.Err)
			continue
		}
		t.Contents = gpu.UploadAll(c.gpuCtx, result.Contents)
		t.ContentState = ContentReady
	}
}
