package offline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Arpanmondalz/zen-spend/internal/log"
)

// Phase tracks the install lifecycle of the current generation.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseInstalling Phase = "installing"
	PhaseInstalled  Phase = "installed"
	PhaseActivating Phase = "activating"
	PhaseActivated  Phase = "activated"
)

// installConcurrency bounds parallel asset fetches during install.
const installConcurrency = 4

type origin struct {
	external bool
	url      string
}

// Controller installs the manifest's assets into the store and serves
// them cache-first, falling back to the origin and finally to the
// cached app shell.
type Controller struct {
	store    *Store
	local    fs.FS
	manifest Manifest
	client   *http.Client
	logger   *log.Logger

	origins map[string]origin

	mu    sync.RWMutex
	phase Phase
}

// NewController wires a controller for one manifest. localFS holds the
// app's own assets; external ones are fetched over HTTP with the given
// client.
func NewController(store *Store, localFS fs.FS, manifest Manifest, client *http.Client, logger *log.Logger) *Controller {
	if client == nil {
		client = http.DefaultClient
	}

	origins := make(map[string]origin, manifest.AssetCount())
	for _, p := range manifest.Local {
		origins[p] = origin{}
	}
	for _, e := range manifest.External {
		origins[e.Path] = origin{external: true, url: e.URL}
	}

	return &Controller{
		store:    store,
		local:    localFS,
		manifest: manifest,
		client:   client,
		logger:   logger.WithComponent(log.ComponentOffline),
		origins:  origins,
		phase:    PhasePending,
	}
}

// Status reports the install phase and the active generation tag.
func (c *Controller) Status() (Phase, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase, c.manifest.Generation
}

// Ready reports whether the cache can serve the app shell offline.
func (c *Controller) Ready() bool {
	phase, _ := c.Status()
	return phase == PhaseInstalled || phase == PhaseActivating || phase == PhaseActivated
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Install fetches every manifest asset into a staged generation and
// promotes it atomically. All assets must land or none do. An already
// installed generation is left as is.
func (c *Controller) Install(ctx context.Context) error {
	c.setPhase(PhaseInstalling)

	if c.store.Has(c.manifest.Generation) {
		c.logger.Info("Generation already installed",
			log.FieldGeneration, c.manifest.Generation)
		c.setPhase(PhaseInstalled)
		return nil
	}

	c.logger.Info("Installing offline assets",
		log.FieldGeneration, c.manifest.Generation,
		log.FieldAssetCount, c.manifest.AssetCount())

	staging, err := c.store.Stage(c.manifest.Generation)
	if err != nil {
		c.setPhase(PhasePending)
		return fmt.Errorf("stage generation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(installConcurrency)

	for key := range c.origins {
		g.Go(func() error {
			entry, err := c.fetchOrigin(gctx, key)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", key, err)
			}
			if err := staging.Put(key, entry); err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if derr := staging.Discard(); derr != nil {
			c.logger.Error("Failed to discard staging area", log.FieldError, derr)
		}
		c.setPhase(PhasePending)
		return fmt.Errorf("install generation %s: %w", c.manifest.Generation, err)
	}

	if err := staging.Commit(); err != nil {
		c.setPhase(PhasePending)
		return fmt.Errorf("commit generation %s: %w", c.manifest.Generation, err)
	}

	c.setPhase(PhaseInstalled)
	c.logger.Info("Offline assets installed", log.FieldGeneration, c.manifest.Generation)
	return nil
}

// Activate removes every generation except the current one.
func (c *Controller) Activate(ctx context.Context) error {
	c.setPhase(PhaseActivating)

	generations, err := c.store.Generations()
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}
	for _, gen := range generations {
		if gen == c.manifest.Generation {
			continue
		}
		if err := c.store.Remove(gen); err != nil {
			return fmt.Errorf("evict generation: %w", err)
		}
		c.logger.Info("Evicted stale generation", log.FieldGeneration, gen)
	}

	c.setPhase(PhaseActivated)
	return nil
}

// ServeHTTP answers asset requests cache-first. A miss goes to the
// origin and the response is cached for next time. When the origin is
// unreachable, navigations get the cached app shell so the UI still
// loads; anything else gets a 502.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := path.Clean(r.URL.Path)

	if entry, err := c.store.Get(c.manifest.Generation, key); err == nil {
		serveEntry(w, entry)
		return
	}

	o, known := c.origins[key]
	if !known {
		c.fallback(w, r, http.StatusNotFound)
		return
	}

	entry, err := c.fetchOrigin(r.Context(), key)
	if err != nil {
		c.logger.Warn("Origin fetch failed, serving fallback",
			log.FieldAssetKey, key,
			"external", o.external,
			log.FieldError, err)
		c.fallback(w, r, http.StatusBadGateway)
		return
	}

	serveEntry(w, entry)

	if err := c.store.Put(c.manifest.Generation, key, entry); err != nil {
		c.logger.Error("Failed to cache asset", log.FieldAssetKey, key, log.FieldError, err)
	}
}

// fallback serves the cached app shell for HTML navigations so the SPA
// can boot offline. Non-HTML requests get the bare status code.
func (c *Controller) fallback(w http.ResponseWriter, r *http.Request, status int) {
	if acceptsHTML(r) {
		if shell, err := c.store.Get(c.manifest.Generation, "/"); err == nil {
			serveEntry(w, shell)
			return
		}
	}
	http.Error(w, http.StatusText(status), status)
}

func (c *Controller) fetchOrigin(ctx context.Context, key string) (Entry, error) {
	o, ok := c.origins[key]
	if !ok {
		return Entry{}, fmt.Errorf("no origin for %s", key)
	}
	if o.external {
		return c.fetchExternal(ctx, key, o.url)
	}
	return c.fetchLocal(key)
}

func (c *Controller) fetchLocal(key string) (Entry, error) {
	body, err := fs.ReadFile(c.local, localFSPath(key))
	if err != nil {
		return Entry{}, fmt.Errorf("read embedded asset: %w", err)
	}
	return Entry{Body: body, ContentType: contentTypeFor(key)}, nil
}

func (c *Controller) fetchExternal(ctx context.Context, key, url string) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, fmt.Errorf("read response body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFor(key)
	}
	return Entry{Body: body, ContentType: contentType}, nil
}

// localFSPath maps a URL path to its location in the embedded FS. The
// app shell lives at static/index.html.
func localFSPath(key string) string {
	if key == "/" {
		return "static/index.html"
	}
	return key[1:]
}

func contentTypeFor(key string) string {
	if key == "/" {
		return "text/html; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func serveEntry(w http.ResponseWriter, e Entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(e.Body)
}

func acceptsHTML(r *http.Request) bool {
	for _, accept := range r.Header.Values("Accept") {
		if strings.Contains(accept, "text/html") {
			return true
		}
	}
	return false
}
