package conelab

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

// LoadError wraps a texture fetch/decode failure for one URL. Load errors
// are local to the requesting consumer: the failed URL is removed from the
// in-flight set so a later acquire can retry.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("texture load %q: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// Disposable is any GPU-side handle attached to a texture resource that must
// be released on cache clear.
type Disposable interface {
	Release()
}

// TextureResource is a loaded bitmap keyed by its source URL. The cache owns
// its lifetime; consumers treat it as shared-read.
type TextureResource struct {
	URL     string
	Image   *image.NRGBA
	Width   int
	Height  int
	WrapS   WrapMode
	WrapT   WrapMode
	RepeatX float32
	RepeatY float32
	SRGB    bool

	mu       sync.Mutex
	gpu      Disposable
	disposed bool
}

// AttachGPU hands the resource its device-side handle, releasing any
// previous one. A disposed resource releases the handle immediately.
func (r *TextureResource) AttachGPU(handle Disposable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gpu != nil {
		r.gpu.Release()
	}
	if r.disposed {
		if handle != nil {
			handle.Release()
		}
		r.gpu = nil
		return
	}
	r.gpu = handle
}

// GPU returns the attached device-side handle, if any.
func (r *TextureResource) GPU() Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gpu
}

func (r *TextureResource) HasGPU() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gpu != nil
}

func (r *TextureResource) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

func (r *TextureResource) dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	if r.gpu != nil {
		r.gpu.Release()
		r.gpu = nil
	}
}

// TexturePromise resolves once a texture load settles. Result blocks until
// then; Poll never blocks.
type TexturePromise struct {
	done chan struct{}
	res  *TextureResource
	err  error
}

func newTexturePromise() *TexturePromise {
	return &TexturePromise{done: make(chan struct{})}
}

func resolvedPromise(res *TextureResource) *TexturePromise {
	p := newTexturePromise()
	p.fulfill(res, nil)
	return p
}

func (p *TexturePromise) fulfill(res *TextureResource, err error) {
	p.res = res
	p.err = err
	close(p.done)
}

func (p *TexturePromise) Done() <-chan struct{} {
	return p.done
}

// Poll reports whether the promise has settled, and with what.
func (p *TexturePromise) Poll() (res *TextureResource, err error, settled bool) {
	select {
	case <-p.done:
		return p.res, p.err, true
	default:
		return nil, nil, false
	}
}

// Result blocks until the load settles.
func (p *TexturePromise) Result() (*TextureResource, error) {
	<-p.done
	return p.res, p.err
}

// TextureLoader fetches and decodes the bytes behind a texture URL.
type TextureLoader interface {
	Load(url string) (image.Image, error)
}

// DefaultTextureLoader understands data: URLs (the file-picker path) and
// plain filesystem paths. Decoding goes through imaging so EXIF orientation
// is honored.
type DefaultTextureLoader struct{}

func (DefaultTextureLoader) Load(src string) (image.Image, error) {
	if strings.HasPrefix(src, "data:") {
		data, err := decodeDataURL(src)
		if err != nil {
			return nil, err
		}
		return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imaging.Decode(f, imaging.AutoOrientation(true))
}

func decodeDataURL(src string) ([]byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("malformed data URL: no comma")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(unescaped), nil
}

// TextureCache memoizes loaded bitmap resources per source URL with
// single-flight loading: concurrent acquires for one URL share a single
// fetch/decode and observe the same eventual resource.
//
// The cache is an explicitly constructed resource with a defined owner (the
// module that installs it), not an implicit global.
type TextureCache struct {
	mu       sync.Mutex
	resolved map[string]*TextureResource
	inflight map[string]*TexturePromise
	group    singleflight.Group
	loader   TextureLoader
	log      Logger
}

func NewTextureCache(loader TextureLoader, log Logger) *TextureCache {
	if loader == nil {
		loader = DefaultTextureLoader{}
	}
	if log == nil {
		log = NewNopLogger()
	}
	return &TextureCache{
		resolved: make(map[string]*TextureResource),
		inflight: make(map[string]*TexturePromise),
		loader:   loader,
		log:      log,
	}
}

// Acquire returns a promise for the resource behind url. A resolved URL
// yields an already-settled promise; an in-flight URL yields the shared
// pending promise; otherwise a new load begins. On failure the in-flight
// entry is dropped so the URL can be retried, and the promise settles with a
// *LoadError.
func (c *TextureCache) Acquire(src string) *TexturePromise {
	c.mu.Lock()
	if res, ok := c.resolved[src]; ok {
		c.mu.Unlock()
		return resolvedPromise(res)
	}
	p, known := c.inflight[src]
	if !known {
		p = newTexturePromise()
		c.inflight[src] = p
	}
	c.mu.Unlock()

	// Every acquire joins the group call, so the group coalesces duplicate
	// loads; the inflight map only hands duplicates the shared promise. The
	// first acquirer settles it.
	ch := c.group.DoChan(src, func() (any, error) {
		img, err := c.loader.Load(src)
		if err != nil {
			return nil, err
		}
		return normalizeTexture(img), nil
	})
	if !known {
		go c.settle(src, p, ch)
	}
	return p
}

func (c *TextureCache) settle(src string, p *TexturePromise, ch <-chan singleflight.Result) {
	out := <-ch

	c.mu.Lock()
	// A Clear while loading replaces the inflight map; a stale result still
	// settles its promise but never enters the cache.
	current := c.inflight[src] == p
	if current {
		delete(c.inflight, src)
	}
	if out.Err != nil {
		c.mu.Unlock()
		c.log.Warnf("texture load failed for %q: %v", src, out.Err)
		p.fulfill(nil, &LoadError{URL: src, Err: out.Err})
		return
	}

	img := out.Val.(*image.NRGBA)
	res := &TextureResource{
		URL:     src,
		Image:   img,
		Width:   img.Rect.Dx(),
		Height:  img.Rect.Dy(),
		WrapS:   WrapRepeat,
		WrapT:   WrapRepeat,
		RepeatX: 1,
		RepeatY: 1,
		SRGB:    true,
	}
	if current {
		c.resolved[src] = res
	}
	c.mu.Unlock()

	c.log.Debugf("texture loaded: %q (%dx%d)", src, res.Width, res.Height)
	p.fulfill(res, nil)
}

// Lookup returns a cached resource synchronously, or nil, and never triggers
// a load. The empty URL is always nil.
func (c *TextureCache) Lookup(src string) *TextureResource {
	if src == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved[src]
}

// Clear disposes every cached resource and empties both the resolved cache
// and the in-flight set. Safe to call at any time and idempotent, but it
// invalidates every texture referenced by a mounted scene; callers must
// re-Acquire afterward.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	resolved := c.resolved
	c.resolved = make(map[string]*TextureResource)
	for src := range c.inflight {
		c.group.Forget(src)
	}
	c.inflight = make(map[string]*TexturePromise)
	c.mu.Unlock()

	for _, res := range resolved {
		res.dispose()
	}
}

// normalizeTexture converts a decoded image to NRGBA and resamples anything
// larger than the procedural grid down to TextureGridSize, keeping uploads
// bounded.
func normalizeTexture(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= TextureGridSize && b.Dy() <= TextureGridSize {
		// Uploads assume Pix is tightly packed from the origin, which a
		// sub-image is not.
		if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
			return n
		}
		out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(out, out.Rect, img, b.Min, xdraw.Src)
		return out
	}

	out := image.NewNRGBA(image.Rect(0, 0, TextureGridSize, TextureGridSize))
	xdraw.CatmullRom.Scale(out, out.Rect, img, b, xdraw.Src, nil)
	return out
}

// TextureCacheModule installs a texture cache resource. A nil Loader uses
// the default data-URL/file loader.
type TextureCacheModule struct {
	Loader TextureLoader
}

func (m TextureCacheModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewTextureCache(m.Loader, app.Logger()))
}
