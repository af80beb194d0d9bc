package system

import (
	"image"
	"sync"
)

// GrayPool reuses *image.Gray scratch buffers to keep the skew-angle search,
// which rotates the same binary page dozens of times, from hammering the GC.
type GrayPool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalGrayPool = &GrayPool{
	pools: make(map[string]*sync.Pool),
}

// GetGray returns a *image.Gray with the given bounds from the pool, or a
// fresh one. Contents are unspecified; callers clear it as needed.
func GetGray(rect image.Rectangle) *image.Gray {
	return globalGrayPool.Get(rect)
}

// PutGray returns a *image.Gray to the pool for reuse.
func PutGray(img *image.Gray) {
	globalGrayPool.Put(img)
}

func (p *GrayPool) Get(rect image.Rectangle) *image.Gray {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewGray(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.Gray)
}

func (p *GrayPool) Put(img *image.Gray) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
