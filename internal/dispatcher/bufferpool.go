package dispatcher

import "sync"

// BufferPool supplies reusable byte slices for the bidirectional copy so
// steady-state relaying doesn't allocate per connection.
type BufferPool interface {
	Get() []byte
	Put([]byte)
}

type SyncPoolBufferPool struct {
	size int
	p    sync.Pool
}

func NewSyncPoolBufferPool(size int) *SyncPoolBufferPool {
	bp := &SyncPoolBufferPool{size: size}
	bp.p.New = func() any { return make([]byte, bp.size) }
	return bp
}

func (p *SyncPoolBufferPool) Get() []byte {
	return p.p.Get().([]byte)
}

func (p *SyncPoolBufferPool) Put(b []byte) {
	if cap(b) < p.size {
		return
	}
	b = b[:p.size]
	p.p.Put(b)
}
