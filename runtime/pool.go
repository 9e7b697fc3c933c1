package runtime

import "sync"

// DecoderPoolCap bounds the number of idle decoders the pool retains.
const DecoderPoolCap = 100

// The codec itself is single-threaded by contract, but the pool is shared
// process state, so it carries its own lock.
var decoderPool struct {
	mu   sync.Mutex
	free []*Decoder
}

// Alloc returns a pooled or fresh decoder bound to src.
func Alloc(src ByteSource) (*Decoder, error) {
	d := takeDecoder()
	if err := d.SetBlock(src); err != nil {
		d.Free()
		return nil, err
	}
	return d, nil
}

// AllocWindow returns a pooled or fresh decoder bound to length bytes of
// src starting at start.
func AllocWindow(src ByteSource, start, length int) (*Decoder, error) {
	d := takeDecoder()
	if err := d.SetBlockWindow(src, start, length); err != nil {
		d.Free()
		return nil, err
	}
	return d, nil
}

func takeDecoder() *Decoder {
	decoderPool.mu.Lock()
	defer decoderPool.mu.Unlock()
	if n := len(decoderPool.free); n > 0 {
		d := decoderPool.free[n-1]
		decoderPool.free[n-1] = nil
		decoderPool.free = decoderPool.free[:n-1]
		return d
	}
	return &Decoder{}
}

// Free clears the decoder and returns it to the pool. Beyond the pool cap
// the instance is discarded. The decoder must not be used after Free.
func (d *Decoder) Free() {
	*d = Decoder{}
	decoderPool.mu.Lock()
	defer decoderPool.mu.Unlock()
	if len(decoderPool.free) < DecoderPoolCap {
		decoderPool.free = append(decoderPool.free, d)
	}
}

// PoolSize reports the number of idle decoders currently retained.
func PoolSize() int {
	decoderPool.mu.Lock()
	defer decoderPool.mu.Unlock()
	return len(decoderPool.free)
}
