package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory keeps blobs in process memory.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]memObject
}

type memObject struct {
	meta Object
	data []byte
}

func NewMemory() *Memory { return &Memory{objs: map[string]memObject{}} }

func (m *Memory) Put(_ context.Context, name, contentType string, data []byte) (Object, error) {
	obj := Object{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Digest:      Digest(data),
		UploadedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.objs[name] = memObject{meta: obj, data: append([]byte(nil), data...)}
	m.mu.Unlock()
	return obj, nil
}

func (m *Memory) Open(_ context.Context, name string) (io.ReadCloser, Object, error) {
	m.mu.RLock()
	o, ok := m.objs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, Object{}, notFound(name)
	}
	return io.NopCloser(bytes.NewReader(o.data)), o.meta, nil
}
