package upstream_test

import (
	"context"
	"sync"
	"time"
)

// fakeRateCache is an in-memory stand-in for the Redis adapter, always
// enabled and never failing.
type fakeRateCache struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	values map[string]string
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{
		hashes: make(map[string]map[string]string),
		values: make(map[string]string),
	}
}

func (f *fakeRateCache) Get(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeRateCache) Set(_ context.Context, key, value string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

func (f *fakeRateCache) HGet(_ context.Context, name, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.hashes[name][key]
	return v, ok
}

func (f *fakeRateCache) HSet(_ context.Context, name, key, value string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[name] == nil {
		f.hashes[name] = make(map[string]string)
	}
	f.hashes[name][key] = value
}

func (f *fakeRateCache) HDel(_ context.Context, name, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.hashes[name], key)
}

func (f *fakeRateCache) HGetAll(_ context.Context, name string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.hashes[name]
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func (f *fakeRateCache) HMGet(_ context.Context, name string, keys ...string) []*string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*string, len(keys))
	for i, k := range keys {
		if v, ok := f.hashes[name][k]; ok {
			out[i] = &v
		}
	}
	return out
}

func (f *fakeRateCache) Keys(_ context.Context, _ string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.hashes)+len(f.values))
	for k := range f.hashes {
		out = append(out, k)
	}
	for k := range f.values {
		out = append(out, k)
	}
	return out
}
