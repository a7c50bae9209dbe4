// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package lang

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Factory maps language tags and file suffixes to parser instances,
// pooling adapters by language for reuse. Adapters are not thread-safe;
// the pool serializes ownership via sync.Pool semantics (acquire takes
// exclusive ownership, release returns it).
type Factory struct {
	mu         sync.Mutex
	pools      map[Tag]*sync.Pool
	extractors map[Tag]Extractor
	scanners   map[Tag]Scanner
	registered map[Tag]bool

	hits, misses, outstanding int64
}

// NewFactory returns an empty Factory. Register each supported language
// before calling Acquire.
func NewFactory() *Factory {
	return &Factory{
		pools:      make(map[Tag]*sync.Pool),
		extractors: make(map[Tag]Extractor),
		scanners:   make(map[Tag]Scanner),
		registered: make(map[Tag]bool),
	}
}

// Register wires a language's adapter constructor, extractor, and scanner
// into the factory. Safe to call before any Acquire; not safe concurrently
// with Acquire/Release on the same tag.
func (f *Factory) Register(reg Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tag := reg.Tag
	f.registered[tag] = true
	f.extractors[tag] = reg.Extractor
	f.scanners[tag] = reg.Scanner
	f.pools[tag] = &sync.Pool{
		New: func() any { return reg.NewAdapter() },
	}
}

// Detect matches path against every registered tag's suffix list.
func (f *Factory) Detect(path string) (Tag, bool) {
	tag := DetectSuffix(path)
	if tag == Unknown {
		return Unknown, false
	}
	f.mu.Lock()
	ok := f.registered[tag]
	f.mu.Unlock()
	if !ok {
		return Unknown, false
	}
	return tag, true
}

// Acquire returns an adapter for tag, creating one on pool miss. The
// caller must Release it when done.
func (f *Factory) Acquire(tag Tag) (Adapter, error) {
	f.mu.Lock()
	pool, ok := f.pools[tag]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("lang: no adapter registered for tag %s", tag)
	}

	v := pool.Get()
	adapter, ok := v.(Adapter)
	if !ok {
		return nil, fmt.Errorf("lang: pool for tag %s returned non-adapter value", tag)
	}

	atomic.AddInt64(&f.outstanding, 1)
	atomic.AddInt64(&f.hits, 1)
	return adapter, nil
}

// Release returns adapter to its tag's pool.
func (f *Factory) Release(adapter Adapter) {
	f.mu.Lock()
	pool, ok := f.pools[adapter.Tag()]
	f.mu.Unlock()
	if !ok {
		return
	}
	atomic.AddInt64(&f.outstanding, -1)
	pool.Put(adapter)
}

// Extractor returns the registered extractor for tag, if any.
func (f *Factory) Extractor(tag Tag) (Extractor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.extractors[tag]
	return e, ok
}

// Scanner returns the registered reference scanner for tag, if any.
func (f *Factory) Scanner(tag Tag) (Scanner, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scanners[tag]
	return s, ok
}

// Stats reports cache statistics: cumulative acquisitions and the number
// of adapters currently checked out.
type Stats struct {
	Acquisitions int64
	Outstanding  int64
}

// Stats returns a snapshot of cache statistics.
func (f *Factory) Stats() Stats {
	return Stats{
		Acquisitions: atomic.LoadInt64(&f.hits),
		Outstanding:  atomic.LoadInt64(&f.outstanding),
	}
}

// Collectors returns the prometheus collectors exposing Factory statistics,
// for the caller to register against its own registry (the factory never
// registers itself globally, since library use should not have
// process-wide side effects).
func (f *Factory) Collectors() []prometheus.Collector {
	acquisitions := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "slicer_parser_cache_acquisitions_total",
		Help: "Total number of parser adapter acquisitions from the cache.",
	}, func() float64 { return float64(atomic.LoadInt64(&f.hits)) })

	outstanding := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "slicer_parser_cache_outstanding",
		Help: "Number of parser adapters currently checked out of the cache.",
	}, func() float64 { return float64(atomic.LoadInt64(&f.outstanding)) })

	return []prometheus.Collector{acquisitions, outstanding}
}
