// Package chunk accumulates (id, label) pairs from many goroutines and
// finalizes them into a label-ordered, chunked index for parallel iteration.
package chunk

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// numShards must be a power of two.
const numShards = 64

// sequence is a growable, mutex-guarded list of ids for one label.
type sequence struct {
	mu  sync.Mutex
	ids []int32
}

func (s *sequence) append(id int32) {
	s.mu.Lock()
	s.ids = append(s.ids, id)
	s.mu.Unlock()
}

func (s *sequence) snapshot() []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids
}

type shard struct {
	mu   sync.RWMutex
	seqs map[string]*sequence
}

// Builder collects ids per label. Add is safe for concurrent use; Build must
// only run once every writer is done.
type Builder struct {
	shards [numShards]shard
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	b := &Builder{}
	for i := range b.shards {
		b.shards[i].seqs = make(map[string]*sequence)
	}
	return b
}

// Add records id under label. Duplicates are kept.
func (b *Builder) Add(id int32, label string) {
	b.sequenceFor(label).append(id)
}

// sequenceFor returns the label's sequence, registering it exactly once
// when racing writers see a new label together.
func (b *Builder) sequenceFor(label string) *sequence {
	sh := &b.shards[xxhash.Sum64String(label)&(numShards-1)]

	sh.mu.RLock()
	seq, ok := sh.seqs[label]
	sh.mu.RUnlock()
	if ok {
		return seq
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if seq, ok = sh.seqs[label]; ok {
		return seq
	}
	seq = &sequence{}
	sh.seqs[label] = seq
	return seq
}

// Labels returns every label seen so far, sorted.
func (b *Builder) Labels() []string {
	var labels []string
	for i := range b.shards {
		sh := &b.shards[i]
		sh.mu.RLock()
		for l := range sh.seqs {
			labels = append(labels, l)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(labels)
	return labels
}

// Build sorts labels lexicographically and concatenates each label's ids into
// one flat buffer, recording a chunk per label. Chunk order is deterministic;
// id order inside a chunk follows append order.
func (b *Builder) Build() *Index {
	labels := b.Labels()
	seqs := make([][]int32, len(labels))
	total := 0
	for i, l := range labels {
		seqs[i] = b.sequenceFor(l).snapshot()
		total += len(seqs[i])
	}

	idx := &Index{
		data:    make([]int32, 0, total),
		chunks:  make([]Chunk, 0, len(labels)),
		byLabel: make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		start := len(idx.data)
		idx.data = append(idx.data, seqs[i]...)
		idx.byLabel[l] = len(idx.chunks)
		idx.chunks = append(idx.chunks, Chunk{Label: l, Start: start, Len: len(seqs[i])})
	}
	return idx
}
