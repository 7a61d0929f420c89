package chunk

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// Chunk is a labeled, contiguous range of the index buffer.
type Chunk struct {
	Label string
	Start int
	Len   int
}

// ApproximateSize returns the number of ids in the chunk.
func (c Chunk) ApproximateSize() int {
	return c.Len
}

// Index is the read-only result of Builder.Build.
type Index struct {
	data    []int32
	chunks  []Chunk
	byLabel map[string]int
}

// Len returns the total number of ids across chunks.
func (x *Index) Len() int {
	return len(x.data)
}

// Chunks returns the chunks in label order.
func (x *Index) Chunks() []Chunk {
	out := make([]Chunk, len(x.chunks))
	copy(out, x.chunks)
	return out
}

// Chunk returns the chunk for label.
func (x *Index) Chunk(label string) (Chunk, bool) {
	i, ok := x.byLabel[label]
	if !ok {
		return Chunk{}, false
	}
	return x.chunks[i], true
}

// IDs returns the ids of c as a view into the index buffer. Callers must not
// modify it; appending reallocates instead of overwriting the next chunk.
func (x *Index) IDs(c Chunk) []int32 {
	if c.Start < 0 || c.Len < 0 || c.Start+c.Len > len(x.data) {
		panic(fmt.Sprintf("Index.IDs: chunk [%d,+%d) outside index of %d", c.Start, c.Len, len(x.data)))
	}
	return x.data[c.Start : c.Start+c.Len : c.Start+c.Len]
}

// Members returns the distinct ids of c.
func (x *Index) Members(c Chunk) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range x.IDs(c) {
		bm.Add(uint32(id))
	}
	return bm
}

// AllMembers returns the distinct ids across every chunk.
func (x *Index) AllMembers() *roaring.Bitmap {
	if len(x.chunks) == 0 {
		return roaring.New()
	}
	bms := make([]*roaring.Bitmap, 0, len(x.chunks))
	for _, c := range x.chunks {
		bms = append(bms, x.Members(c))
	}
	return roaring.FastOr(bms...)
}

// Partition splits every chunk longer than maxSize into consecutive chunks of
// at most maxSize ids carrying the same label. Order is preserved.
func (x *Index) Partition(maxSize int) []Chunk {
	if maxSize < 1 {
		panic(fmt.Sprintf("Index.Partition: maxSize must be >= 1, got %d", maxSize))
	}
	var out []Chunk
	for _, c := range x.chunks {
		if c.Len == 0 {
			out = append(out, c)
			continue
		}
		for off := 0; off < c.Len; off += maxSize {
			n := min(maxSize, c.Len-off)
			out = append(out, Chunk{Label: c.Label, Start: c.Start + off, Len: n})
		}
	}
	return out
}

// ForEachParallel calls fn for every chunk of parts using at most workers
// goroutines. The first error cancels ctx for the remaining calls and is
// returned.
func (x *Index) ForEachParallel(ctx context.Context, parts []Chunk, workers int, fn func(ctx context.Context, c Chunk, ids []int32) error) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range parts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, c, x.IDs(c))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
