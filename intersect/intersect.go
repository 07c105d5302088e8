// Package intersect computes the set of canonical variant keys present
// in every dataset of a merge batch.
package intersect

import (
	"io"

	"github.com/grailbio/base/tsv"

	"github.com/genotools/genomerge/variant"
)

// Batch is an ordered merge batch. The anchor dataset is structurally
// distinguished: it seeds the running intersection and its scan order
// determines the order of the result.
type Batch struct {
	Anchor variant.Dataset
	Rest   []variant.Dataset
}

// Keys returns the canonical keys common to the anchor and every
// dataset in Rest, ordered by first appearance in the anchor. An empty
// result is normal, not an error; the scan short-circuits as soon as
// the running intersection empties. Runs in O(total variants) using
// per-dataset key-set membership.
func Keys(b Batch) []string {
	running := make([]string, 0, len(b.Anchor.Variants))
	member := make(map[string]struct{}, len(b.Anchor.Variants))
	for _, v := range b.Anchor.Variants {
		key := v.Key()
		if _, ok := member[key]; ok {
			continue
		}
		member[key] = struct{}{}
		running = append(running, key)
	}

	for _, ds := range b.Rest {
		if len(running) == 0 {
			break
		}
		keys := make(map[string]struct{}, len(ds.Variants))
		for _, v := range ds.Variants {
			keys[v.Key()] = struct{}{}
		}
		kept := running[:0]
		for _, key := range running {
			if _, ok := keys[key]; ok {
				kept = append(kept, key)
			}
		}
		running = kept
	}
	return running
}

// WriteSelection writes keys as the one-column inclusion filter
// consumed by the external genotype engine.
func WriteSelection(w io.Writer, keys []string) error {
	out := tsv.NewWriter(w)
	for _, key := range keys {
		out.WriteString(key)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
