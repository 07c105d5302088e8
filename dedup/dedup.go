// Package dedup resolves duplicate-position variants within one
// dataset. When two or more variants occupy the same chromosome and
// position (regardless of alleles or IDs), exactly one survives: the
// one with the highest call rate, ties broken by input order.
package dedup

import (
	"io"
	"sort"

	"github.com/grailbio/base/tsv"

	"github.com/genotools/genomerge/variant"
)

// HasCollisions reports whether any two variants in ds share a position
// key. Callers should check this before computing per-variant
// missingness: the quality table is expensive to produce and is only
// needed when collisions exist.
func HasCollisions(ds variant.Dataset) bool {
	seen := make(map[string]struct{}, len(ds.Variants))
	for _, v := range ds.Variants {
		k := v.PosKey()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// Exclusions picks the surviving variant at every collided position and
// returns the original IDs of all the others, in quality-rank order.
// quality maps original ID to call rate (1 - missingness); a variant
// absent from quality ranks as call rate 0. The sort is stable, so
// equal call rates resolve to the earlier input row.
func Exclusions(ds variant.Dataset, quality map[string]float64) []string {
	ranked := make([]variant.Variant, len(ds.Variants))
	copy(ranked, ds.Variants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return quality[ranked[i].ID] > quality[ranked[j].ID]
	})

	taken := make(map[string]struct{}, len(ranked))
	var excluded []string
	for _, v := range ranked {
		k := v.PosKey()
		if _, ok := taken[k]; ok {
			excluded = append(excluded, v.ID)
			continue
		}
		taken[k] = struct{}{}
	}
	return excluded
}

// ReadMissingness reads the per-variant missingness table: one row per
// variant, columns (originalID, missingnessFraction). Rows whose
// fraction does not parse are skipped (the producing engine writes a
// header row in exactly that shape). Call rate = 1 - missingness.
func ReadMissingness(r io.Reader) (map[string]float64, error) {
	in := tsv.NewReader(r)
	quality := map[string]float64{}
	for {
		var row struct {
			ID    string
			FMiss string
		}
		if err := in.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		fmiss, ok := parseFraction(row.FMiss)
		if !ok {
			continue
		}
		quality[row.ID] = 1 - fmiss
	}
	return quality, nil
}

// WriteExclusions writes the one-column original-ID list consumed by
// the engine's exclusion filter.
func WriteExclusions(w io.Writer, ids []string) error {
	out := tsv.NewWriter(w)
	for _, id := range ids {
		out.WriteString(id)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
