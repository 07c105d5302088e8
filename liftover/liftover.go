// Package liftover translates a dataset's variant coordinates from one
// genome assembly to another, using a per-variant interval mapping
// produced by an external coordinate-lift engine. The package does not
// compute the mapping itself; it consumes the engine's output table and
// re-derives canonical keys in the target build.
package liftover

import (
	"io"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"

	"github.com/genotools/genomerge/variant"
)

// Record is one row of the lift mapping table: where a single source
// variant landed in the target assembly. Source rows the lift engine
// could not place are simply absent from the table.
type Record struct {
	SrcChrom string
	SrcPos   int
	DstChrom string
	DstPos   int
	ID       string
	A1, A2   string
}

// Table indexes lift records by (source chromosome, source position,
// original ID), the triple the lifter matches variants on.
type Table map[string]Record

func recordKey(chrom string, pos int, id string) string {
	return variant.NormalizeChrom(chrom) + "_" + strconv.Itoa(pos) + "_" + id
}

// ReadTable reads the lift mapping table: one row per mapped variant,
// columns (sourceChromosome, sourcePosition, targetChromosome,
// targetPosition, originalID, allele1, allele2). Rows with non-numeric
// positions are skipped and counted. If the engine emits two rows for
// one source variant, the first wins.
func ReadTable(r io.Reader) (Table, int, error) {
	in := tsv.NewReader(r)
	table := Table{}
	skipped := 0
	for {
		var row struct {
			SrcChrom string
			SrcPos   string
			DstChrom string
			DstPos   string
			ID       string
			A1       string
			A2       string
		}
		if err := in.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, err
		}
		srcPos, err1 := strconv.Atoi(row.SrcPos)
		dstPos, err2 := strconv.Atoi(row.DstPos)
		if err1 != nil || err2 != nil {
			skipped++
			continue
		}
		key := recordKey(row.SrcChrom, srcPos, row.ID)
		if _, ok := table[key]; ok {
			continue
		}
		table[key] = Record{
			SrcChrom: row.SrcChrom,
			SrcPos:   srcPos,
			DstChrom: row.DstChrom,
			DstPos:   dstPos,
			ID:       row.ID,
			A1:       row.A1,
			A2:       row.A2,
		}
	}
	if skipped > 0 {
		log.Printf("lift table: skipped %d malformed row(s)", skipped)
	}
	return table, skipped, nil
}

// Stats summarizes one Apply run.
type Stats struct {
	// Lifted counts variants that survived into the target build.
	Lifted int
	// Unmapped counts variants with no lift record (expected attrition).
	Unmapped int
	// OffContig counts lifted rows discarded because the target
	// chromosome is not one of chr1..chr22, chrX, chrY, chrM.
	OffContig int
	// TargetCollisions counts distinct target positions that received
	// more than one lifted variant. The duplicate-position resolver
	// handles these downstream; the count is reported so attrition there
	// is explainable.
	TargetCollisions int
}

// Apply lifts ds into the target build described by table. Variants
// without a lift record are dropped, as are variants the engine placed
// on unplaced contigs or alternate scaffolds. Each surviving variant is
// a newly constructed value with target coordinates; its canonical key
// is re-derived through the canonicalizer.
func Apply(ds variant.Dataset, table Table) (variant.Dataset, Stats) {
	out := variant.Dataset{Name: ds.Name, Samples: ds.Samples}
	var stats Stats
	idx := newCollisionIndex()
	for _, v := range ds.Variants {
		rec, ok := table[recordKey(v.Chrom, v.Pos, v.ID)]
		if !ok {
			stats.Unmapped++
			continue
		}
		chrom := variant.NormalizeChrom(rec.DstChrom)
		if !recognizedChrom(chrom) {
			stats.OffContig++
			continue
		}
		out.Variants = append(out.Variants, variant.Variant{
			ID:    v.ID,
			Chrom: chrom,
			Pos:   rec.DstPos,
			A1:    v.A1,
			A2:    v.A2,
		})
		idx.add(chrom, rec.DstPos)
		stats.Lifted++
	}
	stats.TargetCollisions = idx.collisions()
	if stats.TargetCollisions > 0 {
		log.Printf("%s: %d target position(s) hit by more than one lifted variant",
			ds.Name, stats.TargetCollisions)
	}
	return out, stats
}

// recognizedChroms is the post-lift whitelist: autosomes 1-22 plus X, Y
// and M, all in normalized form.
var recognizedChroms = func() map[string]struct{} {
	m := map[string]struct{}{}
	for i := 1; i <= 22; i++ {
		m[variant.NormalizeChrom(strconv.Itoa(i))] = struct{}{}
	}
	for _, c := range []string{"X", "Y", "M"} {
		m[variant.NormalizeChrom(c)] = struct{}{}
	}
	return m
}()

func recognizedChrom(chrom string) bool {
	_, ok := recognizedChroms[chrom]
	return ok
}
