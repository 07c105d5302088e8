package variant

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Variant metadata table columns, in file order.
const (
	colChrom int = iota
	colPos
	colA1
	colA2
	colID
	numCols
)

// ReadTable reads one dataset's variant metadata table: one row per
// variant, columns (chromosome, position, allele1, allele2, originalID),
// whitespace-separated. Rows whose position does not parse as an
// integer, and rows with too few columns, are skipped and counted, not
// fatal; skipped counts the number of such rows.
func ReadTable(r io.Reader, name string) (ds Dataset, skipped int, err error) {
	ds.Name = name
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < numCols {
			skipped++
			continue
		}
		pos, perr := strconv.Atoi(fields[colPos])
		if perr != nil || pos < 1 {
			skipped++
			continue
		}
		ds.Variants = append(ds.Variants, Variant{
			ID:    fields[colID],
			Chrom: NormalizeChrom(fields[colChrom]),
			Pos:   pos,
			A1:    fields[colA1],
			A2:    fields[colA2],
		})
	}
	if err = scanner.Err(); err != nil {
		return Dataset{}, 0, errors.Wrapf(err, "variant table %s", name)
	}
	if skipped > 0 {
		log.Printf("%s: skipped %d malformed variant row(s)", name, skipped)
	}
	return ds, skipped, nil
}

// OpenTable reads the variant metadata table at path.
func OpenTable(ctx context.Context, path, name string) (ds Dataset, skipped int, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return Dataset{}, 0, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	return ReadTable(in.Reader(ctx), name)
}

// UpdatePair is one (originalID, canonicalKey) renaming instruction for
// the external genotype engine.
type UpdatePair struct {
	ID  string
	Key string
}

// UpdateTable builds the variant-ID update table for ds: each variant's
// original ID paired with its canonical key, in dataset order. When
// several rows collapse to one canonical key, only the first-encountered
// pair is retained; later rows are an intentional first-wins dedup, not
// an error.
func UpdateTable(ds Dataset) []UpdatePair {
	seen := make(map[string]struct{}, len(ds.Variants))
	pairs := make([]UpdatePair, 0, len(ds.Variants))
	for _, v := range ds.Variants {
		key := v.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pairs = append(pairs, UpdatePair{ID: v.ID, Key: key})
	}
	return pairs
}

// WriteUpdateTable writes pairs as the two-column (originalID,
// canonicalKey) table consumed by the engine's rename step.
func WriteUpdateTable(w io.Writer, pairs []UpdatePair) error {
	out := tsv.NewWriter(w)
	for _, p := range pairs {
		out.WriteString(p.ID)
		out.WriteString(p.Key)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
