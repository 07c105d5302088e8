package variant

import (
	"strconv"
	"strings"
)

// Variant describes one genotyped site as reported by the genotype
// storage engine. A Variant is immutable once constructed; translating
// it to another genome build produces a new Variant.
type Variant struct {
	// ID is the variant identifier assigned by the source dataset
	// (e.g. an rsID, or an engine-generated "chr:pos" token). It plays
	// no role in variant identity across datasets.
	ID string
	// Chrom is the normalized chromosome name, always in prefixed form
	// ("chr7"). Use NormalizeChrom to produce it.
	Chrom string
	// Pos is the 1-based position on Chrom.
	Pos int
	// A1 and A2 are the two alleles as reported by the source dataset.
	A1, A2 string
}

// NormalizeChrom converts a raw chromosome token to its canonical
// prefixed form: any leading "chr" (case-insensitive) is stripped and a
// single lowercase "chr" prefix is re-applied, so "7", "chr7" and "CHR7"
// all yield "chr7". The mitochondrial aliases "MT"/"mt" fold to "chrM".
func NormalizeChrom(tok string) string {
	c := tok
	if len(c) >= 3 && strings.EqualFold(c[:3], "chr") {
		c = c[3:]
	}
	if strings.EqualFold(c, "MT") {
		c = "M"
	}
	return "chr" + c
}

// Key builds the build-independent canonical key for a site. Two rows
// with equal keys denote the same physical/allelic site regardless of
// which dataset they came from or what ID that dataset assigned.
func Key(chrom string, pos int, a1, a2 string) string {
	var b strings.Builder
	b.Grow(len(chrom) + len(a1) + len(a2) + 16)
	b.WriteString(NormalizeChrom(chrom))
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(pos))
	b.WriteByte('_')
	b.WriteString(a1)
	b.WriteByte('_')
	b.WriteString(a2)
	return b.String()
}

// Key returns the canonical key of v.
func (v Variant) Key() string {
	return Key(v.Chrom, v.Pos, v.A1, v.A2)
}

// PosKey returns the allele-independent position key ("chr7_123"). It
// is coarser than Key: variants with different alleles at one position
// share a PosKey. The duplicate-position resolver groups by it.
func (v Variant) PosKey() string {
	return NormalizeChrom(v.Chrom) + "_" + strconv.Itoa(v.Pos)
}

// Dataset is one input collection of variants plus its sample list.
// Datasets are never mutated in place; filtering operations return new
// Dataset values.
type Dataset struct {
	Name     string
	Variants []Variant
	Samples  []string
}

// Keys returns the canonical keys of all variants in ds, in dataset
// order.
func (ds Dataset) Keys() []string {
	keys := make([]string, len(ds.Variants))
	for i, v := range ds.Variants {
		keys[i] = v.Key()
	}
	return keys
}

// Filter returns a new Dataset containing only the variants for which
// keep returns true. The receiver is left untouched.
func (ds Dataset) Filter(keep func(Variant) bool) Dataset {
	out := Dataset{Name: ds.Name, Samples: ds.Samples}
	for _, v := range ds.Variants {
		if keep(v) {
			out.Variants = append(out.Variants, v)
		}
	}
	return out
}
