package liftover

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/genotools/genomerge/variant"
)

const liftTableText = "chr7\t100\tchr7\t150\trs1\tA\tG\n" +
	"chr7\t200\tchr7_alt_scaffold\t90\trs2\tC\tT\n" +
	"chrX\t300\tchrX\t300\trs3\tG\tT\n" +
	"chr1\tbogus\tchr1\t10\trs4\tA\tC\n"

func TestReadTable(t *testing.T) {
	table, skipped, err := ReadTable(strings.NewReader(liftTableText))
	expect.NoError(t, err)
	expect.EQ(t, skipped, 1)
	expect.EQ(t, len(table), 3)
	rec, ok := table[recordKey("7", 100, "rs1")]
	expect.True(t, ok)
	expect.EQ(t, rec.DstPos, 150)
}

func TestReadTableFirstRowWins(t *testing.T) {
	in := "chr7\t100\tchr7\t150\trs1\tA\tG\n" +
		"chr7\t100\tchr7\t151\trs1\tA\tG\n"
	table, _, err := ReadTable(strings.NewReader(in))
	expect.NoError(t, err)
	expect.EQ(t, len(table), 1)
	expect.EQ(t, table[recordKey("chr7", 100, "rs1")].DstPos, 150)
}

func TestApply(t *testing.T) {
	table, _, err := ReadTable(strings.NewReader(liftTableText))
	expect.NoError(t, err)
	ds := variant.Dataset{Name: "d", Variants: []variant.Variant{
		{ID: "rs1", Chrom: "chr7", Pos: 100, A1: "A", A2: "G"},
		{ID: "rs2", Chrom: "chr7", Pos: 200, A1: "C", A2: "T"}, // lifts off-contig: dropped
		{ID: "rs3", Chrom: "chrX", Pos: 300, A1: "G", A2: "T"},
		{ID: "rs9", Chrom: "chr9", Pos: 999, A1: "A", A2: "C"}, // unmapped: dropped
	}}
	lifted, stats := Apply(ds, table)
	expect.EQ(t, stats, Stats{Lifted: 2, Unmapped: 1, OffContig: 1})
	expect.EQ(t, len(lifted.Variants), 2)

	// rs1 moved, so its canonical key must differ from the source key.
	expect.EQ(t, lifted.Variants[0].Key(), "chr7_150_A_G")
	expect.True(t, lifted.Variants[0].Key() != ds.Variants[0].Key())
	// rs3's target position equals its source position; key unchanged.
	expect.EQ(t, lifted.Variants[1].Key(), ds.Variants[2].Key())

	// Source dataset untouched.
	expect.EQ(t, len(ds.Variants), 4)
}

func TestApplyChromWhitelist(t *testing.T) {
	for _, c := range []string{"chr1", "chr22", "chrX", "chrY", "chrM"} {
		expect.True(t, recognizedChrom(c))
	}
	for _, c := range []string{"chr23", "chr7_alt_scaffold", "chrUn_gl000220", "chr0"} {
		expect.False(t, recognizedChrom(c))
	}
}

func TestApplyTargetCollisions(t *testing.T) {
	in := "chr1\t10\tchr1\t500\trsA\tA\tG\n" +
		"chr1\t20\tchr1\t500\trsB\tC\tT\n" +
		"chr1\t30\tchr1\t600\trsC\tG\tT\n"
	table, _, err := ReadTable(strings.NewReader(in))
	expect.NoError(t, err)
	ds := variant.Dataset{Name: "d", Variants: []variant.Variant{
		{ID: "rsA", Chrom: "chr1", Pos: 10, A1: "A", A2: "G"},
		{ID: "rsB", Chrom: "chr1", Pos: 20, A1: "C", A2: "T"},
		{ID: "rsC", Chrom: "chr1", Pos: 30, A1: "G", A2: "T"},
	}}
	_, stats := Apply(ds, table)
	expect.EQ(t, stats.TargetCollisions, 1)
}

func TestApplyMT(t *testing.T) {
	// Lift engines often emit "MT"; it must fold into the recognized set.
	in := "chrM\t5\tMT\t5\trsM\tA\tG\n"
	table, _, err := ReadTable(strings.NewReader(in))
	expect.NoError(t, err)
	ds := variant.Dataset{Name: "d", Variants: []variant.Variant{
		{ID: "rsM", Chrom: "chrM", Pos: 5, A1: "A", A2: "G"},
	}}
	lifted, stats := Apply(ds, table)
	expect.EQ(t, stats.Lifted, 1)
	expect.EQ(t, lifted.Variants[0].Chrom, "chrM")
}
