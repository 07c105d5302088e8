package intersect

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/genotools/genomerge/variant"
)

// ds builds a dataset from "chrom:pos" site tokens; all sites share the
// A/G alleles, so positions alone distinguish keys.
func ds(name string, sites ...string) variant.Dataset {
	d := variant.Dataset{Name: name}
	for _, s := range sites {
		parts := strings.Split(s, ":")
		pos, err := strconv.Atoi(parts[1])
		if err != nil {
			panic(err)
		}
		d.Variants = append(d.Variants, variant.Variant{
			ID: s, Chrom: parts[0], Pos: pos, A1: "A", A2: "G",
		})
	}
	return d
}

func TestKeysAnchorOrder(t *testing.T) {
	b := Batch{
		Anchor: ds("a", "7:300", "7:100", "7:200"),
		Rest: []variant.Dataset{
			ds("b", "7:100", "7:300", "7:999"),
			ds("c", "7:300", "7:100", "7:200"),
		},
	}
	expect.EQ(t, Keys(b), []string{"chr7_300_A_G", "chr7_100_A_G"})
}

func TestKeysContentCommutative(t *testing.T) {
	d1 := ds("a", "1:1", "1:2", "1:3")
	d2 := ds("b", "1:3", "1:1")
	d3 := ds("c", "1:1", "1:3", "1:4")

	first := Keys(Batch{Anchor: d1, Rest: []variant.Dataset{d2, d3}})
	second := Keys(Batch{Anchor: d3, Rest: []variant.Dataset{d1, d2}})
	sort.Strings(first)
	sort.Strings(second)
	expect.EQ(t, first, second)
}

func TestKeysEmptyDatasetAnnihilates(t *testing.T) {
	b := Batch{
		Anchor: ds("a", "1:1", "1:2"),
		Rest:   []variant.Dataset{ds("empty"), ds("c", "1:1")},
	}
	keys := Keys(b)
	expect.EQ(t, len(keys), 0)
	expect.True(t, keys != nil)
}

func TestKeysEmptyAnchor(t *testing.T) {
	b := Batch{Anchor: ds("a"), Rest: []variant.Dataset{ds("b", "1:1")}}
	expect.EQ(t, len(Keys(b)), 0)
}

func TestKeysAnchorDuplicatesCollapse(t *testing.T) {
	b := Batch{
		Anchor: ds("a", "1:1", "1:1", "1:2"),
		Rest:   []variant.Dataset{ds("b", "1:1", "1:2")},
	}
	expect.EQ(t, Keys(b), []string{"chr1_1_A_G", "chr1_2_A_G"})
}

func TestKeysPrefixInsensitive(t *testing.T) {
	// "7" and "chr7" spellings converge on the same canonical keys.
	b := Batch{
		Anchor: ds("a", "7:100"),
		Rest:   []variant.Dataset{ds("b", "chr7:100")},
	}
	expect.EQ(t, Keys(b), []string{"chr7_100_A_G"})
}

func TestWriteSelection(t *testing.T) {
	var sb strings.Builder
	expect.NoError(t, WriteSelection(&sb, []string{"chr1_1_A_G", "chr1_2_A_G"}))
	expect.EQ(t, sb.String(), "chr1_1_A_G\nchr1_2_A_G\n")
}
