package pedigree

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func parseLines(t *testing.T, lines ...string) ([]Entry, int) {
	t.Helper()
	entries, skipped, err := ParseLog(strings.NewReader(strings.Join(lines, "\n")))
	expect.NoError(t, err)
	return entries, skipped
}

func TestParseLogSingleTrio(t *testing.T) {
	entries, skipped := parseLines(t,
		"Family KING1:",
		"ID1 ID2 (P=S2, O=S3, R=PO)",
		"  is inferred to have father ID2",
	)
	expect.EQ(t, skipped, 0)
	expect.EQ(t, entries, []Entry{
		{FamilyID: "KING1", SampleID: "ID1", FatherID: "S2", MotherID: "S3"},
	})
}

func TestParseLogNoFamilyHeader(t *testing.T) {
	entries, _ := parseLines(t,
		"ID1 ID2 (P=S2, O=S3, R=PO)",
		"line mentioning father",
		"ID4 ID5 (P=S6, O=S7, R=PO)",
		"another father line",
	)
	expect.EQ(t, len(entries), 2)
	for _, e := range entries {
		expect.EQ(t, e.FamilyID, "NA")
	}
}

func TestParseLogHeaderScopes(t *testing.T) {
	entries, _ := parseLines(t,
		"ID0 IDx (P=F0, O=M0, R=PO)",
		"father statement before any header",
		"Family FAM_A:",
		"noise line",
		"ID1 IDx (P=F1, O=M1, R=PO)",
		"father statement",
		"Family FAM_B:",
		"ID2 IDy (P=F2, O=M2, R=PO)",
		"father statement",
	)
	expect.EQ(t, len(entries), 3)
	expect.EQ(t, entries[0].FamilyID, "NA")
	expect.EQ(t, entries[1].FamilyID, "FAM_A")
	expect.EQ(t, entries[2].FamilyID, "FAM_B")
}

func TestParseLogProseFamilyLineIsNotHeader(t *testing.T) {
	// The engine emits chatter starting with "Family" but only real
	// headers carry the trailing colon.
	entries, skipped := parseLines(t,
		"Family relationships were inferred from the data",
		"ID1 ID2 (P=S2, O=S3, R=PO)",
		"  is inferred to have father ID2",
	)
	expect.EQ(t, skipped, 0)
	expect.EQ(t, entries, []Entry{
		{FamilyID: "NA", SampleID: "ID1", FatherID: "S2", MotherID: "S3"},
	})
}

func TestParseLogHeaderMentioningFatherIsNotParentStatement(t *testing.T) {
	// A header whose family token contains "father" must not consume
	// the info line of the preceding trio.
	entries, skipped := parseLines(t,
		"ID1 ID2 (P=S2, O=S3, R=PO)",
		"  is inferred to have father ID2",
		"ID4 ID5 (P=S6, O=S7, R=PO)",
		"Family FATHERS1:",
		"ID8 ID9 (P=S10, O=S11, R=PO)",
		"  is inferred to have father ID9",
	)
	expect.EQ(t, skipped, 0)
	expect.EQ(t, entries, []Entry{
		{FamilyID: "NA", SampleID: "ID1", FatherID: "S2", MotherID: "S3"},
		{FamilyID: "FATHERS1", SampleID: "ID8", FatherID: "S10", MotherID: "S11"},
	})
}

func TestParseLogMalformedInfoLineSkipped(t *testing.T) {
	entries, skipped := parseLines(t,
		"Family F1:",
		"ID1 has parents but no group here",
		"father statement",
		"ID2 IDx (P=F2, O=M2, R=PO)",
		"father statement",
	)
	expect.EQ(t, skipped, 1)
	expect.EQ(t, entries, []Entry{
		{FamilyID: "F1", SampleID: "ID2", FatherID: "F2", MotherID: "M2"},
	})
}

func TestParseLogFatherOnFirstLine(t *testing.T) {
	// No look-back line exists; the statement is unparseable.
	entries, skipped := parseLines(t, "father statement with no info line above")
	expect.EQ(t, len(entries), 0)
	expect.EQ(t, skipped, 1)
}

func TestParseLogOrderPreserved(t *testing.T) {
	entries, _ := parseLines(t,
		"Family F:",
		"B IDx (P=FB, O=MB, R=PO)",
		"father",
		"A IDy (P=FA, O=MA, R=PO)",
		"father",
	)
	expect.EQ(t, len(entries), 2)
	expect.EQ(t, entries[0].SampleID, "B")
	expect.EQ(t, entries[1].SampleID, "A")
}

func TestParseLogEmpty(t *testing.T) {
	entries, skipped := parseLines(t)
	expect.EQ(t, len(entries), 0)
	expect.EQ(t, skipped, 0)
}

func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	err := WriteTable(&sb, []Entry{
		{FamilyID: "KING1", SampleID: "ID1", FatherID: "S2", MotherID: "S3"},
	})
	expect.NoError(t, err)
	expect.EQ(t, sb.String(),
		"FamilyID\tSampleID\tFatherID\tMotherID\nKING1\tID1\tS2\tS3\n")
}
