// Package pedigree reconstructs family trios from the outputs of an
// external relationship-inference engine (KING): either its
// semi-structured console log, or its .kin/.kin0 kinship tables.
package pedigree

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Entry is one detected parent-offspring trio. Entries are keyed by
// SampleID; FamilyID defaults to "NA" when the log carries no enclosing
// family header.
type Entry struct {
	FamilyID string
	SampleID string
	FatherID string
	MotherID string
}

var (
	// familyRE matches a family header line, e.g. "Family KING1:". The
	// colon is required: the engine also emits prose lines starting with
	// "Family" ("Family relationships are ..."), which are not headers.
	familyRE = regexp.MustCompile(`^Family\s+(\S+):`)
	// trioRE matches the parenthesized trio group on an info line. The
	// engine's P field denotes the father and O the mother; this mapping
	// mirrors the observed log format, not the field initials. If the
	// engine ever swaps them, fix it here.
	trioRE = regexp.MustCompile(`\(P=([^,()]+), O=([^,()]+), R=([^()]+)\)`)
)

// ParseLog scans the full text of a relationship-inference log and
// returns one Entry per parseable parent statement, in encounter order.
//
// A non-header line containing the literal substring "father" marks a
// parent statement; the trio data lives on the line directly above it
// (a structural property of the log format). That info line must carry a
// "(P=<father>, O=<mother>, R=<code>)" group and names the offspring in
// its first token. Parent-statement lines whose info line does not
// parse are skipped and counted, never fatal. The family ID of a trio
// is the most recent family header at or above its info line.
func ParseLog(r io.Reader) ([]Entry, int, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "relationship log")
	}

	// Forward pass: family[i] is the most recent header value at or
	// before line i, so each trio's backward scan is a single lookup.
	family := make([]string, len(lines))
	current := "NA"
	for i, line := range lines {
		if m := familyRE.FindStringSubmatch(line); m != nil {
			current = m[1]
		}
		family[i] = current
	}

	var entries []Entry
	skipped := 0
	for i, line := range lines {
		// A header is never a parent statement, even when the family
		// token itself contains "father".
		if familyRE.MatchString(line) {
			continue
		}
		if !strings.Contains(line, "father") {
			continue
		}
		if i == 0 {
			skipped++
			continue
		}
		info := lines[i-1]
		m := trioRE.FindStringSubmatch(info)
		fields := strings.Fields(info)
		if m == nil || len(fields) == 0 {
			skipped++
			continue
		}
		entries = append(entries, Entry{
			FamilyID: family[i-1],
			SampleID: fields[0],
			FatherID: m[1],
			MotherID: m[2],
		})
	}
	if skipped > 0 {
		log.Printf("relationship log: skipped %d unparseable parent statement(s)", skipped)
	}
	return entries, skipped, nil
}

// WriteTable writes entries as the pedigree output table, one row per
// trio under a fixed (FamilyID, SampleID, FatherID, MotherID) header.
func WriteTable(w io.Writer, entries []Entry) error {
	out := tsv.NewWriter(w)
	out.WriteString("FamilyID\tSampleID\tFatherID\tMotherID")
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, e := range entries {
		out.WriteString(e.FamilyID)
		out.WriteString(e.SampleID)
		out.WriteString(e.FatherID)
		out.WriteString(e.MotherID)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
