package pedigree

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// KinPair is one related sample pair from a KING .kin/.kin0 table.
// Unrelated ("UN") rows are dropped at read time.
type KinPair struct {
	ID1     string
	ID2     string
	InfType string
}

// ReadKinTable reads a KING kinship table. The two KING output shapes
// (.kin and .kin0) differ in their leading family columns, so columns
// are located by header name; ID1, ID2 and InfType are required. Rows
// inferred as "UN" are not returned.
func ReadKinTable(r io.Reader) ([]KinPair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "kin table")
		}
		return nil, errors.New("kin table: empty file")
	}
	cols, err := headerIndex(scanner.Text(), "ID1", "ID2", "InfType")
	if err != nil {
		return nil, errors.Wrap(err, "kin table")
	}
	var pairs []KinPair
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= cols[2] {
			continue
		}
		p := KinPair{ID1: fields[cols[0]], ID2: fields[cols[1]], InfType: fields[cols[2]]}
		if p.InfType == "UN" {
			continue
		}
		pairs = append(pairs, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "kin table")
	}
	return pairs, nil
}

// ReadSexTable reads a genotype-inferred sex table (PLINK sexcheck
// output converted to tabular form) and returns SNPSEX by sample ID.
// Samples whose inferred sex is not an integer are omitted.
func ReadSexTable(r io.Reader) (map[string]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "sex table")
		}
		return nil, errors.New("sex table: empty file")
	}
	cols, err := headerIndex(scanner.Text(), "IID", "SNPSEX")
	if err != nil {
		return nil, errors.Wrap(err, "sex table")
	}
	sex := map[string]int{}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= cols[1] {
			continue
		}
		v, perr := strconv.Atoi(fields[cols[1]])
		if perr != nil {
			continue
		}
		sex[fields[cols[0]]] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "sex table")
	}
	return sex, nil
}

// headerIndex locates the named columns in a whitespace-separated
// header line.
func headerIndex(header string, names ...string) ([]int, error) {
	fields := strings.Fields(header)
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = -1
		for j, f := range fields {
			if f == name {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, errors.Errorf("missing column %q in header %q", name, header)
		}
	}
	return idx, nil
}

type pairKey struct{ a, b string }

// unorderedPair normalizes a sample pair so (a,b) and (b,a) collide.
func unorderedPair(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// InferTrios detects trios from kinship pairs and genotype-inferred
// sexes. A sample qualifies as a trio offspring when it has exactly two
// unique parent-offspring partners, the two partners are of opposite
// inferred sex, and the partners are not themselves related. The sex-1
// partner becomes the father, the sex-2 partner the mother. Resulting
// entries carry FamilyID "NA"; see AssignFamilies.
func InferTrios(kin []KinPair, sex map[string]int) []Entry {
	related := map[pairKey]struct{}{}
	parents := map[string][]string{}
	var children []string
	for _, p := range kin {
		related[unorderedPair(p.ID1, p.ID2)] = struct{}{}
		if p.InfType != "PO" {
			continue
		}
		// Both directions: either side of a PO pair may be the child.
		for _, d := range [2][2]string{{p.ID1, p.ID2}, {p.ID2, p.ID1}} {
			child, parent := d[0], d[1]
			if !contains(parents[child], parent) {
				if _, ok := parents[child]; !ok {
					children = append(children, child)
				}
				parents[child] = append(parents[child], parent)
			}
		}
	}

	var entries []Entry
	for _, child := range children {
		ps := parents[child]
		if len(ps) != 2 {
			continue
		}
		if sex[ps[0]]+sex[ps[1]] != 3 {
			continue
		}
		if _, ok := related[unorderedPair(ps[0], ps[1])]; ok {
			continue
		}
		father, mother := ps[0], ps[1]
		if sex[father] != 1 {
			father, mother = mother, father
		}
		entries = append(entries, Entry{
			FamilyID: "NA",
			SampleID: child,
			FatherID: father,
			MotherID: mother,
		})
	}
	return entries
}

// AssignFamilies replaces each entry's FamilyID with "Family<N>", where
// N dense-ranks the (FatherID, MotherID) pair: full siblings share a
// family, distinct parent pairs get distinct IDs. Input order is
// preserved; ranks follow the sorted order of parent pairs.
func AssignFamilies(entries []Entry) []Entry {
	keys := make([]string, 0, len(entries))
	seen := map[string]struct{}{}
	for _, e := range entries {
		k := e.FatherID + "_" + e.MotherID
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		rank[k] = i + 1
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.FamilyID = "Family" + strconv.Itoa(rank[e.FatherID+"_"+e.MotherID])
		out[i] = e
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
