package main

/*
geno-trios extracts family trios from the outputs of a KING
relationship-inference run.

Two modes:

  1. -log: parse KING's console log, reconstructing one
     (FamilyID, SampleID, FatherID, MotherID) row per parent statement.

  2. -kin/-kin0 plus -sexcheck: infer trios from the kinship tables:
     children with exactly two unrelated, opposite-sex parents.

-assign-families replaces missing family IDs by dense-ranking parent
pairs, so full siblings land in the same family.
*/

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/genotools/genomerge/pedigree"
)

var (
	logPath        = flag.String("log", "", "Relationship-inference log to parse; this xor -kin/-kin0 required")
	kinPath        = flag.String("kin", "", "KING .kin table (within-family pairs)")
	kin0Path       = flag.String("kin0", "", "KING .kin0 table (across-family pairs)")
	sexPath        = flag.String("sexcheck", "", "Genotype-inferred sex table (IID, SNPSEX columns); required with -kin/-kin0")
	assignFamilies = flag.Bool("assign-families", false, "Assign FamilyIDs by dense-ranking parent pairs")
	out            = flag.String("out", "trios.tsv", "Output pedigree table path")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func parseLogMode() []pedigree.Entry {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, *logPath)
	if err != nil {
		log.Fatalf("open %s: %v", *logPath, err)
	}
	entries, _, err := pedigree.ParseLog(in.Reader(ctx))
	if err != nil {
		log.Fatalf("parse %s: %v", *logPath, err)
	}
	if err := in.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", *logPath, err)
	}
	return entries
}

func readKin(path string) []pedigree.KinPair {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close() // nolint: errcheck
	pairs, err := pedigree.ReadKinTable(f)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return pairs
}

func inferMode() []pedigree.Entry {
	if *sexPath == "" {
		log.Fatalf("-sexcheck is required with -kin/-kin0")
	}
	// KING writes .kin, .kin0, or both; concatenate whatever exists.
	kin := append(readKin(*kinPath), readKin(*kin0Path)...)
	if len(kin) == 0 {
		log.Fatalf("no related pairs found in %s %s", *kinPath, *kin0Path)
	}
	f, err := os.Open(*sexPath)
	if err != nil {
		log.Fatalf("open %s: %v", *sexPath, err)
	}
	defer f.Close() // nolint: errcheck
	sex, err := pedigree.ReadSexTable(f)
	if err != nil {
		log.Fatalf("read %s: %v", *sexPath, err)
	}
	return pedigree.InferTrios(kin, sex)
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	logMode := *logPath != ""
	inferEnabled := *kinPath != "" || *kin0Path != ""
	if logMode == inferEnabled {
		log.Fatalf("exactly one of -log or -kin/-kin0 must be given")
	}

	var entries []pedigree.Entry
	if logMode {
		entries = parseLogMode()
	} else {
		entries = inferMode()
	}
	if *assignFamilies {
		entries = pedigree.AssignFamilies(entries)
	}

	ctx := vcontext.Background()
	dst, err := file.Create(ctx, *out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	var w io.Writer = dst.Writer(ctx)
	if err := pedigree.WriteTable(w, entries); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	if err := dst.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", *out, err)
	}
	log.Printf("wrote %d trio(s) to %s", len(entries), *out)
}
