// Package merge sequences genotype-dataset harmonization: per-dataset
// canonicalization, optional build lifting and duplicate resolution,
// the cross-dataset intersection, and the final merge performed by an
// external genotype engine. The engine does all genotype matrix
// computation; this package prepares its inputs and interprets its
// outputs.
package merge

import (
	"context"
	"io"
	"io/ioutil"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/genotools/genomerge/dedup"
	"github.com/genotools/genomerge/intersect"
	"github.com/genotools/genomerge/liftover"
	"github.com/genotools/genomerge/variant"
)

// Opts configures a merge run. Ambient resources (core count, memory)
// are detected by the caller and passed in here; nothing in this
// package reads the environment.
type Opts struct {
	// Workers is the thread count handed to external engine invocations.
	Workers int
	// MemoryMB is the memory budget handed to external engine invocations.
	MemoryMB int
	// TempDir is where intermediate tables and renamed dataset copies are
	// written. Empty means os.TempDir().
	TempDir string
}

// DefaultOpts holds the default values for Opts.
var DefaultOpts = Opts{
	Workers:  1,
	MemoryMB: 2048,
}

// Input names one dataset to merge. LiftPath, when non-empty, points at
// the externally produced lift mapping table that translates this
// dataset's coordinates to the batch's target build.
type Input struct {
	// Prefix is the engine-side dataset prefix (e.g. a PLINK bfile prefix).
	Prefix string
	// Name labels the dataset in logs and table names.
	Name string
	// LiftPath is the lift mapping table for this dataset, or "".
	LiftPath string
}

// Engine is the external genotype-analysis engine boundary. Every call
// is an opaque, atomic, blocking step; a returned error is fatal to the
// whole run (no partial outputs are written after one).
type Engine interface {
	// VariantTable writes prefix's variant metadata table, rows of
	// (chromosome, position, allele1, allele2, originalID), to outPath.
	VariantTable(ctx context.Context, prefix, outPath string) error
	// Missingness writes prefix's per-variant missingness table, rows of
	// (originalID, missingnessFraction), to outPath.
	Missingness(ctx context.Context, prefix, outPath string) error
	// Rename applies an (originalID, canonicalKey) update table,
	// producing a renamed dataset at outPrefix.
	Rename(ctx context.Context, prefix, updatePath, outPrefix string) error
	// Exclude drops the variants listed (by ID, one per line) in
	// listPath, producing outPrefix.
	Exclude(ctx context.Context, prefix, listPath, outPrefix string) error
	// Extract keeps only the variants listed (by ID, one per line) in
	// listPath, producing outPrefix.
	Extract(ctx context.Context, prefix, listPath, outPrefix string) error
	// Merge merges anchor with rest into outPrefix.
	Merge(ctx context.Context, anchor string, rest []string, outPrefix string) error
}

// prepared is one dataset after the per-dataset stage: its in-memory
// canonicalized variant set and the engine-side prefix now holding it.
type prepared struct {
	ds     variant.Dataset
	prefix string
}

// Run harmonizes the inputs and merges them into outPrefix. The first
// input anchors the batch: intersection order follows its variant
// order. The per-dataset stage (canonicalize, lift, resolve duplicates)
// runs datasets in parallel; datasets share no mutable state, so the
// only synchronization is collecting results before the intersection.
func Run(ctx context.Context, engine Engine, inputs []Input, outPrefix string, opts Opts) error {
	if len(inputs) < 2 {
		return errors.E("merge: need at least two datasets")
	}
	tempDir, err := ioutil.TempDir(opts.TempDir, "genomerge")
	if err != nil {
		return err
	}

	// One job per dataset: datasets share no mutable state, and batches
	// are small (a handful of genotyping arrays).
	names := datasetNames(inputs)
	results := make([]prepared, len(inputs))
	err = traverse.Each(len(inputs), func(i int) error {
		r, err := prepareDataset(ctx, engine, inputs[i], names[i], tempDir, opts)
		if err != nil {
			return errors.E(err, "dataset", names[i])
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return err
	}

	batch := intersect.Batch{Anchor: results[0].ds}
	for _, r := range results[1:] {
		batch.Rest = append(batch.Rest, r.ds)
	}
	keys := intersect.Keys(batch)
	log.Printf("intersection across %d datasets: %d variant(s)", len(inputs), len(keys))
	if len(keys) == 0 {
		// A zero-variant intersection is a normal (empty) result here;
		// the engine's merge is where it becomes fatal.
		log.Error.Printf("no variants shared by all datasets; downstream merge will fail")
	}
	selPath := filepath.Join(tempDir, "intersection.keys")
	if err := writeFile(ctx, selPath, func(w io.Writer) error {
		return intersect.WriteSelection(w, keys)
	}); err != nil {
		return err
	}

	prefixes := make([]string, len(results))
	for i, r := range results {
		extracted := filepath.Join(tempDir, r.ds.Name+".common")
		if err := engine.Extract(ctx, r.prefix, selPath, extracted); err != nil {
			return errors.E(err, "extract", r.ds.Name)
		}
		prefixes[i] = extracted
	}
	if err := engine.Merge(ctx, prefixes[0], prefixes[1:], outPrefix); err != nil {
		return errors.E(err, "merge")
	}
	return nil
}

// datasetNames derives one unique name per input. Names label temp
// tables and engine-side dataset copies, so two inputs must never share
// one: an explicit Input.Name is taken as given, an empty one falls
// back to the prefix basename, and a basename already taken by an
// earlier input is disambiguated with the input's ordinal.
func datasetNames(inputs []Input) []string {
	names := make([]string, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = filepath.Base(in.Prefix)
		}
		if seen[name] {
			name += "." + strconv.Itoa(i+1)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// prepareDataset runs the per-dataset stage for one input: read and
// canonicalize the variant table, lift builds if requested, resolve
// duplicate positions, then rename variants engine-side to canonical
// keys. The missingness computation only runs when position collisions
// actually exist; it is costly and usually unnecessary.
func prepareDataset(ctx context.Context, engine Engine, in Input, name, tempDir string, opts Opts) (prepared, error) {
	tablePath := filepath.Join(tempDir, name+".variants")
	if err := engine.VariantTable(ctx, in.Prefix, tablePath); err != nil {
		return prepared{}, err
	}
	ds, _, err := variant.OpenTable(ctx, tablePath, name)
	if err != nil {
		return prepared{}, err
	}

	if in.LiftPath != "" {
		table, _, err := liftover.Open(ctx, in.LiftPath)
		if err != nil {
			return prepared{}, err
		}
		var stats liftover.Stats
		ds, stats = liftover.Apply(ds, table)
		log.Printf("%s: lifted %d variant(s), %d unmapped, %d off-contig",
			name, stats.Lifted, stats.Unmapped, stats.OffContig)
	}

	// Duplicate-position resolution runs before the rename: the exclusion
	// list speaks original IDs, which the rename erases.
	prefix := in.Prefix
	if dedup.HasCollisions(ds) {
		missPath := filepath.Join(tempDir, name+".fmiss")
		if err := engine.Missingness(ctx, prefix, missPath); err != nil {
			return prepared{}, err
		}
		quality, err := readMissingness(ctx, missPath)
		if err != nil {
			return prepared{}, err
		}
		excluded := dedup.Exclusions(ds, quality)
		log.Printf("%s: excluding %d duplicate-position variant(s)", name, len(excluded))
		exclPath := filepath.Join(tempDir, name+".exclude")
		if err := writeFile(ctx, exclPath, func(w io.Writer) error {
			return dedup.WriteExclusions(w, excluded)
		}); err != nil {
			return prepared{}, err
		}
		deduped := filepath.Join(tempDir, name+".dedup")
		if err := engine.Exclude(ctx, prefix, exclPath, deduped); err != nil {
			return prepared{}, err
		}
		prefix = deduped

		drop := make(map[string]struct{}, len(excluded))
		for _, id := range excluded {
			drop[id] = struct{}{}
		}
		ds = ds.Filter(func(v variant.Variant) bool {
			_, ok := drop[v.ID]
			return !ok
		})
	}

	updatePath := filepath.Join(tempDir, name+".update")
	if err := writeFile(ctx, updatePath, func(w io.Writer) error {
		return variant.WriteUpdateTable(w, variant.UpdateTable(ds))
	}); err != nil {
		return prepared{}, err
	}
	renamed := filepath.Join(tempDir, name+".canonical")
	if err := engine.Rename(ctx, prefix, updatePath, renamed); err != nil {
		return prepared{}, err
	}
	return prepared{ds: ds, prefix: renamed}, nil
}

func readMissingness(ctx context.Context, path string) (quality map[string]float64, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	return dedup.ReadMissingness(in.Reader(ctx))
}

func writeFile(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return write(out.Writer(ctx))
}
