package merge

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// PlinkEngine drives PLINK 1.9 as the external genotype engine. Every
// method shells out once and fails fast: a non-zero exit aborts the
// whole pipeline run before any downstream table is written.
type PlinkEngine struct {
	// Path is the plink executable. Empty means "plink" on $PATH.
	Path string
	// Workers and MemoryMB parameterize every invocation (--threads,
	// --memory). They come from Opts, never from ambient detection here.
	Workers  int
	MemoryMB int
}

// NewPlinkEngine verifies that the plink executable is reachable and
// returns an engine bound to it. A missing tool is fatal to the caller:
// there is no degraded mode.
func NewPlinkEngine(path string, opts Opts) (*PlinkEngine, error) {
	if path == "" {
		path = "plink"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, errors.E(err, "plink not found; install it or load the module")
	}
	return &PlinkEngine{Path: resolved, Workers: opts.Workers, MemoryMB: opts.MemoryMB}, nil
}

func (e *PlinkEngine) run(ctx context.Context, args ...string) error {
	args = append(args,
		"--threads", strconv.Itoa(e.Workers),
		"--memory", strconv.Itoa(e.MemoryMB))
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	log.Debug.Printf("exec: %s %v", e.Path, args)
	if err := cmd.Run(); err != nil {
		return errors.E(err, "plink", args[0], args[1])
	}
	return nil
}

// VariantTable implements Engine. PLINK's .bim already holds the five
// needed fields; this rewrites them into (chrom, pos, a1, a2, id) order.
func (e *PlinkEngine) VariantTable(ctx context.Context, prefix, outPath string) error {
	// .bim columns: chrom, id, morgans, pos, a1, a2.
	return rewriteColumns(prefix+".bim", outPath, []int{0, 3, 4, 5, 1})
}

// Missingness implements Engine via --missing; the (originalID,
// missingnessFraction) table is cut from the resulting .lmiss.
func (e *PlinkEngine) Missingness(ctx context.Context, prefix, outPath string) error {
	out := trimExt(outPath)
	if err := e.run(ctx, "--bfile", prefix, "--missing", "--out", out); err != nil {
		return err
	}
	// .lmiss columns: chrom, id, n_miss, n_geno, f_miss.
	return rewriteColumns(out+".lmiss", outPath, []int{1, 4})
}

// Rename implements Engine via --update-name.
func (e *PlinkEngine) Rename(ctx context.Context, prefix, updatePath, outPrefix string) error {
	return e.run(ctx, "--bfile", prefix, "--update-name", updatePath,
		"--make-bed", "--out", outPrefix)
}

// Exclude implements Engine via --exclude.
func (e *PlinkEngine) Exclude(ctx context.Context, prefix, listPath, outPrefix string) error {
	return e.run(ctx, "--bfile", prefix, "--exclude", listPath,
		"--make-bed", "--out", outPrefix)
}

// Extract implements Engine via --extract.
func (e *PlinkEngine) Extract(ctx context.Context, prefix, listPath, outPrefix string) error {
	return e.run(ctx, "--bfile", prefix, "--extract", listPath,
		"--make-bed", "--out", outPrefix)
}

// Merge implements Engine via --merge-list.
func (e *PlinkEngine) Merge(ctx context.Context, anchor string, rest []string, outPrefix string) error {
	listPath := outPrefix + ".mergelist"
	f, err := os.Create(listPath)
	if err != nil {
		return err
	}
	for _, p := range rest {
		if _, err := f.WriteString(p + "\n"); err != nil {
			f.Close() // nolint: errcheck
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	return e.run(ctx, "--bfile", anchor, "--merge-list", listPath,
		"--make-bed", "--out", outPrefix)
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
