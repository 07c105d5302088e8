package main

/*
geno-merge harmonizes two or more PLINK genotype datasets and merges
them into one. Variants are renamed to build-independent canonical keys,
optionally lifted to a common genome build, stripped of duplicate
positions (keeping the best-called variant at each), and reduced to the
set of sites every dataset shares before the engine-side merge runs.

The first positional prefix anchors the batch: the merged variant order
follows it.
*/

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/genotools/genomerge/merge"
)

var (
	out      = flag.String("out", "", "Output dataset prefix (required)")
	lift     = flag.String("lift", "", "Per-dataset lift mapping tables as prefix=path[,prefix=path...]; datasets without an entry are assumed to be on the target build already")
	plink    = flag.String("plink", "", "plink executable; defaults to 'plink' on $PATH")
	threads  = flag.Int("threads", 0, "Worker threads for engine invocations; 0 = runtime.NumCPU()")
	memoryMB = flag.Int("memory-mb", merge.DefaultOpts.MemoryMB, "Memory budget (MB) for engine invocations")
	tempDir  = flag.String("temp-dir", "", "Directory for intermediate tables (default os.TempDir())")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] prefix1 prefix2 [prefix3 ...]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func parseLiftArg(arg string) (map[string]string, error) {
	tables := map[string]string{}
	if arg == "" {
		return tables, nil
	}
	for _, pair := range strings.Split(arg, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			return nil, fmt.Errorf("malformed -lift entry %q; want prefix=path", pair)
		}
		tables[kv[0]] = kv[1]
	}
	return tables, nil
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	prefixes := flag.Args()
	if len(prefixes) < 2 {
		log.Fatalf("At least two dataset prefixes required; got %d", len(prefixes))
	}
	if *out == "" {
		log.Fatalf("-out is required")
	}
	liftTables, err := parseLiftArg(*lift)
	if err != nil {
		log.Fatalf("%v", err)
	}
	for prefix := range liftTables {
		found := false
		for _, p := range prefixes {
			if p == prefix {
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("-lift names unknown dataset prefix %q", prefix)
		}
	}

	opts := merge.DefaultOpts
	opts.Workers = *threads
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	opts.MemoryMB = *memoryMB
	opts.TempDir = *tempDir

	ctx := vcontext.Background()
	engine, err := merge.NewPlinkEngine(*plink, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	inputs := make([]merge.Input, len(prefixes))
	for i, prefix := range prefixes {
		inputs[i] = merge.Input{Prefix: prefix, LiftPath: liftTables[prefix]}
	}
	if err := merge.Run(ctx, engine, inputs, *out, opts); err != nil {
		log.Fatalf("merge failed: %v", err)
	}
	log.Printf("merged %d datasets into %s", len(prefixes), *out)
}
