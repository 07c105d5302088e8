package main

/*
geno-ancestry joins the PCA coordinate table and the ancestry-label
table produced by an ancestry-inference run into one wide result table:
SampleID, PC1..PCK, Ancestry. Samples missing from either table are
dropped (inner join, driven by the PCA rows).
*/

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/genotools/genomerge/ancestry"
)

var (
	pcaPath    = flag.String("pca", "", "PCA coordinate table (header row, sample ID first column); required")
	labelsPath = flag.String("labels", "", "Ancestry-label table (header row, sample ID and label columns); required")
	numPCs     = flag.Int("pcs", 10, "Number of PC columns to retain")
	format     = flag.String("format", "tsv", "Output format; 'tsv' and 'tsv-bgz' supported")
	out        = flag.String("out", "ancestry.tsv", "Output table path")
)

func usage() {
	fmt.Printf("Usage: %s -pca PATH -labels PATH [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *pcaPath == "" || *labelsPath == "" {
		log.Fatalf("-pca and -labels are required")
	}
	var bgzip bool
	switch *format {
	case "tsv":
	case "tsv-bgz":
		bgzip = true
	default:
		log.Fatalf("unsupported -format %q", *format)
	}
	if *numPCs < 1 {
		log.Fatalf("-pcs must be at least 1")
	}

	ctx := vcontext.Background()
	labelsFile, err := file.Open(ctx, *labelsPath)
	if err != nil {
		log.Fatalf("open %s: %v", *labelsPath, err)
	}
	labels, err := ancestry.ReadLabels(labelsFile.Reader(ctx))
	if err != nil {
		log.Fatalf("read %s: %v", *labelsPath, err)
	}
	if err := labelsFile.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", *labelsPath, err)
	}

	pcaFile, err := file.Open(ctx, *pcaPath)
	if err != nil {
		log.Fatalf("open %s: %v", *pcaPath, err)
	}
	rows, _, err := ancestry.Assemble(pcaFile.Reader(ctx), labels, *numPCs)
	if err != nil {
		log.Fatalf("assemble: %v", err)
	}
	if err := pcaFile.Close(ctx); err != nil {
		log.Fatalf("close %s: %v", *pcaPath, err)
	}

	if err := ancestry.WriteTableFile(ctx, *out, rows, *numPCs, bgzip, runtime.NumCPU()); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %d joined sample(s) to %s", len(rows), *out)
}
