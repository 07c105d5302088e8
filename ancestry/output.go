package ancestry

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// WriteTable writes the joined ancestry table: a synthesized
// (SampleID, PC1..PCK, Ancestry) header, then one row per sample.
func WriteTable(w io.Writer, rows []Row, numPCs int) error {
	out := tsv.NewWriter(w)
	header := make([]string, 0, numPCs+2)
	header = append(header, "SampleID")
	for i := 1; i <= numPCs; i++ {
		header = append(header, "PC"+strconv.Itoa(i))
	}
	header = append(header, "Ancestry")
	out.WriteString(strings.Join(header, "\t"))
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, row := range rows {
		out.WriteString(row.SampleID)
		for _, pc := range row.PCs {
			out.WriteString(strconv.FormatFloat(pc, 'g', -1, 64))
		}
		out.WriteString(row.Label)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteTableFile writes the joined table to path, block-gzipped when
// bgzip is set (path should then carry a .gz suffix).
func WriteTableFile(ctx context.Context, path string, rows []Row, numPCs int, bgzip bool, parallelism int) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	if !bgzip {
		return WriteTable(dst.Writer(ctx), rows, numPCs)
	}
	bgzfWriter := bgzf.NewWriter(dst.Writer(ctx), parallelism)
	if err = WriteTable(bgzfWriter, rows, numPCs); err != nil {
		return
	}
	return bgzfWriter.Close()
}
