// Package ancestry joins the two tables produced by an external
// ancestry-inference engine - per-sample PCA coordinates and per-sample
// ancestry labels - into one wide result table.
package ancestry

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Row is one joined output row: a sample's identifier, its first K
// principal-component coordinates, and its ancestry label. Samples
// without a label never become Rows (inner join).
type Row struct {
	SampleID string
	PCs      []float64
	Label    string
}

// ReadLabels reads the ancestry-label table: a header row to skip, then
// (sampleID, label) rows. Later duplicates of a sample ID overwrite
// earlier ones.
func ReadLabels(r io.Reader) (map[string]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	labels := map[string]string{}
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		labels[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "ancestry label table")
	}
	return labels, nil
}

// Assemble joins the PCA coordinate table against labels, keeping the
// first numPCs coordinate columns of each row. The join is driven by
// the PCA rows: a PCA row whose sample has no label is dropped
// (expected attrition), and labeled samples absent from the PCA table
// never appear. Rows with too few columns or unparseable coordinates
// are skipped and counted. The PCA table's own header row is discarded;
// the output header is synthesized by WriteTable.
func Assemble(pca io.Reader, labels map[string]string, numPCs int) ([]Row, int, error) {
	scanner := bufio.NewScanner(pca)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	var rows []Row
	skipped := 0
	unlabeled := 0
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 1+numPCs {
			skipped++
			continue
		}
		label, ok := labels[fields[0]]
		if !ok {
			unlabeled++
			continue
		}
		pcs := make([]float64, numPCs)
		bad := false
		for i := 0; i < numPCs; i++ {
			v, err := strconv.ParseFloat(fields[1+i], 64)
			if err != nil {
				bad = true
				break
			}
			pcs[i] = v
		}
		if bad {
			skipped++
			continue
		}
		rows = append(rows, Row{SampleID: fields[0], PCs: pcs, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "pca table")
	}
	if skipped > 0 {
		log.Printf("pca table: skipped %d malformed row(s)", skipped)
	}
	if unlabeled > 0 {
		log.Debug.Printf("pca table: dropped %d sample(s) without an ancestry label", unlabeled)
	}
	return rows, skipped, nil
}
