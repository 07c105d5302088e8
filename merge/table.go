package merge

import (
	"bufio"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
)

// rewriteColumns projects a whitespace-separated table at inPath into a
// tab-separated table at outPath containing only the columns named by
// cols, in that order. Rows too short to project are skipped: the
// engine's tables are ragged around headers and log chatter.
func rewriteColumns(inPath, outPath string, cols []int) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close() // nolint: errcheck
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	max := 0
	for _, c := range cols {
		if c > max {
			max = c
		}
	}
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	row := make([]string, len(cols))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= max {
			continue
		}
		for i, c := range cols {
			row[i] = fields[c]
		}
		if _, err := w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.E(err, "rewrite", inPath)
	}
	return w.Flush()
}
