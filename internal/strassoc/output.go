package strassoc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// the fixed association table columns
var outputHeader = []string{"chrom", "start", "type", "p-val", "coef", "maf", "N"}

// Writer emits the tab-separated association table, flushing after
// every row so partial results survive an interrupted run
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer emitting to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Header writes the column header row
func (w *Writer) Header() error {
	for i, col := range outputHeader {
		if i > 0 {
			w.w.WriteByte('\t')
		}
		w.w.WriteString(col)
	}
	w.w.WriteByte('\n')
	return w.w.Flush()
}

// Row writes one association result. A nil result writes nothing:
// skipped tests leave no trace in the output table
func (w *Writer) Row(chrom string, start uint64, assocType string, a *Assoc) error {
	if a == nil {
		return nil
	}
	fmt.Fprintf(w.w, "%s\t%d\t%s\t%s\t%s\t%s\t%d\n",
		chrom, start, assocType,
		formatFloat(a.PVal), formatFloat(a.Coef), formatFloat(a.MAF), a.N)
	return w.w.Flush()
}

// AssocType labels a test: SNP, STR, STR-alt-<i> for the i'th
// (1-based) alternate allele, or STR-length-<L> for an allele length
func AssocType(class VariantClass, alt, altLength int) string {
	if class == ClassSNP {
		return "SNP"
	}
	if alt > 0 {
		return fmt.Sprintf("STR-alt-%d", alt)
	}
	if altLength > 0 {
		return fmt.Sprintf("STR-length-%d", altLength)
	}
	return "STR"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
