package strassoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/vcfgo"
	"github.com/klauspost/pgzip"
)

// buildVCF assembles a minimal VCF document. Each record is
// [chrom, pos, ref, alts] followed by one GT call per sample
func buildVCF(samples []string, records [][]string) string {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.1\n")
	b.WriteString("##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n")
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	if len(samples) > 0 {
		b.WriteString("\tFORMAT")
		for _, s := range samples {
			b.WriteString("\t" + s)
		}
	}
	b.WriteString("\n")

	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%s\t%s\t.\t%s\t%s\t.\tPASS\t.", rec[0], rec[1], rec[2], rec[3]))
		if len(samples) > 0 {
			b.WriteString("\tGT")
			for _, gt := range rec[4:] {
				b.WriteString("\t" + gt)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// testVariant parses a one-record VCF and returns its variant. calls
// holds (sample name, GT) pairs in column order
func testVariant(t *testing.T, chrom string, pos int, ref string, alts []string, calls [][2]string) *vcfgo.Variant {
	t.Helper()

	var samples []string
	rec := []string{chrom, fmt.Sprint(pos), ref, strings.Join(alts, ",")}
	for _, call := range calls {
		samples = append(samples, call[0])
		rec = append(rec, call[1])
	}

	rdr, err := vcfgo.NewReader(strings.NewReader(buildVCF(samples, [][]string{rec})), false)
	if err != nil {
		t.Fatal(err)
	}
	v := rdr.Read()
	if v == nil {
		t.Fatalf("no variant parsed: %v", rdr.Error())
	}
	return v
}

func writeTestVCF(t *testing.T, contents string, gzipped bool) string {
	t.Helper()
	name := "test.vcf"
	if gzipped {
		name = "test.vcf.gz"
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if gzipped {
		gz := pgzip.NewWriter(f)
		if _, err := gz.Write([]byte(contents)); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := f.WriteString(contents); err != nil {
		t.Fatal(err)
	}
	return path
}

var streamRecords = [][]string{
	{"1", "100", "ACACACACAC", "ACACAC", "0/1", "0/0"},
	{"1", "200", "A", "T", "0/1", "1/1"},
	{"2", "300", "ACACACACAC", "ACAC", "0/0", "0/1"},
}

func TestRecordSource_stream(t *testing.T) {
	tests := []struct {
		name    string
		gzipped bool
	}{
		{"plain text", false},
		{"gzipped", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := buildVCF([]string{"F1_s1", "F1_s2"}, streamRecords)
			path := writeTestVCF(t, contents, tt.gzipped)

			src, err := OpenVCF(path, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()

			if got := src.Samples(); len(got) != 2 || got[0] != "F1_s1" || got[1] != "F1_s2" {
				t.Errorf("Samples() = %v, want [F1_s1 F1_s2]", got)
			}

			var positions []uint64
			for v := src.Next(); v != nil; v = src.Next() {
				positions = append(positions, v.Pos)
			}
			if len(positions) != 3 || positions[0] != 100 || positions[1] != 200 || positions[2] != 300 {
				t.Errorf("positions = %v, want [100 200 300]", positions)
			}
		})
	}
}

func TestRecordSource_region(t *testing.T) {
	tests := []struct {
		name   string
		region *Region
		want   []uint64
	}{
		{
			"span within a chromosome",
			&Region{Chrom: "1", Start: 150, End: 250},
			[]uint64{200},
		},
		{
			"whole chromosome",
			&Region{Chrom: "1"},
			[]uint64{100, 200},
		},
		{
			"second chromosome",
			&Region{Chrom: "2", Start: 1, End: 400},
			[]uint64{300},
		},
		{
			"no overlap",
			&Region{Chrom: "1", Start: 500, End: 600},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := buildVCF([]string{"F1_s1", "F1_s2"}, streamRecords)
			path := writeTestVCF(t, contents, false)

			src, err := OpenVCF(path, tt.region)
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()

			var positions []uint64
			for v := src.Next(); v != nil; v = src.Next() {
				positions = append(positions, v.Pos)
			}
			if len(positions) != len(tt.want) {
				t.Fatalf("positions = %v, want %v", positions, tt.want)
			}
			for i := range tt.want {
				if positions[i] != tt.want[i] {
					t.Errorf("positions = %v, want %v", positions, tt.want)
				}
			}
		})
	}
}
