package strassoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// a 12-sample case/control cohort. Phenotype codes 1/2 remap to 0/1:
// cases are s1 s3 s5 s7 s9 s12
const e2eFam = `KD s1 0 0 1 2
KD s2 0 0 2 1
KD s3 0 0 1 2
KD s4 0 0 2 1
KD s5 0 0 1 2
KD s6 0 0 2 1
KD s7 0 0 1 2
KD s8 0 0 2 1
KD s9 0 0 1 2
KD s10 0 0 2 1
KD s11 0 0 2 1
KD s12 0 0 1 2
`

var e2eSamples = []string{
	"KD_s1", "KD_s2", "KD_s3", "KD_s4", "KD_s5", "KD_s6",
	"KD_s7", "KD_s8", "KD_s9", "KD_s10", "KD_s11", "KD_s12",
}

var (
	// an STR with two alternate alleles of lengths 1 and 2
	e2eSTR = []string{"1", "100", "ACACACACAC", "A,AA",
		"0/1", "0/1", "0/2", "0/2", "1/2", "0/0", "0/0", "0/0", "0/0", "0/0", "0/1", "0/2"}

	// a bi-allelic SNP
	e2eSNP = []string{"1", "200", "A", "T",
		"0/1", "0/1", "0/0", "0/1", "0/0", "0/1", "0/0", "0/0", "1/1", "0/0", "0/1", "1/1"}

	// a short indel: too short for an STR, not a SNP
	e2eIndel = []string{"1", "300", "ACA", "A",
		"0/1", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0"}
)

// runPipeline runs the full pipeline into a temp output file and
// returns the emitted lines
func runPipeline(t *testing.T, records [][]string, mutate func(*Options)) []string {
	t.Helper()

	dir := t.TempDir()
	fam := filepath.Join(dir, "test.fam")
	if err := os.WriteFile(fam, []byte(e2eFam), 0644); err != nil {
		t.Fatal(err)
	}
	vcf := filepath.Join(dir, "test.vcf")
	if err := os.WriteFile(vcf, []byte(buildVCF(e2eSamples, records)), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "assoc.tab")

	opts := &Options{
		VCF:          vcf,
		Out:          out,
		Fam:          fam,
		MissingPheno: "-9",
		CaseControl:  true,
		MinMaf:       0.05,
		MinSTRLength: 8,
		MaxIter:      1000,
		Tol:          1e-8,
	}
	if mutate != nil {
		mutate(opts)
	}

	if err := Run(opts); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
}

func labels(lines []string) []string {
	var out []string
	for _, line := range lines[1:] {
		out = append(out, strings.Split(line, "\t")[2])
	}
	return out
}

func TestRun_strAlleleTests(t *testing.T) {
	lines := runPipeline(t, [][]string{e2eSTR}, func(o *Options) {
		o.AlleleTests = true
		o.AlleleTestsLength = true
	})

	want := []string{"STR", "STR-alt-1", "STR-alt-2", "STR-length-1", "STR-length-2"}
	got := labels(lines)
	if len(got) != len(want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}

	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			t.Fatalf("row %q has %d fields, want 7", line, len(fields))
		}
		if fields[0] != "1" || fields[1] != "100" {
			t.Errorf("row %q: wrong chrom/start", line)
		}
		if fields[6] != "12" {
			t.Errorf("row %q: N = %s, want 12", line, fields[6])
		}
	}

	// the primary STR test sums called alternate lengths: 12/(2*12)
	if maf := strings.Split(lines[1], "\t")[5]; maf != "0.5" {
		t.Errorf("primary STR maf = %s, want 0.5", maf)
	}
}

func TestRun_inferSNPSTR(t *testing.T) {
	lines := runPipeline(t, [][]string{e2eSTR, e2eSNP, e2eIndel}, func(o *Options) {
		o.InferSNPSTR = true
	})

	got := labels(lines)
	if len(got) != 2 || got[0] != "STR" || got[1] != "SNP" {
		t.Fatalf("labels = %v, want [STR SNP] (the indel must vanish entirely)", got)
	}
	if start := strings.Split(lines[2], "\t")[1]; start != "200" {
		t.Errorf("SNP row start = %s, want 200", start)
	}
}

func TestRun_region(t *testing.T) {
	lines := runPipeline(t, [][]string{e2eSTR, e2eSNP}, func(o *Options) {
		o.InferSNPSTR = true
		o.Region = &Region{Chrom: "1", Start: 150, End: 250}
	})

	got := labels(lines)
	if len(got) != 1 || got[0] != "SNP" {
		t.Fatalf("labels = %v, want only the SNP inside the region", got)
	}
}

func TestRun_lowMafRowsOmitted(t *testing.T) {
	// one carrier of a rare allele: maf 1/24 is below the 0.05 floor
	rare := []string{"1", "400", "A", "T",
		"0/1", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0", "0/0"}
	lines := runPipeline(t, [][]string{rare}, func(o *Options) {
		o.InferSNPSTR = true
	})

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want only the header:\n%s", len(lines), strings.Join(lines, "\n"))
	}
}

func TestRun_linearStubEmitsNothing(t *testing.T) {
	lines := runPipeline(t, [][]string{e2eSTR, e2eSNP}, func(o *Options) {
		o.CaseControl = false
	})

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want only the header:\n%s", len(lines), strings.Join(lines, "\n"))
	}
}

func TestRun_outFileHonored(t *testing.T) {
	dir := t.TempDir()
	fam := filepath.Join(dir, "test.fam")
	if err := os.WriteFile(fam, []byte(e2eFam), 0644); err != nil {
		t.Fatal(err)
	}
	vcf := filepath.Join(dir, "test.vcf")
	if err := os.WriteFile(vcf, []byte(buildVCF(e2eSamples, [][]string{e2eSNP})), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "assoc.tab")

	opts := &Options{
		VCF:          vcf,
		Out:          out,
		Fam:          fam,
		MissingPheno: "-9",
		CaseControl:  true,
		InferSNPSTR:  true,
		MinMaf:       0.05,
		MinSTRLength: 8,
		MaxIter:      1000,
		Tol:          1e-8,
	}
	if err := Run(opts); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.HasPrefix(string(contents), "chrom\tstart\ttype") {
		t.Errorf("output file missing header:\n%s", contents)
	}
}
