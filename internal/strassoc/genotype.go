package strassoc

import (
	"sort"

	"github.com/carbocation/vcfgo"
)

// Encoding selects how a genotype call becomes one scalar per sample
type Encoding struct {
	snp       bool
	altIndex  int // 1-based call allele number, 0 when unset
	altLength int // target alternate allele length, 0 when unset
}

// SNPDosage encodes the non-reference allele dosage (0/1/2): the sum
// of the call's allele indices
func SNPDosage() Encoding {
	return Encoding{snp: true}
}

// STRLengthSum encodes the summed lengths of the called alternate
// alleles; reference alleles contribute nothing
func STRLengthSum() Encoding {
	return Encoding{}
}

// STRByAllele encodes a bi-allelic collapse against the alt'th call
// allele (1-based): the count of call alleles equal to alt
func STRByAllele(alt int) Encoding {
	return Encoding{altIndex: alt}
}

// STRByLength encodes a bi-allelic collapse against an allele length:
// the count of called alternate alleles of exactly that length
func STRByLength(length int) Encoding {
	return Encoding{altLength: length}
}

// encodeCall turns one sample's genotype call into a scalar. ok is
// false for missing or malformed calls; those samples are left out of
// the test
func encodeCall(gt []int, alts []string, enc Encoding) (float64, bool) {
	if len(gt) == 0 {
		return 0, false
	}

	sum := 0
	for _, allele := range gt {
		if allele < 0 || allele > len(alts) {
			return 0, false
		}
		switch {
		case enc.snp:
			sum += allele
		case enc.altIndex > 0:
			if allele == enc.altIndex {
				sum++
			}
		case enc.altLength > 0:
			if allele > 0 && len(alts[allele-1]) == enc.altLength {
				sum++
			}
		default:
			if allele > 0 {
				sum += len(alts[allele-1])
			}
		}
	}

	return float64(sum), true
}

// LoadGT extracts encoded genotypes from a record for the cohort
// samples in order. Samples absent from the record, or with a missing
// call, are omitted; the returned slices stay aligned with each other
func LoadGT(v *vcfgo.Variant, order []*Sample, vcfIndex map[string]int, enc Encoding) ([]float64, []*Sample) {
	alts := v.Alt()
	gts := make([]float64, 0, len(order))
	kept := make([]*Sample, 0, len(order))

	for _, s := range order {
		col, ok := vcfIndex[s.Key()]
		if !ok || col >= len(v.Samples) || v.Samples[col] == nil {
			continue
		}
		value, ok := encodeCall(v.Samples[col].GT, alts, enc)
		if !ok {
			continue
		}
		gts = append(gts, value)
		kept = append(kept, s)
	}

	return gts, kept
}

// altLengths returns the distinct alternate allele lengths of a
// record in ascending order
func altLengths(alts []string) []int {
	seen := make(map[int]bool)
	var lengths []int
	for _, alt := range alts {
		if !seen[len(alt)] {
			seen[len(alt)] = true
			lengths = append(lengths, len(alt))
		}
	}
	sort.Ints(lengths)
	return lengths
}
