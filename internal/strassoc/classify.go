package strassoc

import "github.com/carbocation/vcfgo"

// VariantClass is the inferred status of a record
type VariantClass int

const (
	// ClassSTR marks a short tandem repeat; the default when
	// inference is off
	ClassSTR VariantClass = iota

	// ClassSNP marks a single-base substitution
	ClassSNP

	// ClassSkip marks a record that is neither: a non-SNP whose
	// reference allele is too short to be an STR, presumed a short
	// indel. Skipped records produce no output rows at all
	ClassSkip
)

// Classify infers whether a record should be tested as a SNP or an
// STR. Without inference every record is treated as an STR
func Classify(v *vcfgo.Variant, infer bool, minSTRLength int) VariantClass {
	if !infer {
		return ClassSTR
	}
	alt := v.Alt()
	if len(v.Ref()) == 1 && len(alt) == 1 && len(alt[0]) == 1 {
		return ClassSNP
	}
	if len(v.Ref()) < minSTRLength {
		return ClassSkip
	}
	return ClassSTR
}
