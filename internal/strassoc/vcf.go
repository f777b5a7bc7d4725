package strassoc

import (
	"bufio"
	"io"
	"os"

	"github.com/carbocation/vcfgo"
	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
)

// RecordSource streams variant records from a VCF, optionally
// restricted to a single region. Gzipped input is detected by its
// magic bytes, not by file name
type RecordSource struct {
	rdr    *vcfgo.Reader
	region *Region

	// whether a region-restricted stream has already reached records
	// inside the region; used to stop early once past it
	entered bool
	done    bool

	file *os.File
	gzip *pgzip.Reader
}

// OpenVCF opens the VCF at path for streaming
func OpenVCF(path string, region *Region) (*RecordSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src := &RecordSource{region: region, file: f}

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, err
		}
		src.gzip = gz
		r = gz
	}

	rdr, err := vcfgo.NewReader(r, false)
	if err != nil {
		src.Close()
		return nil, err
	}
	src.rdr = rdr

	return src, nil
}

// Samples returns the sample names from the VCF header, in header
// order
func (s *RecordSource) Samples() []string {
	return s.rdr.Header.SampleNames
}

// Next returns the next record, or nil when the stream (or the
// requested region, assuming a coordinate-sorted VCF) is exhausted.
// Malformed-record errors are logged and do not stop the stream
func (s *RecordSource) Next() *vcfgo.Variant {
	for !s.done {
		variant := s.rdr.Read()
		if err := s.rdr.Error(); err != nil {
			log.Debugf("vcf parse: %v", err)
			s.rdr.Clear()
		}
		if variant == nil {
			s.done = true
			break
		}
		if s.region == nil {
			return variant
		}
		if s.region.Contains(variant.Chrom(), variant.Pos) {
			s.entered = true
			return variant
		}
		if s.entered {
			// sorted input: once past the region nothing else matches
			s.done = true
			break
		}
	}
	return nil
}

// Close releases the underlying file handles
func (s *RecordSource) Close() error {
	if s.gzip != nil {
		s.gzip.Close()
	}
	return s.file.Close()
}
