package strassoc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// the four leading identity columns of FAM and covariate files
var identityCols = []string{"FID", "IID", "Father_ID", "Mother_ID"}

// Sample is one phenotyped individual, keyed by FID_IID to match the
// sample naming in the VCF
type Sample struct {
	FID string
	IID string

	// 1=male, 2=female, 0=unknown. Only set when loaded from a FAM file
	Sex int

	// 0/1 after remapping the 1/2 input coding
	Phenotype int

	// covariate values, aligned with Cohort.CovarNames
	Covars []float64
}

// Key is the FID_IID composite identifier
func (s *Sample) Key() string {
	return s.FID + "_" + s.IID
}

// Cohort is the joined phenotype/covariate table for all samples that
// survived filtering
type Cohort struct {
	Samples    []*Sample
	CovarNames []string
}

// LoadFam loads phenotypes from a six-column FAM file
// (FID IID Father_ID Mother_ID sex phenotype). Samples with the missing
// phenotype code are dropped. When sex will be used as a covariate,
// samples with unknown sex (0) are dropped too
func LoadFam(fname, missing string, sex bool) (*Cohort, error) {
	rows, err := readWhitespaceTable(fname)
	if err != nil {
		return nil, err
	}

	cohort := &Cohort{}
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("%s:%d: expected 6 columns, got %d", fname, i+1, len(row))
		}
		if row[5] == missing {
			continue
		}
		sexCode, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad sex code %q", fname, i+1, row[4])
		}
		if sex && sexCode == 0 {
			continue
		}
		pheno, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad phenotype %q", fname, i+1, row[5])
		}
		cohort.Samples = append(cohort.Samples, &Sample{
			FID:       row[0],
			IID:       row[1],
			Sex:       sexCode,
			Phenotype: pheno - 1, // convert to 0/1
		})
	}

	return cohort, nil
}

// LoadPheno loads phenotypes from a generic whitespace-delimited
// phenotype file: FID and IID from the first two columns and the
// phenotype from column mpheno+2 (1-based)
func LoadPheno(fname, missing string, mpheno int) (*Cohort, error) {
	rows, err := readWhitespaceTable(fname)
	if err != nil {
		return nil, err
	}

	col := mpheno + 1 // 0-based index of column mpheno+2
	cohort := &Cohort{}
	for i, row := range rows {
		if len(row) <= col {
			return nil, fmt.Errorf("%s:%d: no phenotype column %d", fname, i+1, col+1)
		}
		if row[col] == missing {
			continue
		}
		pheno, err := strconv.Atoi(row[col])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad phenotype %q", fname, i+1, row[col])
		}
		cohort.Samples = append(cohort.Samples, &Sample{
			FID:       row[0],
			IID:       row[1],
			Phenotype: pheno - 1, // convert to 0/1
		})
	}

	return cohort, nil
}

// UseSexCovariate appends the FAM sex code to every sample's
// covariates
func (c *Cohort) UseSexCovariate() {
	for _, s := range c.Samples {
		s.Covars = append(s.Covars, float64(s.Sex))
	}
	c.CovarNames = append(c.CovarNames, "sex")
}

// AddCovars joins the selected columns of a whitespace-delimited
// covariates file onto the cohort by (FID, IID). Samples without a
// covariate row are dropped (inner join)
func (c *Cohort) AddCovars(fname string, sel CovarSelection) error {
	rows, err := readWhitespaceTable(fname)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: empty covariates file", fname)
	}

	names, cols, rows, err := resolveCovarColumns(fname, sel, rows)
	if err != nil {
		return err
	}

	values := make(map[string][]float64, len(rows))
	for i, row := range rows {
		covars := make([]float64, len(cols))
		for j, col := range cols {
			if len(row) <= col {
				return fmt.Errorf("%s:%d: no column %d", fname, i+1, col+1)
			}
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return fmt.Errorf("%s:%d: bad covariate value %q", fname, i+1, row[col])
			}
			covars[j] = v
		}
		values[row[0]+"_"+row[1]] = covars
	}

	kept := c.Samples[:0]
	for _, s := range c.Samples {
		covars, ok := values[s.Key()]
		if !ok {
			continue
		}
		s.Covars = append(s.Covars, covars...)
		kept = append(kept, s)
	}
	c.Samples = kept
	c.CovarNames = append(c.CovarNames, names...)

	return nil
}

// resolveCovarColumns maps a CovarSelection to concrete column names
// and 0-based indexes, stripping the header row when one is present
func resolveCovarColumns(fname string, sel CovarSelection, rows [][]string) (names []string, cols []int, data [][]string, err error) {
	hasHeader := len(rows[0]) > 0 && rows[0][0] == identityCols[0]

	switch sel.Mode {
	case CovarByName:
		if !hasHeader {
			return nil, nil, nil, fmt.Errorf("%s: --covar-name needs a header row starting with FID", fname)
		}
		for _, name := range sel.Names {
			col := -1
			for i, h := range rows[0] {
				if h == name {
					col = i
					break
				}
			}
			if col < 0 {
				return nil, nil, nil, fmt.Errorf("%s: no covariate column named %q", fname, name)
			}
			names = append(names, name)
			cols = append(cols, col)
		}
		return names, cols, rows[1:], nil

	case CovarByNumber:
		for _, n := range sel.Numbers {
			names = append(names, "C"+strconv.Itoa(n))
			cols = append(cols, n-1)
		}
		if hasHeader {
			rows = rows[1:]
		}
		return names, cols, rows, nil

	default: // every column after the identity columns
		width := len(rows[0])
		for col := len(identityCols); col < width; col++ {
			if hasHeader {
				names = append(names, rows[0][col])
			} else {
				names = append(names, "C"+strconv.Itoa(col+1))
			}
			cols = append(cols, col)
		}
		if hasHeader {
			rows = rows[1:]
		}
		return names, cols, rows, nil
	}
}

// Restrict applies an include (inner join) or exclude (anti-join)
// sample list. List files have two columns, FID and IID, separated by
// whitespace or a comma
func (c *Cohort) Restrict(fname string, include bool) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	listed := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return fmt.Errorf("%s:%d: expected FID and IID", fname, line)
		}
		listed[fields[0]+"_"+fields[1]] = true
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	kept := c.Samples[:0]
	for _, s := range c.Samples {
		if listed[s.Key()] == include {
			kept = append(kept, s)
		}
	}
	c.Samples = kept

	return nil
}

// readWhitespaceTable reads a flat file into rows of
// whitespace-delimited fields, skipping blank lines
func readWhitespaceTable(fname string) ([][]string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}
