package dataset

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Columns names the header cells of the statistics file.
type Columns struct {
	Department string `yaml:"department"`
	Year       string `yaml:"year"`
	Class      string `yaml:"class"`
	Facts      string `yaml:"facts"`
	Rate       string `yaml:"rate"`
	Region     string `yaml:"region"`
	Unit       string `yaml:"unit"`
	Population string `yaml:"population"`
	Housing    string `yaml:"housing"`
}

// DefaultColumns matches the data.gouv.fr departmental export.
func DefaultColumns() Columns {
	return Columns{
		Department: "Code.département",
		Year:       "annee",
		Class:      "classe",
		Facts:      "faits",
		Rate:       "tauxpourmille",
		Region:     "Code.région",
		Unit:       "unité.de.compte",
		Population: "POP",
		Housing:    "LOG",
	}
}

// StatisticsOptions controls how the statistics file is read.
type StatisticsOptions struct {
	Delimiter rune
	Columns   Columns
}

// DefaultStatisticsOptions returns semicolon-separated data.gouv.fr defaults.
func DefaultStatisticsOptions() StatisticsOptions {
	return StatisticsOptions{Delimiter: ';', Columns: DefaultColumns()}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadStatistics reads the delimited statistics file at path. Years are
// normalized to four digits and department codes to their canonical form here,
// once, so nothing downstream has to normalize again.
func LoadStatistics(path string, opts StatisticsOptions) ([]CrimeRecord, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	records, err := ParseStatistics(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}
	return records, nil
}

// ParseStatistics decodes an in-memory statistics table.
func ParseStatistics(data []byte, opts StatisticsOptions) ([]CrimeRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(opts.Delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read table: %w", df.Err)
	}

	cols := opts.Columns
	present := make(map[string]bool)
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, required := range []string{cols.Department, cols.Year, cols.Class, cols.Facts} {
		if !present[required] {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	column := func(name string) []string {
		if name == "" || !present[name] {
			return nil
		}
		return df.Col(name).Records()
	}
	depts := column(cols.Department)
	years := column(cols.Year)
	classes := column(cols.Class)
	facts := column(cols.Facts)
	rates := column(cols.Rate)
	regions := column(cols.Region)
	units := column(cols.Unit)
	pops := column(cols.Population)
	housing := column(cols.Housing)

	records := make([]CrimeRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		year, err := NormalizeYear(cell(years, i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		n, err := parseCount(cell(facts, i))
		if err != nil {
			return nil, fmt.Errorf("row %d: facts: %w", i+2, err)
		}
		rec := CrimeRecord{
			Department: NormalizeDepartment(cell(depts, i)),
			Year:       year,
			Class:      strings.TrimSpace(cell(classes, i)),
			Facts:      n,
			Rate:       parseNumber(cell(rates, i)),
			Region:     strings.TrimSpace(cell(regions, i)),
			Unit:       strings.TrimSpace(cell(units, i)),
		}
		if v := parseNumber(cell(pops, i)); !math.IsNaN(v) {
			rec.Population = int(v)
		}
		if v := parseNumber(cell(housing, i)); !math.IsNaN(v) {
			rec.Housing = int(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func cell(col []string, i int) string {
	if i >= len(col) {
		return ""
	}
	if isMissing(col[i]) {
		return ""
	}
	return col[i]
}

func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "<nil>":
		return true
	}
	return false
}

// parseNumber reads a French or English formatted number. Missing cells
// become NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseCount reads a fact count. A missing count is zero; anything else
// must be a non-negative whole number.
func parseCount(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	v := parseNumber(s)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("not a non-negative count: %q", s)
	}
	return int(v), nil
}
