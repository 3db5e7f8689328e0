package medicamentsparser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/giygas/pharmacie-api/logging"
)

// Specialite is the part of a CIS_bdpm.txt row the catalog uses.
type Specialite struct {
	Cis                  int
	Denomination         string
	FormePharmaceutique  string
	EtatComercialisation string
}

// ParseStats counts what ParseSpecialites skipped.
type ParseStats struct {
	Lines          int
	EmptyLines     int
	MissingColumns int
	FormatErrors   int
}

// ParseSpecialites reads the tab separated specialties file. Rows with fewer
// than 12 columns or a non-numeric CIS are skipped and counted.
func ParseSpecialites(r io.Reader) ([]Specialite, ParseStats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1*1024*1024)

	var (
		records []Specialite
		stats   ParseStats
	)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")

		if len(line) == 0 {
			stats.EmptyLines++
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 12 {
			stats.MissingColumns++
			continue
		}

		cis, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			stats.FormatErrors++
			continue
		}

		records = append(records, Specialite{
			Cis:                  cis,
			Denomination:         strings.TrimSpace(fields[1]),
			FormePharmaceutique:  strings.TrimSpace(fields[2]),
			EtatComercialisation: strings.TrimSpace(fields[6]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanner error: %w", err)
	}

	if stats.EmptyLines > 0 || stats.MissingColumns > 0 || stats.FormatErrors > 0 {
		logging.Info("CIS_bdpm.txt skip statistics",
			"empty_lines", stats.EmptyLines,
			"missing_columns", stats.MissingColumns,
			"format_errors", stats.FormatErrors,
			"total_lines", stats.Lines,
			"records_parsed", len(records))
	}
	return records, stats, nil
}

var dosageRegex = regexp.MustCompile(
	`(?i)\d+(?:[.,]\d+)?\s*(?:(?:mg|g|µg|μg|mcg|ml|ui)\b|%)(?:\s*/\s*\d*(?:[.,]\d+)?\s*(?:ml|g|dose|mg)\b)?`)

// SplitDenomination turns "DOLIPRANE 500 mg, comprimé" into name "DOLIPRANE"
// and dosage "500 mg". The part after the last comma is the form and is dropped.
func SplitDenomination(denomination string) (nom, dosage string) {
	head := denomination
	if i := strings.LastIndex(head, ","); i >= 0 {
		head = head[:i]
	}
	head = strings.TrimSpace(head)

	loc := dosageRegex.FindStringIndex(head)
	if loc == nil {
		return head, ""
	}
	dosage = strings.TrimSpace(head[loc[0]:loc[1]])
	nom = strings.Join(strings.Fields(head[:loc[0]]+" "+head[loc[1]:]), " ")
	if nom == "" {
		nom = head
	}
	return nom, dosage
}

// Commercialised reports whether the specialty is currently on the market.
func (s Specialite) Commercialised() bool {
	return !strings.HasPrefix(strings.ToLower(s.EtatComercialisation), "non")
}
