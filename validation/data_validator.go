// Package validation checks forms and stored data for the pharmacie API.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/reconciliation"
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

var (
	// Input validation: alphanumeric + French accents + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'àâäéèêëïîôöùûüÿçÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇ]+$`)

	// Dangerous patterns as strings, strings.Contains is enough for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

const (
	maxNameLength   = 200
	maxDosageLength = 50
	maxFormeLength  = 100
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidatorImpl {
	return &DataValidatorImpl{}
}

// ParseQuantiteStock parses the stock field of the catalog form: a
// non-negative whole number, surrounding spaces allowed.
func ParseQuantiteStock(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("la quantité en stock est requise")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("la quantité en stock doit être un nombre entier")
	}
	if n < 0 {
		return 0, fmt.Errorf("la quantité en stock ne peut pas être négative")
	}
	return n, nil
}

// ValidateMedicamentInput checks the catalog form and returns the trimmed
// medication without an id. Every bad field is reported at once.
func (v *DataValidatorImpl) ValidateMedicamentInput(in interfaces.MedicamentInput) (entities.Medicament, error) {
	var errs Errors
	m := entities.Medicament{
		ID:     strings.TrimSpace(in.ID),
		Nom:    strings.TrimSpace(in.Nom),
		Dosage: strings.TrimSpace(in.Dosage),
		Forme:  strings.TrimSpace(in.Forme),
	}

	if m.Nom == "" {
		errs.Add("nom", "le nom est requis")
	}
	if m.Dosage == "" {
		errs.Add("dosage", "le dosage est requis")
	}
	if m.Forme == "" {
		errs.Add("forme", "la forme est requise")
	}
	if q, err := ParseQuantiteStock(in.QuantiteStock); err != nil {
		errs.Add("quantiteStock", err.Error())
	} else {
		m.QuantiteStock = q
	}

	if len(errs) == 0 {
		if err := v.ValidateMedicament(&m); err != nil {
			return entities.Medicament{}, err
		}
	}
	return m, errs.Err()
}

// ValidateMedicament checks a catalog entry before it is written
func (v *DataValidatorImpl) ValidateMedicament(m *entities.Medicament) error {
	if m == nil {
		return fmt.Errorf("medicament is nil")
	}

	var errs Errors
	switch {
	case strings.TrimSpace(m.Nom) == "":
		errs.Add("nom", "le nom est requis")
	case len(m.Nom) > maxNameLength:
		errs.Add("nom", fmt.Sprintf("le nom dépasse %d caractères", maxNameLength))
	}
	switch {
	case strings.TrimSpace(m.Dosage) == "":
		errs.Add("dosage", "le dosage est requis")
	case len(m.Dosage) > maxDosageLength:
		errs.Add("dosage", fmt.Sprintf("le dosage dépasse %d caractères", maxDosageLength))
	}
	switch {
	case strings.TrimSpace(m.Forme) == "":
		errs.Add("forme", "la forme est requise")
	case len(m.Forme) > maxFormeLength:
		errs.Add("forme", fmt.Sprintf("la forme dépasse %d caractères", maxFormeLength))
	}
	if m.QuantiteStock < 0 {
		errs.Add("quantiteStock", "la quantité en stock ne peut pas être négative")
	}
	return errs.Err()
}

// ValidateOrdonnance checks a prescription and its lines
func (v *DataValidatorImpl) ValidateOrdonnance(o *entities.Ordonnance) error {
	if o == nil {
		return fmt.Errorf("ordonnance is nil")
	}

	var errs Errors
	if strings.TrimSpace(o.PatientID) == "" {
		errs.Add("patientId", "le patient est requis")
	}
	if strings.TrimSpace(o.MedecinName) == "" {
		errs.Add("medecinName", "le médecin est requis")
	}
	if len(o.Medicaments) == 0 {
		errs.Add("medicaments", "au moins un médicament est requis")
	}
	for i, l := range o.Medicaments {
		field := fmt.Sprintf("medicaments[%d]", i)
		if strings.TrimSpace(l.NomMedicament) == "" {
			errs.Add(field+".nomMedicament", "le nom du médicament est requis")
		}
		if l.QuantiteParJour <= 0 {
			errs.Add(field+".quantiteParJour", "la quantité par jour doit être positive")
		}
		if l.Duree <= 0 {
			errs.Add(field+".duree", "la durée doit être positive")
		}
	}
	return errs.Err()
}

// ReportDataQuality generates a data quality report with all issues found
func (v *DataValidatorImpl) ReportDataQuality(
	medicaments []entities.Medicament,
	ordonnances []entities.Ordonnance,
	commandes []entities.Commande,
) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateMedicamentIDs:   []string{},
		AmbiguousMedicamentNames: []string{},
		NegativeStock:            []string{},
		CommandesUnknownStatus:   []string{},
		ConvertedOrdonnances:     []string{},
		UnmatchedLineNames:       []string{},
	}

	// Check 1: duplicate ids and negative stock
	ids := make(map[string]int)
	for _, m := range medicaments {
		ids[m.ID]++
		if ids[m.ID] == 2 {
			report.DuplicateMedicamentIDs = append(report.DuplicateMedicamentIDs, m.ID)
		}
		if m.QuantiteStock < 0 {
			report.NegativeStock = append(report.NegativeStock, m.ID)
		}
	}

	// Check 2: names that match more than one entry, only the first one is used
	names := make(map[string]int)
	for _, m := range medicaments {
		key := reconciliation.NormalizeName(m.Nom)
		names[key]++
		if names[key] == 2 {
			report.AmbiguousMedicamentNames = append(report.AmbiguousMedicamentNames, m.Nom)
		}
	}

	// Check 3: orders with a status outside the lifecycle
	for _, c := range commandes {
		if !c.Status.Valid() {
			report.CommandesUnknownStatus = append(report.CommandesUnknownStatus, c.ID)
		}
	}

	// Check 4: prescriptions still stored although an order was made from them
	converted := make(map[string]bool)
	for _, c := range commandes {
		converted[c.OrdonnanceID] = true
	}
	for _, o := range ordonnances {
		if converted[o.ID] {
			report.ConvertedOrdonnances = append(report.ConvertedOrdonnances, o.ID)
		}
	}

	// Check 5: order lines the catalog does not know
	index := reconciliation.Index(medicaments)
	seen := make(map[string]bool)
	for _, c := range commandes {
		for _, l := range c.Medicaments {
			key := reconciliation.NormalizeName(l.NomMedicament)
			if _, ok := index[key]; ok || seen[key] {
				continue
			}
			seen[key] = true
			report.UnmatchedLineNames = append(report.UnmatchedLineNames, l.NomMedicament)
		}
	}

	if report.HasIssues() {
		logging.Warn("Data quality issues detected",
			"duplicate_ids", len(report.DuplicateMedicamentIDs),
			"ambiguous_names", len(report.AmbiguousMedicamentNames),
			"negative_stock", len(report.NegativeStock),
			"unknown_status", len(report.CommandesUnknownStatus),
			"converted_ordonnances", len(report.ConvertedOrdonnances),
			"unmatched_lines", len(report.UnmatchedLineNames),
		)
	}

	return report
}

// ValidateInput validates user search input
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 2 {
		return fmt.Errorf("input too short: minimum 2 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus sign, and common French accented characters are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// hasExcessiveRepetition reports the same byte repeated more than 10 times in a row
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
