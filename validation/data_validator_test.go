package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
)

func TestParseQuantiteStock(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		hasError bool
	}{
		{"120", 120, false},
		{" 0 ", 0, false},
		{"", 0, true},
		{"   ", 0, true},
		{"-1", 0, true},
		{"12.5", 0, true},
		{"douze", 0, true},
		{"1e3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuantiteStock(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestValidateMedicamentInput(t *testing.T) {
	v := NewDataValidator()

	t.Run("valid form is trimmed", func(t *testing.T) {
		m, err := v.ValidateMedicamentInput(interfaces.MedicamentInput{
			Nom: "  Doliprane ", Dosage: " 500 mg", Forme: "Comprimé ", QuantiteStock: "120",
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if m.Nom != "Doliprane" || m.Dosage != "500 mg" || m.Forme != "Comprimé" {
			t.Errorf("Expected trimmed fields, got %+v", m)
		}
		if m.QuantiteStock != 120 {
			t.Errorf("Expected stock 120, got %d", m.QuantiteStock)
		}
	})

	t.Run("every bad field is reported", func(t *testing.T) {
		_, err := v.ValidateMedicamentInput(interfaces.MedicamentInput{
			Nom: " ", Dosage: "", Forme: "", QuantiteStock: "abc",
		})
		if err == nil {
			t.Fatal("Expected error, got nil")
		}
		if !IsValidation(err) {
			t.Fatalf("Expected validation error, got %T", err)
		}

		fields := map[string]bool{}
		for _, fe := range Fields(err) {
			fields[fe.Field] = true
		}
		for _, f := range []string{"nom", "dosage", "forme", "quantiteStock"} {
			if !fields[f] {
				t.Errorf("Expected an error on %s, got %v", f, Fields(err))
			}
		}
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := v.ValidateMedicamentInput(interfaces.MedicamentInput{
			Nom: "Aspirine", Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: "-5",
		})
		fe := Fields(err)
		if len(fe) != 1 || fe[0].Field != "quantiteStock" {
			t.Errorf("Expected a single quantiteStock error, got %v", fe)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		_, err := v.ValidateMedicamentInput(interfaces.MedicamentInput{
			Nom: strings.Repeat("a", 201), Dosage: "1 g", Forme: "Gélule", QuantiteStock: "1",
		})
		fe := Fields(err)
		if len(fe) != 1 || fe[0].Field != "nom" {
			t.Errorf("Expected a single nom error, got %v", fe)
		}
	})
}

func TestValidateMedicament(t *testing.T) {
	v := NewDataValidator()

	if err := v.ValidateMedicament(nil); err == nil {
		t.Error("Expected error for nil medicament")
	}

	valid := &entities.Medicament{ID: "m001", Nom: "Doliprane", Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: 0}
	if err := v.ValidateMedicament(valid); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := &entities.Medicament{ID: "m001", Nom: "Doliprane", Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: -1}
	if err := v.ValidateMedicament(invalid); !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestValidateOrdonnance(t *testing.T) {
	v := NewDataValidator()

	valid := &entities.Ordonnance{
		PatientID:   "u222",
		MedecinName: "Dr Dupont",
		Medicaments: []entities.LigneMedicament{{NomMedicament: "Doliprane", QuantiteParJour: 2, Duree: 5}},
	}
	if err := v.ValidateOrdonnance(valid); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := &entities.Ordonnance{
		PatientID:   "u222",
		MedecinName: "Dr Dupont",
		Medicaments: []entities.LigneMedicament{{NomMedicament: " ", QuantiteParJour: 0, Duree: -1}},
	}
	fe := Fields(v.ValidateOrdonnance(invalid))
	if len(fe) != 3 {
		t.Fatalf("Expected 3 field errors, got %v", fe)
	}
	if fe[0].Field != "medicaments[0].nomMedicament" {
		t.Errorf("Expected medicaments[0].nomMedicament, got %s", fe[0].Field)
	}

	empty := &entities.Ordonnance{PatientID: "u222", MedecinName: "Dr Dupont"}
	if fe := Fields(v.ValidateOrdonnance(empty)); len(fe) != 1 || fe[0].Field != "medicaments" {
		t.Errorf("Expected a medicaments error, got %v", fe)
	}
}

func TestErrorsWrapping(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Fatal("Expected nil error for empty Errors")
	}
	errs.Add("nom", "requis")

	wrapped := errors.Join(errors.New("catalog"), errs.Err())
	if !IsValidation(wrapped) {
		t.Error("Expected IsValidation to see through wrapping")
	}
	if !strings.Contains(errs.Error(), "nom: requis") {
		t.Errorf("Unexpected message %q", errs.Error())
	}
}

func TestReportDataQuality(t *testing.T) {
	v := NewDataValidator()

	meds := []entities.Medicament{
		{ID: "m001", Nom: "Doliprane", QuantiteStock: 120},
		{ID: "m001", Nom: "Doliprane bis", QuantiteStock: 1},
		{ID: "m002", Nom: " doliprane", QuantiteStock: 5},
		{ID: "m003", Nom: "Aspirine", QuantiteStock: -2},
	}
	ords := []entities.Ordonnance{{ID: "o888"}, {ID: "o889"}}
	cmds := []entities.Commande{
		{ID: "c1", OrdonnanceID: "o888", Status: entities.StatutEnAttente,
			Medicaments: []entities.LigneMedicament{{NomMedicament: "Doliprane"}, {NomMedicament: "Ventoline"}}},
		{ID: "c2", OrdonnanceID: "o000", Status: "livree",
			Medicaments: []entities.LigneMedicament{{NomMedicament: "ventoline "}}},
	}

	report := v.ReportDataQuality(meds, ords, cmds)

	if !report.HasIssues() {
		t.Fatal("Expected issues")
	}
	check := func(name string, got, want []string) {
		t.Helper()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
	check("duplicate ids", report.DuplicateMedicamentIDs, []string{"m001"})
	check("ambiguous names", report.AmbiguousMedicamentNames, []string{" doliprane"})
	check("negative stock", report.NegativeStock, []string{"m003"})
	check("unknown status", report.CommandesUnknownStatus, []string{"c2"})
	check("converted", report.ConvertedOrdonnances, []string{"o888"})
	check("unmatched", report.UnmatchedLineNames, []string{"Ventoline"})
}

func TestReportDataQualityClean(t *testing.T) {
	report := NewDataValidator().ReportDataQuality(nil, nil, nil)
	if report.HasIssues() {
		t.Errorf("Expected no issues, got %+v", report)
	}
	if report.DuplicateMedicamentIDs == nil || report.UnmatchedLineNames == nil {
		t.Error("Expected empty slices, not nil")
	}
}

func TestValidateInput(t *testing.T) {
	v := NewDataValidator()

	tests := []struct {
		input    string
		hasError bool
	}{
		{"doliprane", false},
		{"Ibuprofène 400", false},
		{"AMOXICILLINE", false},
		{"", true},
		{"a", true},
		{strings.Repeat("x", 51), true},
		{"<script>alert(1)</script>", true},
		{"drop table users", true},
		{"un deux trois quatre cinq six sept", true},
		{"aaaaaaaaaaaaaaa", true},
		{"doli%prane", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := v.ValidateInput(tt.input)
			if tt.hasError && err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}
