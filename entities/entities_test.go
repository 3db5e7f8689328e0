package entities

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQuantiteNecessaire(t *testing.T) {
	tests := []struct {
		parJour, duree, want int
	}{
		{3, 7, 21},
		{2, 5, 10},
		{1, 1, 1},
		{4, 30, 120},
	}

	for _, tt := range tests {
		l := LigneMedicament{QuantiteParJour: tt.parJour, Duree: tt.duree}
		if got := l.QuantiteNecessaire(); got != tt.want {
			t.Errorf("Expected %d*%d = %d, got %d", tt.parJour, tt.duree, tt.want, got)
		}
	}
}

func TestCopyLignesIsIndependent(t *testing.T) {
	src := []LigneMedicament{{IDMedicament: "m001", NomMedicament: "Doliprane", QuantiteParJour: 2, Duree: 5}}
	dst := CopyLignes(src)

	dst[0].NomMedicament = "Changed"
	dst[0].QuantiteParJour = 9

	if src[0].NomMedicament != "Doliprane" || src[0].QuantiteParJour != 2 {
		t.Errorf("Source line was modified through the copy: %+v", src[0])
	}

	if CopyLignes(nil) != nil {
		t.Error("Expected nil copy of nil slice")
	}
}

func TestStatutLifecycle(t *testing.T) {
	if next, ok := StatutEnAttente.Next(); !ok || next != StatutEnPreparation {
		t.Errorf("Expected en_attente -> en_preparation, got %s (%v)", next, ok)
	}
	if next, ok := StatutEnPreparation.Next(); !ok || next != StatutPrete {
		t.Errorf("Expected en_preparation -> prete, got %s (%v)", next, ok)
	}
	if _, ok := StatutPrete.Next(); ok {
		t.Error("prete must be terminal")
	}

	illegal := [][2]Statut{
		{StatutEnAttente, StatutPrete},
		{StatutPrete, StatutEnAttente},
		{StatutPrete, StatutEnPreparation},
		{StatutEnPreparation, StatutEnAttente},
		{StatutEnAttente, StatutEnAttente},
	}
	for _, pair := range illegal {
		if pair[0].CanTransitionTo(pair[1]) {
			t.Errorf("Transition %s -> %s should be illegal", pair[0], pair[1])
		}
	}

	if Statut("annulee").Valid() {
		t.Error("Unknown status should not be valid")
	}
}

func TestUserPublicHidesPassword(t *testing.T) {
	u := User{ID: "u222", Email: "patient@test.com", Password: "patient123"}
	data, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "patient123") || strings.Contains(string(data), "password") {
		t.Errorf("Expected password to be hidden, got %s", data)
	}
}
