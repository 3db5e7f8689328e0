package seed

import "github.com/giygas/pharmacie-api/entities"

// Users are the demo accounts
func Users() []entities.User {
	return []entities.User{
		{
			ID:        "u222",
			Role:      entities.RolePatient,
			Name:      "Jean Martin",
			Email:     "patient@test.com",
			Password:  "patient123",
			Age:       45,
			Adresse:   "10 rue des Lilas",
			Telephone: "0600000000",
		},
		{
			ID:       "u333",
			Role:     entities.RolePharmacien,
			Name:     "Marie Dubois",
			Email:    "pharmacien@test.com",
			Password: "pharma123",
		},
	}
}

// Patients mirrors the patient accounts in the pharmacist's directory
func Patients() []entities.Patient {
	return []entities.Patient{
		{ID: "u222", Name: "Jean Martin", Age: 45, Adresse: "10 rue des Lilas", Telephone: "0600000000"},
	}
}

func Medicaments() []entities.Medicament {
	return []entities.Medicament{
		{ID: "m001", Nom: "Doliprane", Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: 120},
		{ID: "m002", Nom: "Ibuprofène", Dosage: "400 mg", Forme: "Comprimé", QuantiteStock: 80},
		{ID: "m003", Nom: "Amoxicilline", Dosage: "1 g", Forme: "Gélule", QuantiteStock: 50},
		{ID: "m004", Nom: "Aspirine", Dosage: "500 mg", Forme: "Comprimé", QuantiteStock: 150},
		{ID: "m005", Nom: "Ventoline", Dosage: "100 μg", Forme: "Spray", QuantiteStock: 30},
	}
}

func Ordonnances() []entities.Ordonnance {
	return []entities.Ordonnance{
		{
			ID: "o888", PatientID: "u222", MedecinID: "u111", MedecinName: "Dr Dupont",
			Medicaments: []entities.LigneMedicament{
				{IDMedicament: "m001", NomMedicament: "Doliprane", Dosage: "500 mg", QuantiteParJour: 2, Duree: 5},
			},
			Date:  "2025-01-20",
			Notes: "Prendre après les repas",
		},
		{
			ID: "o889", PatientID: "u222", MedecinID: "u111", MedecinName: "Dr Dupont",
			Medicaments: []entities.LigneMedicament{
				{IDMedicament: "m002", NomMedicament: "Ibuprofène", Dosage: "400 mg", QuantiteParJour: 3, Duree: 7},
				{IDMedicament: "m003", NomMedicament: "Amoxicilline", Dosage: "1 g", QuantiteParJour: 2, Duree: 7},
			},
			Date:  "2025-01-25",
			Notes: "Traitement antibiotique complet - Ne pas arrêter avant la fin",
		},
		{
			ID: "o890", PatientID: "u222", MedecinID: "u111", MedecinName: "Dr Martin",
			Medicaments: []entities.LigneMedicament{
				{IDMedicament: "m001", NomMedicament: "Doliprane", Dosage: "500 mg", QuantiteParJour: 3, Duree: 3},
			},
			Date:  "2025-02-01",
			Notes: "En cas de fièvre supérieure à 38°C",
		},
		{
			ID: "o891", PatientID: "u222", MedecinID: "u111", MedecinName: "Dr Lefebvre",
			Medicaments: []entities.LigneMedicament{
				{IDMedicament: "m002", NomMedicament: "Ibuprofène", Dosage: "400 mg", QuantiteParJour: 2, Duree: 5},
			},
			Date:  "2025-01-15",
			Notes: "Pour douleurs musculaires",
		},
	}
}

func Pharmacies() []entities.Pharmacie {
	return []entities.Pharmacie{
		{ID: "ph001", Name: "Pharmacie Centrale", Address: "12 rue de la Paix"},
		{ID: "ph002", Name: "Pharmacie du Centre", Address: "45 avenue Victor Hugo"},
		{ID: "ph003", Name: "Pharmacie de la Gare", Address: "8 place de la Gare"},
	}
}
