// Package model defines the raw dataset rows and the normalized records
// written to the output document.
package model

// MembreType classifies a member of a groupement.
type MembreType string

const (
	MembreCommune    MembreType = "commune"
	MembreGroupement MembreType = "groupement"
	MembreAutre      MembreType = "autre"
)

// Groupement is one intercommunal grouping with its members.
type Groupement struct {
	SIREN           string    `json:"siren"`
	Nom             string    `json:"nom"`
	CommuneSiege    string    `json:"communeSiege"`
	NatureJuridique string    `json:"natureJuridique"`
	DateEffet       string    `json:"dateEffet"`
	ModeFinancement string    `json:"modeFinancement"`
	President       President `json:"president"`
	AdresseSiege    Adresse   `json:"adresseSiege"`
	Perceptions     []string  `json:"perceptions"`
	Competences     []string  `json:"competences"`
	Membres         []Membre  `json:"membres"`
}

// President identifies the president of a groupement.
type President struct {
	Civilite string `json:"civilite"`
	Prenom   string `json:"prenom"`
	Nom      string `json:"nom"`
}

// Adresse is the seat address. Optional contact fields are nil when the
// source column is blank.
type Adresse struct {
	Adresse         []string `json:"adresse"`
	CodePostal      string   `json:"codePostal"`
	NomCommuneSiege string   `json:"nomCommuneSiege"`
	Telephone       *string  `json:"telephone,omitempty"`
	Fax             *string  `json:"fax,omitempty"`
	Courriel        *string  `json:"courriel,omitempty"`
	SiteInternet    *string  `json:"siteInternet,omitempty"`
}

// Membre is a constituent of a groupement. Code is the INSEE commune code
// and is only set for communes resolved through the cross-reference table.
type Membre struct {
	SIREN string     `json:"siren"`
	Nom   string     `json:"nom"`
	Type  MembreType `json:"type,omitempty"`
	Code  string     `json:"code,omitempty"`
}
