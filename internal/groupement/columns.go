package groupement

// Source column headers of the export.
const (
	colSIREN           = "N° SIREN"
	colNom             = "Nom du groupement"
	colCommuneSiege    = "Commune siège"
	colNatureJuridique = "Nature juridique"
	colDateEffet       = "Date d'effet"
	colModeFinancement = "Mode de financement"
	colCivilite        = "Civilité Président"
	colPrenom          = "Prénom Président"
	colNomPresident    = "Nom Président"
	colAdresse1        = "Adresse du siège_1"
	colAdresse2        = "Adresse du siège_2"
	colAdresse3        = "Adresse du siège_3"
	colCodePostalVille = "Code postal du siège Ville du siège"
	colTelephone       = "Téléphone du siège"
	colFax             = "Fax du siège"
	colCourriel        = "Courriel du siège"
	colSiteInternet    = "Site internet"
	colSirenMembre     = "Siren membre"
	colNomMembre       = "Nom membre"
	colTypeMembre      = "Type"
)

// ExpectedColumns is the width of a well-formed export line.
const ExpectedColumns = 145
