package groupement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/model"
	"github.com/sells-group/groupements-cli/internal/transform"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// testHeader is a 145-column header holding every column the assembler reads.
var testHeader = func() []string {
	h := []string{
		colSIREN, colNom, colCommuneSiege, colNatureJuridique, colDateEffet, colModeFinancement,
		colCivilite, colPrenom, colNomPresident, colAdresse1, colAdresse2, colAdresse3,
		colCodePostalVille, colTelephone, colFax, colCourriel, colSiteInternet,
		"TEOM", "REOM", "C1010", "C0110", "C4520",
		colTypeMembre, colSirenMembre, colNomMembre,
	}
	for i := len(h); i < ExpectedColumns; i++ {
		h = append(h, fmt.Sprintf("Colonne %d", i))
	}
	return h
}()

func row(values map[string]string) model.Row {
	rec := make([]string, len(testHeader))
	for i, col := range testHeader {
		rec[i] = values[col]
	}
	return model.NewRow(testHeader, rec)
}

func groupRow(siren, membre, nom, typ string) map[string]string {
	return map[string]string{
		colSIREN:           siren,
		colNom:             "CC Hermitage-Tournonais",
		colCommuneSiege:    "263470004 - Tain-l'Hermitage",
		colNatureJuridique: "CC",
		colDateEffet:       "01/01/2017",
		colModeFinancement: "FPU",
		colCivilite:        "M.",
		colPrenom:          "Xavier",
		colNomPresident:    "ANGELI",
		colAdresse1:        "Rue Jean Monnet",
		colAdresse2:        "",
		colAdresse3:        "BP 12",
		colCodePostalVille: "26600 TAIN-L'HERMITAGE",
		colTelephone:       " 04 75 07 87 00 ",
		colFax:             "  ",
		colCourriel:        "contact@archeagglo.fr",
		colSiteInternet:    "",
		"TEOM":             "1",
		"REOM":             "0",
		"C1010":            "1",
		"C0110":            "0",
		"C4520":            "1",
		colTypeMembre:      typ,
		colSirenMembre:     membre,
		colNomMembre:       nom,
	}
}

type mapResolver map[string]string

func (m mapResolver) Lookup(siren string) (string, bool) {
	v, ok := m[siren]
	return v, ok
}

func TestAssemble(t *testing.T) {
	rows := []model.Row{
		row(groupRow("200068781", "212603470", "Tain-l'Hermitage", "Commune")),
		row(groupRow("200068781", "212603247", "Tournon", "Commune")),
		row(groupRow("200068781", "200000000", "SIVU", "Groupement")),
		row(groupRow("200068781", "130000000", "Syndicat mixte", "Autre organisme")),
	}
	xref := mapResolver{"212603470": "26347", "212603247": "07324"}

	out, report, err := Assemble(rows, xref, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, "200068781", g.SIREN)
	assert.Equal(t, "CC Hermitage-Tournonais", g.Nom)
	assert.Equal(t, "263470004", g.CommuneSiege)
	assert.Equal(t, "CC", g.NatureJuridique)
	assert.Equal(t, "2017-01-01", g.DateEffet)
	assert.Equal(t, "FPU", g.ModeFinancement)
	assert.Equal(t, model.President{Civilite: "M.", Prenom: "Xavier", Nom: "ANGELI"}, g.President)

	assert.Equal(t, []string{"Rue Jean Monnet", "BP 12"}, g.AdresseSiege.Adresse)
	assert.Equal(t, "26600", g.AdresseSiege.CodePostal)
	assert.Equal(t, "TAIN-L'HERMITAGE", g.AdresseSiege.NomCommuneSiege)
	require.NotNil(t, g.AdresseSiege.Telephone)
	assert.Equal(t, "04 75 07 87 00", *g.AdresseSiege.Telephone)
	assert.Nil(t, g.AdresseSiege.Fax)
	assert.Nil(t, g.AdresseSiege.SiteInternet)
	require.NotNil(t, g.AdresseSiege.Courriel)

	assert.Equal(t, []string{"taxe-ordures-menageres"}, g.Perceptions)
	assert.Equal(t, []string{"C1010", "C4520"}, g.Competences)

	assert.Equal(t, []model.Membre{
		{SIREN: "212603470", Nom: "Tain-l'Hermitage", Type: model.MembreCommune, Code: "26347"},
		{SIREN: "212603247", Nom: "Tournon", Type: model.MembreCommune, Code: "07324"},
		{SIREN: "200000000", Nom: "SIVU", Type: model.MembreGroupement},
		{SIREN: "130000000", Nom: "Syndicat mixte", Type: model.MembreAutre},
	}, g.Membres)

	assert.Equal(t, Report{Groupements: 1, Membres: 4}, report)
}

func TestAssemble_DropsWrongWidthRows(t *testing.T) {
	good := row(groupRow("200000001", "210100012", "Ambérieu", "Commune"))
	short := model.NewRow(testHeader, []string{"200000002", "CC Courte"})
	long := model.NewRow(testHeader, append(append([]string{}, good.Map()[colSIREN]), make([]string, ExpectedColumns)...))
	orphan := model.NewRow(testHeader[:3], []string{"200000003", "Seul", "x"})

	out, report, err := Assemble([]model.Row{short, good, long, orphan}, mapResolver{"210100012": "01004"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "200000001", out[0].SIREN)
	assert.Equal(t, 3, report.DroppedRows)
}

func TestAssemble_DropsBadRowEvenWhenGroupElsewhereValid(t *testing.T) {
	bad := model.NewRow(testHeader, []string{"200000001", "x"})
	good := row(groupRow("200000001", "210100012", "Ambérieu", "Commune"))

	out, _, err := Assemble([]model.Row{bad, good}, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Membres, 1)
}

func TestAssemble_DeduplicatesMembers(t *testing.T) {
	first := groupRow("200000001", "210100012", "Ambérieu", "Commune")
	dup := groupRow("200000001", "210100012", "Ambérieu (doublon)", "Commune")
	other := groupRow("200000001", "210100020", "Ambronay", "Commune")

	out, _, err := Assemble([]model.Row{row(first), row(dup), row(other)}, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)

	ids := map[string]int{}
	for _, m := range out[0].Membres {
		ids[m.SIREN]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "member %s duplicated", id)
	}
	assert.Equal(t, "Ambérieu", out[0].Membres[0].Nom)
	assert.Len(t, out[0].Membres, 2)
}

func TestAssemble_FirstAppearanceOrder(t *testing.T) {
	rows := []model.Row{
		row(groupRow("300000000", "1", "a", "Commune")),
		row(groupRow("100000000", "2", "b", "Commune")),
		row(groupRow("300000000", "3", "c", "Commune")),
		row(groupRow("200000000", "4", "d", "Commune")),
	}

	out, report, err := Assemble(rows, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "300000000", out[0].SIREN)
	assert.Equal(t, "100000000", out[1].SIREN)
	assert.Equal(t, "200000000", out[2].SIREN)
	assert.Len(t, out[0].Membres, 2)
	assert.Equal(t, 4, report.UnresolvedCommunes)
}

func TestAssemble_UnresolvedCommuneIsNotFatal(t *testing.T) {
	rows := []model.Row{
		row(groupRow("200000001", "219999999", "Inconnue", "Commune")),
		row(groupRow("200000001", "200000009", "Sous-groupement", "Groupement")),
	}

	out, report, err := Assemble(rows, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.Membre{SIREN: "219999999", Nom: "Inconnue", Type: model.MembreCommune}, out[0].Membres[0])
	assert.Empty(t, out[0].Membres[0].Code)
	assert.Equal(t, 1, report.UnresolvedCommunes)
}

func TestAssemble_UnknownMemberType(t *testing.T) {
	out, _, err := Assemble([]model.Row{row(groupRow("200000001", "1", "x", "Établissement public"))}, mapResolver{"1": "01001"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, model.MembreType(""), out[0].Membres[0].Type)
	assert.Empty(t, out[0].Membres[0].Code)
}

func TestAssemble_MalformedDateAbortsRun(t *testing.T) {
	broken := groupRow("200000002", "2", "b", "Commune")
	broken[colDateEffet] = "pas de date"

	rows := []model.Row{
		row(groupRow("200000001", "1", "a", "Commune")),
		row(broken),
		row(groupRow("200000003", "3", "c", "Commune")),
	}

	out, _, err := Assemble(rows, mapResolver{}, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrRecordAssembly))
	assert.True(t, errors.Is(err, transform.ErrDate))

	var aerr *AssemblyError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "200000002", aerr.SIREN)
	assert.Equal(t, "pas de date", aerr.Row[colDateEffet])
	assert.Contains(t, aerr.Error(), "groupement 200000002")
}

func TestAssemble_OnlyCanonicalRowIsValidated(t *testing.T) {
	second := groupRow("200000001", "2", "b", "Commune")
	second[colDateEffet] = "illisible"

	out, _, err := Assemble([]model.Row{row(groupRow("200000001", "1", "a", "Commune")), row(second)}, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, out[0].Membres, 2)
}

func TestAssemble_Empty(t *testing.T) {
	out, report, err := Assemble(nil, mapResolver{}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, Report{}, report)
}
