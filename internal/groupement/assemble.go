// Package groupement turns raw export rows into Groupement records.
package groupement

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/model"
	"github.com/sells-group/groupements-cli/internal/transform"
)

var (
	// ErrRowShape marks a row dropped for having the wrong number of fields.
	ErrRowShape = eris.New("groupement: wrong column count")
	// ErrCrossRefMiss marks a commune member with no INSEE code.
	ErrCrossRefMiss = eris.New("groupement: commune missing from cross-reference")
	// ErrRecordAssembly is returned when a groupement's canonical row is malformed.
	ErrRecordAssembly = eris.New("groupement: record assembly failed")
)

// Resolver maps a SIREN to an INSEE commune code.
type Resolver interface {
	Lookup(siren string) (string, bool)
}

// Options holds the schema width and decoding tables.
type Options struct {
	ExpectedColumns int
	Perceptions     transform.FlagTable
	MembreTypes     map[string]model.MembreType
}

// DefaultOptions returns the tables of the published export.
func DefaultOptions() Options {
	return Options{
		ExpectedColumns: ExpectedColumns,
		Perceptions: transform.FlagTable{
			{Column: "TEOM", Tag: "taxe-ordures-menageres"},
			{Column: "REOM", Tag: "redevance-ordures-menageres"},
		},
		MembreTypes: map[string]model.MembreType{
			"Commune":         model.MembreCommune,
			"Groupement":      model.MembreGroupement,
			"Autre organisme": model.MembreAutre,
		},
	}
}

// Report counts what Assemble dropped or could not resolve.
type Report struct {
	DroppedRows        int `json:"dropped_rows"`
	UnresolvedCommunes int `json:"unresolved_communes"`
	Groupements        int `json:"groupements"`
	Membres            int `json:"membres"`
}

// AssemblyError reports the groupement whose canonical row could not be
// turned into a record, with that row attached.
type AssemblyError struct {
	SIREN string
	Row   map[string]string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("groupement %s: %v", e.SIREN, e.Err)
}

// Unwrap exposes both ErrRecordAssembly and the underlying cause.
func (e *AssemblyError) Unwrap() []error {
	return []error{ErrRecordAssembly, e.Err}
}

// Assemble filters rows on width, groups them by groupement SIREN in order of
// first appearance and builds one record per group. A commune missing from
// xref is logged and left without code. A malformed canonical row aborts the
// whole assembly with an *AssemblyError.
func Assemble(rows []model.Row, xref Resolver, opts Options) ([]model.Groupement, Report, error) {
	log := zap.L().With(zap.String("component", "groupement"))
	var report Report

	var order []string
	groups := make(map[string][]model.Row)
	for _, row := range rows {
		if row.Len() != opts.ExpectedColumns {
			report.DroppedRows++
			log.Warn("invalid row dropped",
				zap.Error(eris.Wrapf(ErrRowShape, "got %d fields, want %d", row.Len(), opts.ExpectedColumns)),
				zap.String("siren", row.Get(colSIREN)),
			)
			continue
		}
		key := row.Get(colSIREN)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	out := make([]model.Groupement, 0, len(order))
	for _, siren := range order {
		members := groups[siren]
		g, err := buildGroupement(siren, members[0], opts)
		if err != nil {
			aerr := &AssemblyError{SIREN: siren, Row: members[0].Map(), Err: err}
			log.Error("malformed groupement row",
				zap.String("siren", siren),
				zap.Any("row", aerr.Row),
				zap.Error(err),
			)
			return nil, report, aerr
		}

		g.Membres = buildMembres(siren, members, xref, opts, &report, log)
		report.Membres += len(g.Membres)
		out = append(out, g)
	}
	report.Groupements = len(out)
	return out, report, nil
}

func buildGroupement(siren string, gr model.Row, opts Options) (model.Groupement, error) {
	dateEffet, err := transform.AsDate(gr.Get(colDateEffet))
	if err != nil {
		return model.Groupement{}, eris.Wrapf(err, "column %q", colDateEffet)
	}

	cpVille := gr.Get(colCodePostalVille)
	return model.Groupement{
		SIREN:           siren,
		Nom:             gr.Get(colNom),
		CommuneSiege:    transform.Prefix(gr.Get(colCommuneSiege), 9),
		NatureJuridique: gr.Get(colNatureJuridique),
		DateEffet:       dateEffet,
		ModeFinancement: gr.Get(colModeFinancement),
		President: model.President{
			Civilite: gr.Get(colCivilite),
			Prenom:   gr.Get(colPrenom),
			Nom:      gr.Get(colNomPresident),
		},
		AdresseSiege: model.Adresse{
			Adresse:         transform.NonBlank(gr.Get(colAdresse1), gr.Get(colAdresse2), gr.Get(colAdresse3)),
			CodePostal:      transform.Prefix(cpVille, 5),
			NomCommuneSiege: transform.From(cpVille, 6),
			Telephone:       transform.AsString(gr.Get(colTelephone)),
			Fax:             transform.AsString(gr.Get(colFax)),
			Courriel:        transform.AsString(gr.Get(colCourriel)),
			SiteInternet:    transform.AsString(gr.Get(colSiteInternet)),
		},
		Perceptions: transform.AsList(gr, opts.Perceptions),
		Competences: transform.AsCompetences(gr),
	}, nil
}

// buildMembres maps each distinct member SIREN (first occurrence wins) to a Membre.
func buildMembres(siren string, rows []model.Row, xref Resolver, opts Options, report *Report, log *zap.Logger) []model.Membre {
	seen := make(map[string]bool, len(rows))
	membres := make([]model.Membre, 0, len(rows))
	for _, mr := range rows {
		id := mr.Get(colSirenMembre)
		if seen[id] {
			continue
		}
		seen[id] = true

		typ, _ := transform.AsEnum(mr.Get(colTypeMembre), opts.MembreTypes)
		m := model.Membre{
			SIREN: id,
			Nom:   mr.Get(colNomMembre),
			Type:  typ,
		}
		if typ == model.MembreCommune {
			if code, ok := xref.Lookup(id); ok && code != "" {
				m.Code = code
			} else {
				report.UnresolvedCommunes++
				log.Warn("commune without INSEE code",
					zap.Error(ErrCrossRefMiss),
					zap.String("groupement", siren),
					zap.String("siren", id),
				)
			}
		}
		membres = append(membres, m)
	}
	return membres
}
