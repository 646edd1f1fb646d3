// Package transform converts raw dataset strings into typed record fields.
package transform

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/groupements-cli/internal/model"
)

// ErrDate is returned when a date column cannot be parsed.
var ErrDate = eris.New("transform: invalid date")

// dateLayouts are tried in order. Day-first is the dataset's locale.
var dateLayouts = []string{
	"2/1/2006",
	"2006-01-02",
}

// AsDate parses a day-first date and returns it as YYYY-MM-DD.
func AsDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", eris.Wrapf(ErrDate, "parse %q", s)
}

// AsEnum looks value up in table. The bool reports whether it was found.
func AsEnum[T any](value string, table map[string]T) (T, bool) {
	v, ok := table[value]
	return v, ok
}

// Flag maps a binary flag column to the tag emitted when it is set.
// An empty Tag passes the column name through.
type Flag struct {
	Column string
	Tag    string
}

// FlagTable is an ordered list of flag columns.
type FlagTable []Flag

// AsList returns the tags of every flag column whose value is "1", in table order.
func AsList(row model.Row, table FlagTable) []string {
	out := []string{}
	for _, f := range table {
		if row.Get(f.Column) != "1" {
			continue
		}
		if f.Tag == "" {
			out = append(out, f.Column)
		} else {
			out = append(out, f.Tag)
		}
	}
	return out
}

var competenceColumn = regexp.MustCompile(`^C\d{4}$`)

// AsCompetences returns the competence codes (columns named C followed by
// four digits) set to "1", in column order.
func AsCompetences(row model.Row) []string {
	out := []string{}
	for _, col := range row.Columns() {
		if competenceColumn.MatchString(col) && row.Get(col) == "1" {
			out = append(out, col)
		}
	}
	return out
}

// AsString trims value. A blank result is absent (nil).
func AsString(value string) *string {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	return &s
}

// Prefix returns the first n characters of s.
func Prefix(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	return string(r[:n])
}

// From returns s starting at character index i, or "" past the end.
func From(s string, i int) string {
	r := []rune(s)
	if i >= len(r) {
		return ""
	}
	return string(r[i:])
}

// NonBlank drops blank entries from lines, keeping order.
func NonBlank(lines ...string) []string {
	out := []string{}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
