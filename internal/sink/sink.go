// Package sink writes the finished groupements document.
package sink

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/groupements-cli/internal/model"
)

// Sink receives the assembled records once per run.
type Sink interface {
	Write(ctx context.Context, groupements []model.Groupement) error
}

// encode renders the document as an indented JSON array. A nil slice is
// written as [] so consumers always get an array.
func encode(groupements []model.Groupement) ([]byte, error) {
	if groupements == nil {
		groupements = []model.Groupement{}
	}
	data, err := json.MarshalIndent(groupements, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "sink: encode")
	}
	return append(data, '\n'), nil
}
