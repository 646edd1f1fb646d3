package fetcher

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/groupements-cli/internal/model"
)

// ReadTSV decodes a tab-delimited export into a Table. The first non-empty
// line is the header.
//
// Quote and escape characters have no meaning here: the export embeds
// literal `"` and `=@=` sequences inside fields, so every line is split on
// tabs and nothing else. encoding/csv cannot be told to do that.
func ReadTSV(r io.Reader) (*model.Table, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	tbl := &model.Table{}

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, eris.Wrap(err, "tsv: read line")
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			fields := strings.Split(line, "\t")
			if tbl.Header == nil {
				tbl.Header = fields
			} else {
				tbl.Records = append(tbl.Records, fields)
			}
		}

		if err == io.EOF {
			break
		}
	}

	if tbl.Header == nil {
		return nil, eris.New("tsv: empty input")
	}
	return tbl, nil
}
