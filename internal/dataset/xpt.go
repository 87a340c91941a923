package dataset

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/sas7bdat-converter/internal/xport"
)

// readXPT decodes the first member of a SAS transport file.
func readXPT(r io.Reader) (*Table, error) {
	member, err := xport.Read(r)
	if err != nil {
		return nil, err
	}

	rows := len(member.Observations)
	table := &Table{
		Name:    member.Name,
		Columns: make([]*Column, len(member.Variables)),
		Rows:    rows,
	}

	for j, v := range member.Variables {
		col := &Column{
			Name:    v.Name,
			Label:   v.Label,
			Format:  v.Format,
			Missing: make([]bool, rows),
		}

		if v.Type == xport.Character {
			col.Kind = KindText
			col.Texts = make([]string, rows)
			for i, obs := range member.Observations {
				s, err := v.String(obs)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i+1, err)
				}
				col.Texts[i] = s
			}
		} else {
			col.Kind = KindNumber
			col.Numbers = make([]float64, rows)
			for i, obs := range member.Observations {
				value, ok := v.Float(obs)
				col.Numbers[i] = value
				col.Missing[i] = !ok
			}
		}

		table.Columns[j] = col
	}

	return table, nil
}
