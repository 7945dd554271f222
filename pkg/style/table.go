package style

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func NewDefaultTableStyle() *table.Style {
	style := table.Style{
		Name:    "StyleRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsYellowWhiteOnBlack,
	}
	style.Color.Row = text.Colors{text.FgHiYellow, text.BgHiBlack}
	style.Color.RowAlternate = text.Colors{text.FgYellow, text.BgBlack}
	return &style
}

// NewTable returns a table writing to w in the default style. Colors are dropped when
// plain is set, for output that is piped or tested.
func NewTable(w io.Writer, title string, header table.Row, plain bool) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(header)

	if plain {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(*NewDefaultTableStyle())
	}

	return t
}
