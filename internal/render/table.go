package render

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

var (
	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(Secondary).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
	footerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
)

// Table renders rows under headers. With footer set, the last row is
// styled as a totals line.
func Table(headers []string, rows [][]string, footer bool) string {
	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case footer && row == last:
				return footerCellStyle
			default:
				return cellStyle
			}
		})
	return t.String() + "\n"
}
