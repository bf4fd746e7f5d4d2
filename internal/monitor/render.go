// internal/monitor/render.go
package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- STYLES ---
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#575B7E"))

	exceptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mismatchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	timeCol    = lipgloss.NewStyle().Width(14).Padding(0, 1)
	chanCol    = lipgloss.NewStyle().Width(5).Align(lipgloss.Right).Padding(0, 1)
	dirCol     = lipgloss.NewStyle().Width(10).Padding(0, 1)
	slaveCol   = lipgloss.NewStyle().Width(7).Align(lipgloss.Right).Padding(0, 1)
	funcCol    = lipgloss.NewStyle().Width(16).Padding(0, 1)
	addressCol = lipgloss.NewStyle().Width(9).Align(lipgloss.Right).Padding(0, 1)
	countCol   = lipgloss.NewStyle().Width(7).Align(lipgloss.Right).Padding(0, 1)
	crcCol     = lipgloss.NewStyle().Width(15).Padding(0, 1)
)

func row(cells ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		timeCol.Render(cells[0]),
		chanCol.Render(cells[1]),
		dirCol.Render(cells[2]),
		slaveCol.Render(cells[3]),
		funcCol.Render(cells[4]),
		addressCol.Render(cells[5]),
		countCol.Render(cells[6]),
		crcCol.Render(cells[7]),
	)
}

// Render lays entries out as a terminal table. Exception rows and CRC
// mismatches are highlighted.
func Render(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(row("Time", "Ch", "Dir", "Slave", "Function", "Address", "Count", "CRC")))
	sb.WriteByte('\n')

	for _, e := range entries {
		fn := e.FunctionText()
		crc := e.CRCText()

		line := row(
			e.At.Format("15:04:05.000"),
			fmt.Sprintf("%d", e.Channel),
			e.Direction.String(),
			fmt.Sprintf("%d", e.Slave),
			fn,
			e.AddressText(),
			e.CountText(),
			crc,
		)
		switch {
		case e.IsException():
			line = exceptionStyle.Render(line)
		case e.CRCMismatch():
			line = mismatchStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
