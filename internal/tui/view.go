package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vitaminmoo/gattx/internal/commands"
	"github.com/vitaminmoo/gattx/internal/util"
)

// queryHelp is shown by the HELP keyword in the characteristics view.
var queryHelp = []string{
	`Query format : [index] [action]( [format])( ["value"])`,
	`  2 READ`,
	`  42 READ UInt32"is_the_answer"`,
	`  42 WRITE "is_the_answer"`,
	`Without a format values are hex. Actions: READ, WRITE. Keywords: BACK, EXIT, HELP.`,
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Heading.Render(m.heading()))
	b.WriteString("\n")

	if m.scan.IsActive() {
		b.WriteString(m.scan.View(m.now, len(m.devices)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.view == ViewCharacteristics {
		b.WriteString(m.renderResults())
	}
	if m.showHelp {
		b.WriteString("\n")
		for _, line := range queryHelp {
			b.WriteString(m.styles.Muted.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render(m.promptLabel()))
	b.WriteString("\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errorMsg))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(m.styles.Success.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return m.styles.App.Render(b.String())
}

func (m Model) renderTitleBar() string {
	title := m.styles.Title.Render("gattx")

	var status string
	switch {
	case m.busy != "":
		status = m.spinner.View() + " " + m.styles.Warning.Render(m.busy)
	case m.topo != nil:
		status = m.styles.StatusOnline.Render("● " + util.FormatMAC(m.topo.Peripheral.Address))
	default:
		status = m.styles.StatusOffline.Render("○ Offline")
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	if m.records > 0 {
		left += m.styles.Subtitle.Render(fmt.Sprintf("  %s record(s)", humanize.Comma(int64(m.records))))
	}
	return left
}

func (m Model) heading() string {
	switch m.view {
	case ViewServices:
		return fmt.Sprintf("Services of %s", m.topo.Peripheral.Name())
	case ViewCharacteristics:
		name := m.service.Name
		if name == "" {
			name = m.service.UUID.String()
		}
		return fmt.Sprintf("Characteristics of [%d] %s", m.service.Index, name)
	}
	return "Peripherals"
}

func (m Model) promptLabel() string {
	switch m.view {
	case ViewServices:
		return "Select a service number (BACK to rescan, EXIT to quit)"
	case ViewCharacteristics:
		return "Enter a query (HELP for the format, BACK for services, EXIT to quit)"
	}
	return "Select a peripheral number (EXIT to quit)"
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, r := range m.results {
		b.WriteString(m.styles.Muted.Render("> " + r.Input))
		b.WriteString("\n")
		b.WriteString(commands.ResultText(r))
		b.WriteString("\n")
	}
	return b.String()
}

// replaceTable swaps columns and rows. Rows are cleared first since the
// table renders existing rows against the new column count.
func (m *Model) replaceTable(cols []table.Column, rows []table.Row) {
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetHeight(m.tableHeight())
	if m.table.Cursor() >= len(rows) || m.table.Cursor() < 0 {
		m.table.SetCursor(0)
	}
}

func (m *Model) setDeviceRows() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Address", Width: 17},
		{Title: "Name", Width: 24},
		{Title: "RSSI", Width: 8},
		{Title: "Seen", Width: 5},
	}
	rows := make([]table.Row, 0, len(m.devices))
	for _, d := range m.devices {
		rows = append(rows, table.Row{
			strconv.Itoa(d.Index),
			util.FormatMAC(d.Address),
			util.Truncate(d.Advertisement.LocalName, 24),
			fmt.Sprintf("%d dBm", d.RSSI),
			strconv.Itoa(d.Sightings),
		})
	}
	m.replaceTable(cols, rows)
}

func (m *Model) setServiceRows() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "UUID", Width: 36},
		{Title: "Name", Width: 28},
		{Title: "Chars", Width: 6},
	}
	var rows []table.Row
	if m.topo != nil {
		for _, s := range m.topo.Services {
			chars := "-"
			if s.Discovered {
				chars = strconv.Itoa(len(s.Characteristics))
			}
			if s.Error != "" {
				chars = "error"
			}
			rows = append(rows, table.Row{strconv.Itoa(s.Index), s.UUID.String(), util.Truncate(s.Name, 28), chars})
		}
	}
	m.replaceTable(cols, rows)
	m.table.SetCursor(0)
}

func (m *Model) setCharacteristicRows() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "UUID", Width: 36},
		{Title: "Name", Width: 24},
		{Title: "Properties", Width: 22},
		{Title: "Value", Width: 24},
	}
	var rows []table.Row
	if m.service != nil {
		for _, c := range m.service.Characteristics {
			rows = append(rows, table.Row{
				strconv.Itoa(c.Index),
				c.UUID.String(),
				util.Truncate(c.DisplayName(), 24),
				util.Truncate(c.Properties.String(), 22),
				util.Truncate(c.DisplayValue(), 24),
			})
		}
	}
	m.replaceTable(cols, rows)
}
