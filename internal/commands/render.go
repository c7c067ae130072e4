package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/vitaminmoo/gattx/internal/access"
	"github.com/vitaminmoo/gattx/internal/codec"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/gatt"
	"github.com/vitaminmoo/gattx/internal/util"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

// Printer writes command output as tables, or as indented JSON.
type Printer struct {
	W    io.Writer
	JSON bool
}

// PrintJSON writes v as indented JSON.
func (p Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p Printer) println(s string) {
	fmt.Fprintln(p.W, s)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// DeviceTable renders the scan result.
func DeviceTable(devices []gatt.Peripheral, now time.Time) string {
	t := newTable("#", "Address", "Name", "RSSI", "Seen", "Last seen")
	for _, d := range devices {
		name := d.Advertisement.LocalName
		if name == "" {
			name = mutedStyle.Render("(unnamed)")
		}
		t.Row(
			strconv.Itoa(d.Index),
			util.FormatMAC(d.Address),
			util.Truncate(name, 32),
			fmt.Sprintf("%d dBm", d.RSSI),
			strconv.Itoa(d.Sightings),
			humanize.RelTime(d.LastSeen, now, "ago", "from now"),
		)
	}
	return t.String()
}

// ServiceTable renders the service list of a topology.
func ServiceTable(t *explore.Topology) string {
	tbl := newTable("#", "UUID", "Name", "Characteristics")
	for _, s := range t.Services {
		chars := mutedStyle.Render("not explored")
		if s.Discovered {
			chars = strconv.Itoa(len(s.Characteristics))
		}
		if s.Error != "" {
			chars = errStyle.Render("error")
		}
		tbl.Row(strconv.Itoa(s.Index), s.UUID.String(), s.Name, chars)
	}
	return tbl.String()
}

// CharacteristicTable renders one service's characteristics.
func CharacteristicTable(s *explore.Service) string {
	t := newTable("#", "UUID", "Name", "Properties", "Format", "Value", "Descriptors")
	for _, c := range s.Characteristics {
		descs := make([]string, 0, len(c.Descriptors))
		for _, d := range c.Descriptors {
			descs = append(descs, d.UUID.String())
		}
		t.Row(
			strconv.Itoa(c.Index),
			c.UUID.String(),
			util.Truncate(c.DisplayName(), 32),
			c.Properties.String(),
			c.Format.String(),
			util.Truncate(c.DisplayValue(), 40),
			strings.Join(descs, ","),
		)
	}
	return t.String()
}

// TopologyText renders the whole tree, one characteristic table per explored
// service.
func TopologyText(t *explore.Topology) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(t.Peripheral.Name()), mutedStyle.Render(util.FormatMAC(t.Peripheral.Address)))
	for _, s := range t.Services {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s  %s\n", titleStyle.Render(fmt.Sprintf("[%d]", s.Index)), s.UUID, s.Name)
		if s.Error != "" {
			b.WriteString(errStyle.Render("  "+s.Error) + "\n")
		}
		if len(s.Characteristics) > 0 {
			b.WriteString(CharacteristicTable(s))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ResultText renders the outcome of an access command.
func ResultText(r access.Result) string {
	if !r.OK {
		return errStyle.Render(fmt.Sprintf("%s error: %s", r.Kind, r.Error))
	}
	var b strings.Builder
	switch r.Command.Action {
	case access.Read:
		fmt.Fprintf(&b, "%s [%s] %s", r.Characteristic, r.Format, r.Value.String())
		if len(r.Raw) > 0 && r.Format != codec.Hex.String() {
			b.WriteString(mutedStyle.Render("  0x" + r.Value.Hex()))
		}
	case access.Write:
		fmt.Fprintf(&b, "%s [%s] wrote %s (%s)", r.Characteristic, r.Format,
			util.Preview(r.Written), humanize.Bytes(uint64(len(r.Written))))
	}
	return b.String()
}

// FormatTable lists the codec registry.
func FormatTable() string {
	t := newTable("Format", "Width", "Numeric")
	for _, f := range codec.Formats() {
		width := "variable"
		if w := f.Width(); w > 0 {
			width = humanize.Bytes(uint64(w))
		}
		t.Row(f.String(), width, strconv.FormatBool(f.Numeric()))
	}
	return t.String()
}
