package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// scanTickInterval is how often the scan bar advances.
const scanTickInterval = 100 * time.Millisecond

// ScanProgress tracks a timed scan.
type ScanProgress struct {
	bar      progress.Model
	started  time.Time
	duration time.Duration
	isActive bool
}

// NewScanProgress creates a new scan progress bar.
func NewScanProgress() ScanProgress {
	return ScanProgress{
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
	}
}

// Start begins tracking a scan of duration d.
func (p *ScanProgress) Start(now time.Time, d time.Duration) {
	p.isActive = true
	p.started = now
	p.duration = d
}

// Stop ends tracking.
func (p *ScanProgress) Stop() {
	p.isActive = false
}

// IsActive returns whether a scan is in progress.
func (p *ScanProgress) IsActive() bool {
	return p.isActive
}

// Percent returns the elapsed share of the scan, capped at 1.
func (p ScanProgress) Percent(now time.Time) float64 {
	if p.duration <= 0 {
		return 1
	}
	f := float64(now.Sub(p.started)) / float64(p.duration)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// View renders the progress bar with the number of peripherals found so far.
func (p ScanProgress) View(now time.Time, found int) string {
	if !p.isActive {
		return ""
	}
	remaining := max(p.duration-now.Sub(p.started), 0).Round(100 * time.Millisecond)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	desc := fmt.Sprintf("Scanning: %d peripheral(s), %s left", found, remaining)
	return descStyle.Render(desc) + "\n" + p.bar.ViewAs(p.Percent(now))
}

// scanTickMsg advances the scan bar.
type scanTickMsg time.Time

func scanTickCmd() tea.Cmd {
	return tea.Tick(scanTickInterval, func(t time.Time) tea.Msg {
		return scanTickMsg(t)
	})
}
