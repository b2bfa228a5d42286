// atcwatch is a live terminal dashboard of ATC stations and their traffic
// counts, fed by a running atcmapd instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterbourgon/ff/v3"

	"github.com/tkoksal/atcmap/internal/api"
	"github.com/tkoksal/atcmap/internal/server"
)

const pollInterval = 2 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("243"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	areaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	towerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type model struct {
	client   *api.Client
	stations []server.StationView
	meta     server.SnapshotMeta
	selected int
	showAtis bool
	err      error
}

type tickMsg time.Time

type stationsMsg struct {
	stations []server.StationView
	meta     server.SnapshotMeta
	err      error
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
		defer cancel()

		stations, err := m.client.Stations(ctx)
		if err != nil {
			return stationsMsg{err: err}
		}
		// Busiest first, callsign as tie-break so rows do not jump around
		// between polls.
		sort.Slice(stations, func(i, j int) bool {
			ti, tj := stations[i].Count.Total(), stations[j].Count.Total()
			if ti != tj {
				return ti > tj
			}
			return stations[i].Callsign < stations[j].Callsign
		})
		meta, err := m.client.Snapshot(ctx)
		if err != nil {
			return stationsMsg{err: err}
		}
		return stationsMsg{stations: stations, meta: meta}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.stations)-1 {
				m.selected++
			}
		case "enter", "a":
			m.showAtis = !m.showAtis
		case "r":
			client := m.client
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
				defer cancel()
				if err := client.Refresh(ctx); err != nil {
					return stationsMsg{err: err}
				}
				return nil
			}
		}

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())

	case stationsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.stations = msg.stations
		m.meta = msg.meta
		if m.selected >= len(m.stations) {
			m.selected = len(m.stations) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
	}
	return m, nil
}

func (m model) View() string {
	s := titleStyle.Render("ATC Traffic Watch") + "\n"
	s += statusStyle.Render(fmt.Sprintf("snapshot %s · %d stations · %d pilots",
		m.meta.FetchedAt.Local().Format("15:04:05"), m.meta.Stations, m.meta.Pilots)) + "\n\n"

	if m.err != nil {
		s += errorStyle.Render("error: "+m.err.Error()) + "\n\n"
	}

	s += headerStyle.Render(fmt.Sprintf("%-12s %-4s %-14s %8s %8s %9s", "CALLSIGN", "CAT", "COUNTRY", "INBOUND", "OUTBOUND", "IN-REGION")) + "\n"

	for i, st := range m.stations {
		line := fmt.Sprintf("%-12s %-4s %-14s %8d %8d %9d",
			st.Callsign, st.Category, trim(st.Country, 14),
			st.Count.Inbound, st.Count.Outbound, st.Count.InRegion)

		switch {
		case i == m.selected:
			line = selectedStyle.Render(line)
		case st.Count.InRegion > 0:
			line = areaStyle.Render(line)
		case st.Count.Inbound+st.Count.Outbound > 0:
			line = towerStyle.Render(line)
		}
		s += line + "\n"

		if m.showAtis && i == m.selected && st.Atis != "" {
			s += statusStyle.Render("  "+trim(st.Atis, 76)) + "\n"
		}
	}

	s += "\n" + statusStyle.Render("↑/↓ select · enter atis · r refresh · q quit")
	return s
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func main() {
	fs := flag.NewFlagSet("atcwatch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "atcmapd base URL")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("ATCMAP")); err != nil {
		log.Fatal(err)
	}

	m := model{client: api.NewClient(*serverURL)}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("atcwatch failed: %v", err)
	}
}
