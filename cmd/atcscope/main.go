// atcscope is a two-pane terminal browser over a running atcmapd
// instance: a station table on the left, detail (counts, coverage
// geometry, ATIS) on the right.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/rivo/tview"

	"github.com/tkoksal/atcmap/internal/api"
	"github.com/tkoksal/atcmap/internal/server"
)

const reloadInterval = 5 * time.Second

type scopeApp struct {
	client *api.Client

	app    *tview.Application
	table  *tview.Table
	detail *tview.TextView
	status *tview.TextView

	stations []server.StationView
}

func newScopeApp(client *api.Client) *scopeApp {
	s := &scopeApp{
		client: client,
		app:    tview.NewApplication(),
	}

	s.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	s.table.SetBorder(true).SetTitle(" Stations ")
	s.table.SetSelectionChangedFunc(func(row, _ int) {
		s.showDetail(row - 1)
	})

	s.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	s.detail.SetBorder(true).SetTitle(" Detail ")

	s.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.status.SetText("[gray]r refresh · q quit")

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(s.table, 0, 3, true).
			AddItem(s.detail, 0, 2, false), 0, 1, true).
		AddItem(s.status, 1, 0, false)

	s.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			s.app.Stop()
			return nil
		case 'r':
			go s.requestRefresh()
			return nil
		}
		return event
	})

	s.app.SetRoot(layout, true)
	return s
}

func (s *scopeApp) run() error {
	go s.reloadLoop()
	return s.app.Run()
}

func (s *scopeApp) reloadLoop() {
	for {
		s.reload()
		time.Sleep(reloadInterval)
	}
}

func (s *scopeApp) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadInterval)
	defer cancel()

	stations, err := s.client.Stations(ctx)
	if err != nil {
		s.app.QueueUpdateDraw(func() {
			s.status.SetText(fmt.Sprintf("[red]error: %v", err))
		})
		return
	}
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].Callsign < stations[j].Callsign
	})

	s.app.QueueUpdateDraw(func() {
		row, _ := s.table.GetSelection()
		s.stations = stations
		s.fillTable()
		if row >= 1 && row <= len(stations) {
			s.table.Select(row, 0)
		}
		s.status.SetText(fmt.Sprintf("[gray]%d stations · r refresh · q quit", len(stations)))
	})
}

func (s *scopeApp) fillTable() {
	s.table.Clear()
	for col, h := range []string{"CALLSIGN", "CAT", "IN", "OUT", "REGION"} {
		s.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for i, st := range s.stations {
		color := tcell.ColorWhite
		if st.Count.InRegion > 0 {
			color = tcell.ColorAqua
		} else if st.Count.Inbound+st.Count.Outbound > 0 {
			color = tcell.ColorOrange
		}
		row := i + 1
		s.table.SetCell(row, 0, tview.NewTableCell(st.Callsign).SetTextColor(color))
		s.table.SetCell(row, 1, tview.NewTableCell(st.Category).SetTextColor(color))
		s.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", st.Count.Inbound)).SetTextColor(color))
		s.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d", st.Count.Outbound)).SetTextColor(color))
		s.table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%d", st.Count.InRegion)).SetTextColor(color))
	}
}

// showDetail fetches the selected station's detail (with geometry) off the
// UI goroutine and renders it.
func (s *scopeApp) showDetail(idx int) {
	if idx < 0 || idx >= len(s.stations) {
		return
	}
	callsign := s.stations[idx].Callsign
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadInterval)
		defer cancel()
		view, err := s.client.Station(ctx, callsign)
		s.app.QueueUpdateDraw(func() {
			if err != nil {
				s.detail.SetText(fmt.Sprintf("[red]error: %v", err))
				return
			}
			s.detail.SetText(formatDetail(view))
		})
	}()
}

func formatDetail(st server.StationView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]%s[-] (%s)\n\n", st.Callsign, st.Category)
	if st.Country != "" {
		fmt.Fprintf(&b, "Country:   %s\n", st.Country)
	}
	fmt.Fprintf(&b, "Position:  %.4f, %.4f\n", st.Latitude, st.Longitude)
	fmt.Fprintf(&b, "Online:    %s\n\n", (time.Duration(st.SessionSeconds) * time.Second).String())

	fmt.Fprintf(&b, "Inbound:   %d\nOutbound:  %d\nIn region: %d\n\n",
		st.Count.Inbound, st.Count.Outbound, st.Count.InRegion)

	fmt.Fprintf(&b, "Coverage:  %s", st.GeometryKind)
	if len(st.Ring) > 0 {
		fmt.Fprintf(&b, " (%d vertices)", len(st.Ring))
	}
	b.WriteString("\n")

	if st.Atis != "" {
		fmt.Fprintf(&b, "\n[aqua]ATIS[-]\n%s\n", st.Atis)
	}
	return b.String()
}

func (s *scopeApp) requestRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadInterval)
	defer cancel()
	if err := s.client.Refresh(ctx); err != nil {
		s.app.QueueUpdateDraw(func() {
			s.status.SetText(fmt.Sprintf("[red]refresh failed: %v", err))
		})
	}
}

func main() {
	fs := flag.NewFlagSet("atcscope", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "atcmapd base URL")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("ATCMAP")); err != nil {
		log.Fatal(err)
	}

	if err := newScopeApp(api.NewClient(*serverURL)).run(); err != nil {
		log.Fatalf("atcscope failed: %v", err)
	}
}
