package stats

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/st3v3nmw/focusguard/internal/models"
)

// Excel needs the BOM to read the file as UTF-8.
const bom = "\ufeff"

func flag(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

type browsingRow struct {
	date     string
	domain   string
	blocking bool
	total    int64
}

type patienceRow struct {
	date   string
	domain string
	count  int
}

// WriteBrowsingCSV writes total minutes per (date, domain, blocking flag),
// ordered by date. start and end filter on the stored UTC date.
func WriteBrowsingCSV(w io.Writer, sessions []models.BrowsingSession, start, end string, header []string) error {
	var rows []*browsingRow
	index := make(map[string]*browsingRow)

	for _, s := range sessions {
		if !inRange(s.Date, start, end) {
			continue
		}

		key := s.Date + "|" + s.Domain + "|" + flag(s.IsBlockingEnabled)
		row, ok := index[key]
		if !ok {
			row = &browsingRow{date: s.Date, domain: s.Domain, blocking: s.IsBlockingEnabled}
			index[key] = row
			rows = append(rows, row)
		}
		row.total += s.Duration
	}

	slices.SortStableFunc(rows, func(a, b *browsingRow) int { return cmp.Compare(a.date, b.date) })

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		minutes := math.Round(float64(row.total)/1000/60*100) / 100
		records = append(records, []string{row.date, row.domain, fmt.Sprintf("%.2f", minutes), flag(row.blocking)})
	}

	return writeCSV(w, header, records)
}

// WritePatienceCSV writes event counts per (date, domain), ordered by date.
func WritePatienceCSV(w io.Writer, events []models.PatienceEvent, start, end string, header []string) error {
	var rows []*patienceRow
	index := make(map[string]*patienceRow)

	for _, e := range events {
		if !inRange(e.Date, start, end) {
			continue
		}

		key := e.Date + "|" + e.Domain
		row, ok := index[key]
		if !ok {
			row = &patienceRow{date: e.Date, domain: e.Domain}
			index[key] = row
			rows = append(rows, row)
		}
		row.count++
	}

	slices.SortStableFunc(rows, func(a, b *patienceRow) int { return cmp.Compare(a.date, b.date) })

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{row.date, row.domain, strconv.Itoa(row.count)})
	}

	return writeCSV(w, header, records)
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

func (r *Recorder) BrowsingCSV(ctx context.Context, w io.Writer, start, end string, header []string) error {
	sessions, _, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	return WriteBrowsingCSV(w, sessions, start, end, header)
}

func (r *Recorder) PatienceCSV(ctx context.Context, w io.Writer, start, end string, header []string) error {
	_, events, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	return WritePatienceCSV(w, events, start, end, header)
}
