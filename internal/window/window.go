// Package window implements the evaluation time window and the timestamp
// reconciliation used to correlate locally-triggered events with
// asynchronously-recorded remote records.
//
// The remote platform is inconsistent about which field carries the
// authoritative time and how it is formatted, so reconciliation is written
// defensively: a fixed list of candidate fields is scanned in order and each
// value is reduced through a fixed normalization sequence before parsing.
// Server-side time filters are treated as best-effort only; callers re-filter
// client-side with this package.
package window

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the normalized form every remote text timestamp is reduced
// to before parsing: "YYYY-MM-DD HH:MM:SS" in UTC.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultLookback is how far before now the window starts when no explicit
// boundary is supplied.
const DefaultLookback = 5 * time.Minute

// timestampFields are the known timestamp field names, in trial order.
var timestampFields = [...]string{"start_time", "created_at", "timestamp", "end_time"}

// Window is one evaluation run's time window. Records whose reconciled
// timestamp is at or after Start are considered caused by the run.
type Window struct {
	// Start is the window boundary instant
	Start time.Time

	// Since is the boundary in TimeLayout form, used verbatim as the
	// server-side filter value and echoed in outcomes
	Since string
}

// At builds a window from an explicit boundary ("YYYY-MM-DD HH:MM:SS") or,
// when explicit is empty, from now minus DefaultLookback. The platform stores
// timestamps as local wall-clock text, so the boundary is formatted from the
// local clock and reparsed through TimeLayout, pinning it to the same naive
// frame record timestamps land in.
func At(explicit string, now time.Time) (Window, error) {
	if explicit != "" {
		start, err := time.Parse(TimeLayout, explicit)
		if err != nil {
			return Window{}, fmt.Errorf("invalid evaluation start time %q: %w", explicit, err)
		}
		return Window{Start: start, Since: explicit}, nil
	}
	since := now.Add(-DefaultLookback).Format(TimeLayout)
	start, err := time.Parse(TimeLayout, since)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window boundary %q: %w", since, err)
	}
	return Window{Start: start, Since: since}, nil
}

// ParseTimestamp normalizes one remote text timestamp and parses it.
// The normalization sequence handles every representation the platform has
// been seen to emit: a trailing "Z", a "T" date/time separator, a "+HH:MM"
// offset suffix, and fractional seconds. Trial order is fixed.
func ParseTimestamp(value string) (time.Time, error) {
	s := strings.ReplaceAll(value, "Z", "")
	s = strings.ReplaceAll(s, "T", " ")
	if i := strings.Index(s, "+"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return time.Parse(TimeLayout, s)
}

// RecordTime scans a remote record for the first field that parses as a
// timestamp. Fields are tried in declared order; for each field the record
// itself is consulted before its completion_metadata sub-mapping. Values
// that are not text are skipped. ok is false when nothing parses.
func RecordTime(record map[string]interface{}) (ts time.Time, ok bool) {
	sources := []map[string]interface{}{record}
	if meta, isMap := record["completion_metadata"].(map[string]interface{}); isMap {
		sources = append(sources, meta)
	}

	for _, field := range timestampFields {
		for _, source := range sources {
			text, isText := source[field].(string)
			if !isText {
				continue
			}
			if parsed, err := ParseTimestamp(text); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// Contains reports whether an instant falls in the window (at or after the
// start boundary).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start)
}

// ContainsEpoch applies the numeric-epoch policy: records that carry raw
// epoch seconds are compared directly against the boundary epoch, with no
// text parsing involved.
func (w Window) ContainsEpoch(epochSecs float64) bool {
	return epochSecs >= float64(w.Start.Unix())
}

// FilterRecords returns the records whose reconciled timestamp falls in the
// window. Records with no parseable timestamp are excluded.
func (w Window) FilterRecords(records []map[string]interface{}) []map[string]interface{} {
	var in []map[string]interface{}
	for _, rec := range records {
		if ts, ok := RecordTime(rec); ok && w.Contains(ts) {
			in = append(in, rec)
		}
	}
	return in
}

// ReconciledCount resolves the zero-candidate edge case: an empty in-window
// set over an empty unfiltered set is a definite zero (genuine absence), not
// an indication that client-side filtering failed.
func ReconciledCount(inWindow, total int) int {
	if inWindow > 0 || total == 0 {
		return inWindow
	}
	return 0
}
