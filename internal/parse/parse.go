// Package parse turns a single line of user input into event or task fields.
//
// The grammar is prefix based: a recognized date/time prefix is consumed and the
// trimmed remainder becomes the title. Nothing here returns an error; input that
// does not match (or matches but names an impossible date/time) is kept as
// literal title text.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"calpersonal/internal/model"
)

// DateTime is a wall-clock time on a calendar date with no zone attached.
// Callers pick the display zone with In.
type DateTime struct {
	Date   model.Date
	Hour   int
	Minute int
}

func (dt DateTime) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(dt.Date.Year, dt.Date.Month, dt.Date.Day, dt.Hour, dt.Minute, 0, 0, loc)
}

// Range is the result of ParseTimeRange. At most one of the timed pair
// (Start/End) and the all-day pair (AllDayStart/AllDayEnd) is set.
type Range struct {
	Title string

	Start *DateTime
	End   *DateTime

	// AllDayEnd is exclusive.
	AllDayStart *model.Date
	AllDayEnd   *model.Date
}

func (r Range) Timed() bool { return r.Start != nil && r.End != nil }

func (r Range) AllDay() bool { return r.AllDayStart != nil && r.AllDayEnd != nil }

const (
	clock    = `(\d{1,2}):(\d{2})`
	monthDay = `(\d{1,2})/(\d{1,2})`
	fullDate = `(\d{4})/(\d{1,2})/(\d{1,2})`
	dash     = `\s+-\s+`
)

var (
	reTime         = regexp.MustCompile(`^` + clock + dash + clock + `\s`)
	reDateTime     = regexp.MustCompile(`^` + monthDay + `\s+` + clock + dash + clock + `\s`)
	reYearDateTime = regexp.MustCompile(`^` + fullDate + `\s+` + clock + dash + clock + `\s`)
	reDateRange    = regexp.MustCompile(`^` + monthDay + dash + monthDay + `\s`)
	reYearRange    = regexp.MustCompile(`^` + fullDate + dash + fullDate + `\s`)
	reDate         = regexp.MustCompile(`^` + monthDay + `\s`)
	reYearDate     = regexp.MustCompile(`^` + fullDate + `\s`)
	reNotes        = regexp.MustCompile(`\snotes:\s(.+)$`)
)

// rangeRule tries one grammar form; ok=false means "fall through to the next rule".
type rangeRule func(text string, ctx model.Date) (Range, bool)

var rangeRules = []rangeRule{
	parseTimeOnly,
	parseDateTime,
	parseYearDateTime,
	parseDateRange,
	parseYearDateRange,
	parseSingleDate,
	parseSingleYearDate,
}

// ParseTimeRange parses event input relative to ctx (the focused day; its year
// is assumed for M/D forms). Recognized prefixes, first match wins:
//
//	HH:MM - HH:MM title
//	M/D HH:MM - HH:MM title
//	YYYY/M/D HH:MM - HH:MM title
//	M/D - M/D title
//	YYYY/M/D - YYYY/M/D title
//	M/D title
//	YYYY/M/D title
func ParseTimeRange(text string, ctx model.Date) Range {
	for _, rule := range rangeRules {
		if r, ok := rule(text, ctx); ok {
			return r
		}
	}
	return Range{Title: strings.TrimSpace(text)}
}

func parseTimeOnly(text string, ctx model.Date) (Range, bool) {
	m := reTime.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	start, ok1 := dateTimeOf(ctx, m[1], m[2])
	end, ok2 := dateTimeOf(ctx, m[3], m[4])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	return Range{Title: rest(text, m), Start: &start, End: &end}, true
}

func parseDateTime(text string, ctx model.Date) (Range, bool) {
	m := reDateTime.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	day, ok := dateOf(strconv.Itoa(ctx.Year), m[1], m[2])
	if !ok {
		return Range{}, false
	}
	start, ok1 := dateTimeOf(day, m[3], m[4])
	end, ok2 := dateTimeOf(day, m[5], m[6])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	return Range{Title: rest(text, m), Start: &start, End: &end}, true
}

func parseYearDateTime(text string, _ model.Date) (Range, bool) {
	m := reYearDateTime.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	day, ok := dateOf(m[1], m[2], m[3])
	if !ok {
		return Range{}, false
	}
	start, ok1 := dateTimeOf(day, m[4], m[5])
	end, ok2 := dateTimeOf(day, m[6], m[7])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	return Range{Title: rest(text, m), Start: &start, End: &end}, true
}

func parseDateRange(text string, ctx model.Date) (Range, bool) {
	m := reDateRange.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	year := strconv.Itoa(ctx.Year)
	start, ok1 := dateOf(year, m[1], m[2])
	end, ok2 := dateOf(year, m[3], m[4])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	return Range{Title: rest(text, m), AllDayStart: &start, AllDayEnd: &end}, true
}

func parseYearDateRange(text string, _ model.Date) (Range, bool) {
	m := reYearRange.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	start, ok1 := dateOf(m[1], m[2], m[3])
	end, ok2 := dateOf(m[4], m[5], m[6])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	return Range{Title: rest(text, m), AllDayStart: &start, AllDayEnd: &end}, true
}

func parseSingleDate(text string, ctx model.Date) (Range, bool) {
	m := reDate.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	start, ok := dateOf(strconv.Itoa(ctx.Year), m[1], m[2])
	if !ok {
		return Range{}, false
	}
	end := start.AddDays(1)
	return Range{Title: rest(text, m), AllDayStart: &start, AllDayEnd: &end}, true
}

func parseSingleYearDate(text string, _ model.Date) (Range, bool) {
	m := reYearDate.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	start, ok := dateOf(m[1], m[2], m[3])
	if !ok {
		return Range{}, false
	}
	end := start.AddDays(1)
	return Range{Title: rest(text, m), AllDayStart: &start, AllDayEnd: &end}, true
}

// TaskInput is the result of ParseDateAndNote. Empty Due/Notes mean absent.
type TaskInput struct {
	Title string
	// Due is formatted with model.DueLayout.
	Due   string
	Notes string
}

// ParseDateAndNote parses task input. An optional leading "M/D " or
// "YYYY/M/D " becomes the due date (year defaults to year), and an optional
// trailing " notes: ..." becomes the notes. Both are independent.
func ParseDateAndNote(text string, year int) TaskInput {
	var in TaskInput
	remainder := text
	if m := reDate.FindStringSubmatch(text); m != nil {
		if d, ok := dateOf(strconv.Itoa(year), m[1], m[2]); ok {
			in.Due = model.FormatDue(d)
			remainder = rest(text, m)
		}
	} else if m := reYearDate.FindStringSubmatch(text); m != nil {
		if d, ok := dateOf(m[1], m[2], m[3]); ok {
			in.Due = model.FormatDue(d)
			remainder = rest(text, m)
		}
	}

	if loc := reNotes.FindStringSubmatchIndex(remainder); loc != nil {
		in.Title = strings.TrimSpace(remainder[:loc[0]])
		in.Notes = remainder[loc[2]:loc[3]]
		return in
	}
	in.Title = strings.TrimSpace(remainder)
	return in
}

// rest returns the trimmed text following the full match m[0].
func rest(text string, m []string) string {
	return strings.TrimSpace(text[len(m[0]):])
}

func dateOf(year, month, day string) (model.Date, bool) {
	y, err1 := strconv.Atoi(year)
	mo, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return model.Date{}, false
	}
	if !model.ValidDate(y, time.Month(mo), d) {
		return model.Date{}, false
	}
	return model.Date{Year: y, Month: time.Month(mo), Day: d}, true
}

func dateTimeOf(day model.Date, hour, minute string) (DateTime, bool) {
	h, err1 := strconv.Atoi(hour)
	mi, err2 := strconv.Atoi(minute)
	if err1 != nil || err2 != nil {
		return DateTime{}, false
	}
	if h < 0 || h > 23 || mi < 0 || mi > 59 {
		return DateTime{}, false
	}
	return DateTime{Date: day, Hour: h, Minute: mi}, true
}
