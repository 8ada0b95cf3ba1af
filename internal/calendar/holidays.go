package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/business-calendar/pkg/dateutil"
)

// ErrUnknownState is returned for a state code that is not one of the 16 German states
var ErrUnknownState = errors.New("unknown german state")

// Scope is the jurisdictional breadth of a holiday
type Scope string

const (
	ScopeNational Scope = "national"
	ScopeState    Scope = "state"
	ScopeRegional Scope = "regional"
)

// Holiday is a public holiday keyed by its YYYY-MM-DD date
type Holiday struct {
	Date              string `json:"date"`
	LocalName         string `json:"localName"`
	InternationalName string `json:"internationalName"`
	Scope             Scope  `json:"scope"`
}

// Name returns the holiday name for a language tag ("de" or anything else for English)
func (h Holiday) Name(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "de") {
		return h.LocalName
	}
	return h.InternationalName
}

// Jurisdiction selects the German state whose state holidays apply
type Jurisdiction struct {
	State string
}

// DefaultState is Hesse
const DefaultState = "HE"

// DefaultJurisdiction returns the Hesse jurisdiction
func DefaultJurisdiction() Jurisdiction {
	return Jurisdiction{State: DefaultState}
}

var states = map[string]string{
	"BW": "Baden-Württemberg",
	"BY": "Bayern",
	"BE": "Berlin",
	"BB": "Brandenburg",
	"HB": "Bremen",
	"HH": "Hamburg",
	"HE": "Hessen",
	"MV": "Mecklenburg-Vorpommern",
	"NI": "Niedersachsen",
	"NW": "Nordrhein-Westfalen",
	"RP": "Rheinland-Pfalz",
	"SL": "Saarland",
	"SN": "Sachsen",
	"ST": "Sachsen-Anhalt",
	"SH": "Schleswig-Holstein",
	"TH": "Thüringen",
}

// ParseJurisdiction validates a two-letter state code (case-insensitive)
func ParseJurisdiction(code string) (Jurisdiction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := states[code]; !ok {
		return Jurisdiction{}, fmt.Errorf("%w: %q", ErrUnknownState, code)
	}
	return Jurisdiction{State: code}, nil
}

// StateName returns the German name of the jurisdiction's state
func (j Jurisdiction) StateName() string {
	return states[j.State]
}

type holidayDef struct {
	localName         string
	internationalName string
	scope             Scope
	states            []string // state scope only
	since             int      // first year the holiday applies, 0 = always
	date              func(year int, easter time.Time) time.Time
}

func fixed(month time.Month, day int) func(int, time.Time) time.Time {
	return func(year int, _ time.Time) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
}

func easterOffset(days int) func(int, time.Time) time.Time {
	return func(_ int, easter time.Time) time.Time {
		return easter.AddDate(0, 0, days)
	}
}

// Wednesday before November 23
func repentanceDay(year int, _ time.Time) time.Time {
	nov22 := time.Date(year, time.November, 22, 0, 0, 0, 0, time.UTC)
	back := (int(nov22.Weekday()) - int(time.Wednesday) + 7) % 7
	return nov22.AddDate(0, 0, -back)
}

var nationalHolidays = []holidayDef{
	{localName: "Neujahr", internationalName: "New Year's Day", scope: ScopeNational, date: fixed(time.January, 1)},
	{localName: "Karfreitag", internationalName: "Good Friday", scope: ScopeNational, date: easterOffset(-2)},
	{localName: "Ostermontag", internationalName: "Easter Monday", scope: ScopeNational, date: easterOffset(1)},
	{localName: "Tag der Arbeit", internationalName: "Labour Day", scope: ScopeNational, date: fixed(time.May, 1)},
	{localName: "Christi Himmelfahrt", internationalName: "Ascension Day", scope: ScopeNational, date: easterOffset(39)},
	{localName: "Pfingstmontag", internationalName: "Whit Monday", scope: ScopeNational, date: easterOffset(50)},
	{localName: "Tag der Deutschen Einheit", internationalName: "German Unity Day", scope: ScopeNational, date: fixed(time.October, 3)},
	{localName: "1. Weihnachtstag", internationalName: "Christmas Day", scope: ScopeNational, date: fixed(time.December, 25)},
	{localName: "2. Weihnachtstag", internationalName: "Boxing Day", scope: ScopeNational, date: fixed(time.December, 26)},
}

var stateHolidays = []holidayDef{
	{localName: "Heilige Drei Könige", internationalName: "Epiphany", scope: ScopeState,
		states: []string{"BW", "BY", "ST"}, date: fixed(time.January, 6)},
	{localName: "Internationaler Frauentag", internationalName: "International Women's Day", scope: ScopeState,
		states: []string{"BE"}, since: 2019, date: fixed(time.March, 8)},
	{localName: "Internationaler Frauentag", internationalName: "International Women's Day", scope: ScopeState,
		states: []string{"MV"}, since: 2023, date: fixed(time.March, 8)},
	{localName: "Fronleichnam", internationalName: "Corpus Christi", scope: ScopeState,
		states: []string{"BW", "BY", "HE", "NW", "RP", "SL"}, date: easterOffset(60)},
	{localName: "Mariä Himmelfahrt", internationalName: "Assumption Day", scope: ScopeState,
		states: []string{"SL"}, date: fixed(time.August, 15)},
	{localName: "Weltkindertag", internationalName: "World Children's Day", scope: ScopeState,
		states: []string{"TH"}, since: 2019, date: fixed(time.September, 20)},
	{localName: "Reformationstag", internationalName: "Reformation Day", scope: ScopeState,
		states: []string{"BB", "MV", "SN", "ST", "TH"}, date: fixed(time.October, 31)},
	{localName: "Reformationstag", internationalName: "Reformation Day", scope: ScopeState,
		states: []string{"HB", "HH", "NI", "SH"}, since: 2018, date: fixed(time.October, 31)},
	{localName: "Allerheiligen", internationalName: "All Saints' Day", scope: ScopeState,
		states: []string{"BW", "BY", "NW", "RP", "SL"}, date: fixed(time.November, 1)},
	{localName: "Buß- und Bettag", internationalName: "Day of Repentance and Prayer", scope: ScopeState,
		states: []string{"SN"}, date: repentanceDay},
}

func (d holidayDef) appliesTo(year int, state string) bool {
	if d.since != 0 && year < d.since {
		return false
	}
	if d.scope == ScopeNational {
		return true
	}
	for _, s := range d.states {
		if s == state {
			return true
		}
	}
	return false
}

// EasterSunday computes Easter Sunday of the Gregorian calendar using the
// Gauss algorithm in its Meeus/Jones/Butcher integer form
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// HolidaysForYear returns the public holidays of the default jurisdiction (Hesse)
func HolidaysForYear(year int) []Holiday {
	return HolidaysFor(year, DefaultJurisdiction())
}

// HolidaysFor returns the national holidays plus the state holidays of j,
// sorted ascending by date. Two holidays may share a date (Ascension Day on
// May 1 when Easter falls on March 23); both are kept.
func HolidaysFor(year int, j Jurisdiction) []Holiday {
	easter := EasterSunday(year)

	type dated struct {
		at      time.Time
		holiday Holiday
	}
	list := make([]dated, 0, len(nationalHolidays)+2)

	for _, defs := range [][]holidayDef{nationalHolidays, stateHolidays} {
		for _, def := range defs {
			if !def.appliesTo(year, j.State) {
				continue
			}
			at := def.date(year, easter)
			list = append(list, dated{
				at: at,
				holiday: Holiday{
					Date:              dateutil.FormatDate(at),
					LocalName:         def.localName,
					InternationalName: def.internationalName,
					Scope:             def.scope,
				},
			})
		}
	}

	sort.SliceStable(list, func(i, k int) bool {
		return list[i].at.Before(list[k].at)
	})

	holidays := make([]Holiday, len(list))
	for i, d := range list {
		holidays[i] = d.holiday
	}
	return holidays
}
