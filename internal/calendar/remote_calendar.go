package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/hours"
	"github.com/username/business-calendar/pkg/dateutil"
)

const (
	// DefaultRemoteURL is the public feiertage-api.de endpoint
	DefaultRemoteURL = "https://feiertage-api.de/api/"

	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// RemoteCalendar implements Calendar using the feiertage-api.de holiday API.
// It exists to cross-check the computed calendar against a published source.
type RemoteCalendar struct {
	apiURL       string
	jurisdiction Jurisdiction
	policy       hours.Policy
	cacheTTL     time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
	cache        map[int]*cachedYear
	cacheMu      sync.RWMutex
}

type cachedYear struct {
	data      []Holiday
	fetchedAt time.Time
}

// feiertagEntry is a single value of the API response object, keyed by holiday name
type feiertagEntry struct {
	Datum   string `json:"datum"`
	Hinweis string `json:"hinweis"`
}

// NewRemoteCalendar creates a new RemoteCalendar instance
func NewRemoteCalendar(apiURL string, jurisdiction Jurisdiction, policy hours.Policy, cacheTTL, timeout time.Duration, logger *zap.Logger) *RemoteCalendar {
	if apiURL == "" {
		apiURL = DefaultRemoteURL
	}
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	return &RemoteCalendar{
		apiURL:       apiURL,
		jurisdiction: jurisdiction,
		policy:       policy,
		cacheTTL:     cacheTTL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		cache:  make(map[int]*cachedYear),
	}
}

// Holidays returns the published holidays of a year, sorted ascending by date
func (rc *RemoteCalendar) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	rc.cacheMu.RLock()
	if cached, ok := rc.cache[year]; ok {
		if time.Since(cached.fetchedAt) < rc.cacheTTL {
			rc.cacheMu.RUnlock()
			rc.logger.Debug("Using cached holidays", zap.Int("year", year))
			return append([]Holiday(nil), cached.data...), nil
		}
	}
	rc.cacheMu.RUnlock()

	holidays, err := rc.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}

	rc.cacheMu.Lock()
	rc.cache[year] = &cachedYear{
		data:      holidays,
		fetchedAt: time.Now(),
	}
	rc.cacheMu.Unlock()

	rc.logger.Info("Holidays fetched and cached",
		zap.Int("year", year),
		zap.String("state", rc.jurisdiction.State),
		zap.Int("holidays", len(holidays)))

	return append([]Holiday(nil), holidays...), nil
}

// IsWorkday checks if the given date is a working day
func (rc *RemoteCalendar) IsWorkday(date time.Time) (bool, int, error) {
	dayInfo, err := rc.GetDayInfo(date)
	if err != nil {
		return false, 0, err
	}

	return dayInfo.IsWorkday, dayInfo.WorkingMinutes, nil
}

// GetDayInfo returns detailed info for a specific day
func (rc *RemoteCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	holidays, err := rc.Holidays(context.Background(), date.Year())
	if err != nil {
		return nil, err
	}

	key := dateutil.FormatDate(date)
	var holiday *Holiday
	for i := range holidays {
		if holidays[i].Date == key {
			h := holidays[i]
			holiday = &h
			break
		}
	}

	day := classifyDay(date, holiday, rc.policy.WorkingMinutes())
	return &day, nil
}

// GetMonthInfo returns calendar info for the entire month
func (rc *RemoteCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	return buildMonth(year, month, rc.GetDayInfo)
}

// fetchYear fetches one year from the API
func (rc *RemoteCalendar) fetchYear(ctx context.Context, year int) ([]Holiday, error) {
	// Build URL: https://feiertage-api.de/api/?jahr=2024&nur_land=HE
	query := url.Values{}
	query.Set("jahr", strconv.Itoa(year))
	query.Set("nur_land", rc.jurisdiction.State)
	reqURL := rc.apiURL + "?" + query.Encode()

	rc.logger.Debug("Fetching holidays",
		zap.String("url", reqURL),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp map[string]feiertagEntry
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	return rc.toHolidays(year, apiResp), nil
}

// toHolidays converts the API map into a sorted holiday list. The API does not
// report scope; a date shared with a computed national holiday counts as national.
func (rc *RemoteCalendar) toHolidays(year int, entries map[string]feiertagEntry) []Holiday {
	computed := make(map[string]Holiday)
	for _, h := range HolidaysFor(year, rc.jurisdiction) {
		if _, ok := computed[h.Date]; !ok {
			computed[h.Date] = h
		}
	}

	holidays := make([]Holiday, 0, len(entries))
	for name, entry := range entries {
		date, err := time.Parse(dateutil.DateLayout, entry.Datum)
		if err != nil {
			rc.logger.Warn("Failed to parse date",
				zap.String("holiday", name),
				zap.String("date", entry.Datum),
				zap.Error(err))
			continue
		}

		h := Holiday{
			Date:      dateutil.FormatDate(date),
			LocalName: name,
			Scope:     ScopeState,
		}
		if known, ok := computed[h.Date]; ok {
			h.InternationalName = known.InternationalName
			h.Scope = known.Scope
		}
		holidays = append(holidays, h)
	}

	sort.Slice(holidays, func(i, j int) bool {
		if holidays[i].Date != holidays[j].Date {
			return holidays[i].Date < holidays[j].Date
		}
		return holidays[i].LocalName < holidays[j].LocalName
	})

	return holidays
}

// ClearCache clears the cache
func (rc *RemoteCalendar) ClearCache() {
	rc.cacheMu.Lock()
	defer rc.cacheMu.Unlock()

	rc.cache = make(map[int]*cachedYear)
	rc.logger.Info("Holiday cache cleared")
}

// DiffHolidays compares two holiday lists by date.
// missing: dates in want but not in got; extra: dates in got but not in want.
func DiffHolidays(want, got []Holiday) (missing, extra []Holiday) {
	gotDates := make(map[string]struct{}, len(got))
	for _, h := range got {
		gotDates[h.Date] = struct{}{}
	}
	wantDates := make(map[string]struct{}, len(want))
	for _, h := range want {
		wantDates[h.Date] = struct{}{}
	}

	for _, h := range want {
		if _, ok := gotDates[h.Date]; !ok {
			missing = append(missing, h)
		}
	}
	for _, h := range got {
		if _, ok := wantDates[h.Date]; !ok {
			extra = append(extra, h)
		}
	}
	return missing, extra
}
