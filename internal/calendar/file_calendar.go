package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/business-calendar/pkg/dateutil"
)

// FileCalendar implements Calendar from a local overrides file.
// It only knows the days listed in the file; other days yield ErrDayNotFound.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	data     map[string]DayInfo // key: "YYYY-MM-DD"
	mu       sync.RWMutex
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		data:     make(map[string]DayInfo),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	if err := fc.LoadFrom(file); err != nil {
		return err
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("days", fc.Len()))

	return nil
}

// LoadFrom parses override lines from r, replacing previously loaded data.
//
// Format: YYYY-MM-DD type minutes [note]
// Example: 2024-12-24 closed 0 Heiligabend
func (fc *FileCalendar) LoadFrom(r io.Reader) error {
	data := make(map[string]DayInfo)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		dateStr := parts[0]
		typeStr := parts[1]
		minutesStr := parts[2]
		note := strings.Join(parts[3:], " ")

		date, err := time.Parse(dateutil.DateLayout, dateStr)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("date", dateStr), zap.Error(err))
			continue
		}

		minutes, err := strconv.Atoi(minutesStr)
		if err != nil || minutes < 0 {
			fc.logger.Warn("Failed to parse minutes", zap.String("minutes", minutesStr), zap.Error(err))
			continue
		}

		var dayType DayType
		isWorkday := false
		switch typeStr {
		case "workday":
			dayType = DayTypeWorkday
			isWorkday = true
		case "shortened":
			dayType = DayTypeShortened
			isWorkday = true
		case "weekend":
			dayType = DayTypeWeekend
		case "holiday":
			dayType = DayTypeHoliday
		case "closed":
			dayType = DayTypeClosed
		default:
			fc.logger.Warn("Unknown day type", zap.String("type", typeStr))
			continue
		}

		if !isWorkday {
			minutes = 0
		}

		data[dateStr] = DayInfo{
			Date:           date,
			Type:           dayType,
			WorkingMinutes: minutes,
			IsWorkday:      isWorkday,
			Note:           note,
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.mu.Lock()
	fc.data = data
	fc.mu.Unlock()

	return nil
}

// Len returns the number of override days
func (fc *FileCalendar) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.data)
}

// IsWorkday checks if the given date is a working day
func (fc *FileCalendar) IsWorkday(date time.Time) (bool, int, error) {
	dayInfo, err := fc.GetDayInfo(date)
	if err != nil {
		return false, 0, err
	}

	return dayInfo.IsWorkday, dayInfo.WorkingMinutes, nil
}

// GetMonthInfo returns the listed days of a month
func (fc *FileCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	monthInfo := &MonthInfo{
		Year:  year,
		Month: month,
	}

	fc.mu.RLock()
	defer fc.mu.RUnlock()

	for d := 1; d <= dateutil.DaysInMonth(year, month); d++ {
		key := dateutil.FormatDate(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		if day, ok := fc.data[key]; ok {
			monthInfo.addDay(day)
		}
	}

	if len(monthInfo.Days) == 0 {
		return nil, fmt.Errorf("%w: month %d-%02d", ErrDayNotFound, year, month)
	}

	return monthInfo, nil
}

// GetDayInfo returns detailed info for a specific day
func (fc *FileCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	key := dateutil.FormatDate(date)

	fc.mu.RLock()
	day, ok := fc.data[key]
	fc.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDayNotFound, key)
	}

	return &day, nil
}
