package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/slots"
	"github.com/username/business-calendar/pkg/dateutil"
)

const (
	msgInvalidDate  = "invalid date, expected YYYY-MM-DD"
	msgInvalidTime  = "invalid time, expected HH:MM"
	msgInvalidYear  = "invalid year"
	msgInvalidMonth = "invalid month, expected 1-12"
	msgInternal     = "internal error"
)

// HolidaysResponse lists the holidays of a year
type HolidaysResponse struct {
	Year     int                `json:"year"`
	State    string             `json:"state"`
	Holidays []calendar.Holiday `json:"holidays"`
}

// DayResponse describes a single calendar day
type DayResponse struct {
	Date           string            `json:"date"`
	Weekday        string            `json:"weekday"`
	Type           string            `json:"type"`
	IsBusinessDay  bool              `json:"isBusinessDay"`
	WorkingMinutes int               `json:"workingMinutes"`
	Holiday        *calendar.Holiday `json:"holiday"`
	Note           string            `json:"note,omitempty"`
}

// NextBusinessDayResponse answers the next business day query
type NextBusinessDayResponse struct {
	Date            string `json:"date"`
	NextBusinessDay string `json:"nextBusinessDay"`
}

// MonthResponse summarizes a month
type MonthResponse struct {
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	WorkDays       int           `json:"workDays"`
	Weekends       int           `json:"weekends"`
	Holidays       int           `json:"holidays"`
	WorkingMinutes int           `json:"workingMinutes"`
	Days           []DayResponse `json:"days"`
}

// LunchBreakResponse classifies a time of day
type LunchBreakResponse struct {
	Time       string `json:"time"`
	LunchBreak bool   `json:"lunchBreak"`
	Open       bool   `json:"open"`
}

// SlotsResponse lists the appointment slots of a day
type SlotsResponse struct {
	Date  string       `json:"date"`
	Slots []slots.Slot `json:"slots"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewDayResponse converts calendar day info into its API form
func NewDayResponse(day *calendar.DayInfo) DayResponse {
	return DayResponse{
		Date:           dateutil.FormatDate(day.Date),
		Weekday:        day.Date.Weekday().String(),
		Type:           day.Type.String(),
		IsBusinessDay:  day.IsWorkday,
		WorkingMinutes: day.WorkingMinutes,
		Holiday:        day.Holiday,
		Note:           day.Note,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHolidays GET /api/v1/holidays/{year}
func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		s.logger.Warn("Invalid year", zap.String("year", mux.Vars(r)["year"]))
		respondError(w, http.StatusBadRequest, msgInvalidYear)
		return
	}

	respondJSON(w, http.StatusOK, HolidaysResponse{
		Year:     year,
		State:    s.holidays.Jurisdiction().State,
		Holidays: s.holidays.Holidays(year),
	})
}

// handleDay GET /api/v1/days/{date}
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date, ok := s.parseDateVar(w, r)
	if !ok {
		return
	}

	day, err := s.calendar.GetDayInfo(date)
	if err != nil {
		s.logger.Error("Failed to get day info", zap.Time("date", date), zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(w, http.StatusOK, NewDayResponse(day))
}

// handleNextBusinessDay GET /api/v1/days/{date}/next-business-day
func (s *Server) handleNextBusinessDay(w http.ResponseWriter, r *http.Request) {
	date, ok := s.parseDateVar(w, r)
	if !ok {
		return
	}

	next, err := calendar.NextBusinessDay(s.calendar, date)
	if err != nil {
		s.logger.Error("Failed to resolve next business day", zap.Time("date", date), zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(w, http.StatusOK, NextBusinessDayResponse{
		Date:            dateutil.FormatDate(date),
		NextBusinessDay: dateutil.FormatDate(next),
	})
}

// handleMonth GET /api/v1/months/{year}/{month}
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidYear)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, msgInvalidMonth)
		return
	}

	monthInfo, err := s.calendar.GetMonthInfo(year, time.Month(month))
	if err != nil {
		s.logger.Error("Failed to get month info",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	resp := MonthResponse{
		Year:           year,
		Month:          month,
		WorkDays:       monthInfo.WorkDays,
		Weekends:       monthInfo.Weekends,
		Holidays:       monthInfo.Holidays,
		WorkingMinutes: monthInfo.WorkingMinutes,
		Days:           make([]DayResponse, len(monthInfo.Days)),
	}
	for i := range monthInfo.Days {
		resp.Days[i] = NewDayResponse(&monthInfo.Days[i])
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleHours GET /api/v1/hours
func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.policy)
}

// handleLunchBreak GET /api/v1/hours/lunch-break/{time}
func (s *Server) handleLunchBreak(w http.ResponseWriter, r *http.Request) {
	t := mux.Vars(r)["time"]

	lunch, err := s.policy.IsLunchBreak(t)
	if err != nil {
		if errors.Is(err, dateutil.ErrInvalidTimeFormat) {
			respondError(w, http.StatusBadRequest, msgInvalidTime)
			return
		}
		s.logger.Error("Failed to classify time", zap.String("time", t), zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	open, err := s.policy.IsOpen(t)
	if err != nil {
		s.logger.Error("Failed to classify time", zap.String("time", t), zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(w, http.StatusOK, LunchBreakResponse{Time: t, LunchBreak: lunch, Open: open})
}

// handleSlots GET /api/v1/slots/{date}
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	date, ok := s.parseDateVar(w, r)
	if !ok {
		return
	}

	offered, err := s.slots.Offer(date)
	if err != nil {
		s.logger.Error("Failed to offer slots", zap.Time("date", date), zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	respondJSON(w, http.StatusOK, SlotsResponse{
		Date:  dateutil.FormatDate(date),
		Slots: offered,
	})
}

func (s *Server) parseDateVar(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := mux.Vars(r)["date"]

	date, err := dateutil.ParseDate(raw)
	if err != nil {
		s.logger.Warn("Invalid date", zap.String("date", raw), zap.Error(err))
		respondError(w, http.StatusBadRequest, msgInvalidDate)
		return time.Time{}, false
	}
	return date, true
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}
