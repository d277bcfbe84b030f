package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of a history day.
const DateLayout = "2006-01-02"

// DailyAggregate summarises one UTC calendar day of checks.
type DailyAggregate struct {
	Date              time.Time
	OperationalChecks int
	TotalChecks       int
	OverallStatus     bool
	UptimePercentage  float64
}

// HistoryView is the rolling-window calendar for one service.
type HistoryView struct {
	Service       string
	Days          []DailyAggregate
	OverallUptime float64
}

// HistoryDay is the dashboard representation of a DailyAggregate.
type HistoryDay struct {
	Date   string  `json:"date"`
	Uptime float64 `json:"uptime"`
	Status bool    `json:"status"`
}

type historyJSON struct {
	Service       string       `json:"service"`
	History       []HistoryDay `json:"history"`
	OverallUptime float64      `json:"overallUptime"`
}

func (h HistoryView) MarshalJSON() ([]byte, error) {
	days := make([]HistoryDay, 0, len(h.Days))
	for _, d := range h.Days {
		days = append(days, HistoryDay{
			Date:   d.Date.Format(DateLayout),
			Uptime: d.UptimePercentage,
			Status: d.OverallStatus,
		})
	}
	return json.Marshal(historyJSON{
		Service:       h.Service,
		History:       days,
		OverallUptime: h.OverallUptime,
	})
}
