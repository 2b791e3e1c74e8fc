package dto

import "time"

// DailyReportRequest triggers the daily report for Date (YYYY-MM-DD); empty
// means yesterday.
type DailyReportRequest struct {
	Date string `json:"date"`
}

// DailyReportResponse acknowledges an enqueued daily report.
type DailyReportResponse struct {
	JobID string    `json:"job_id"`
	Date  string    `json:"date"`
	Queue time.Time `json:"queued_at"`
}
