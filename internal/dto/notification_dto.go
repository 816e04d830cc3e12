package dto

type DeadlinePreferenceRequest struct {
	Enabled   bool `json:"enabled"`
	DaysAhead int  `json:"days_ahead" validate:"required,min=1,max=30"`
}

type DeadlinePreferenceResponse struct {
	Enabled   bool `json:"enabled"`
	DaysAhead int  `json:"days_ahead"`
}

type DeadlineSummaryResponse struct {
	Overdue  int64 `json:"overdue"`
	Upcoming int64 `json:"upcoming"`
}

type SweepReportResponse struct {
	Users   int  `json:"users"`
	Sent    int  `json:"sent"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	Locked  bool `json:"locked"`
}

type TestNotificationResponse struct {
	Sent  bool `json:"sent"`
	Notes int  `json:"notes"`
}
