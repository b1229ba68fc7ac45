package dto

import "time"

type SendStatus string

const (
	SendStatusSent         SendStatus = "sent"
	SendStatusLimitReached SendStatus = "limit_reached"
	SendStatusError        SendStatus = "error"
)

// SendResult is one entry of the send cycle summary: one row per dispatched
// message, or a single row for a sender that hit its limit or failed.
type SendResult struct {
	Sender    string     `json:"sender"`
	Recipient string     `json:"recipient,omitempty"`
	Status    SendStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
}

type RescueStatus string

const (
	RescueStatusRescued      RescueStatus = "rescued"
	RescueStatusClean        RescueStatus = "clean"
	RescueStatusNoSpamFolder RescueStatus = "no_spam_box_found"
	RescueStatusError        RescueStatus = "error"
)

type RescueResult struct {
	Account string       `json:"account"`
	Status  RescueStatus `json:"status"`
	Rescued int          `json:"rescued,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// CycleCompleted is published on the event bus after each cycle run.
type CycleCompleted struct {
	CycleID     string    `json:"cycleId"`
	CycleType   string    `json:"cycleType"` // "send" or "rescue"
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	Accounts    int       `json:"accounts"`
	Sent        int       `json:"sent,omitempty"`
	Failed      int       `json:"failed,omitempty"`
	LimitHit    int       `json:"limitHit,omitempty"`
	Rescued     int       `json:"rescued,omitempty"`
	Errors      int       `json:"errors"`
}

type WarmupStats struct {
	SentToday   int64 `json:"sentToday"`
	TotalSent   int64 `json:"totalSent"`
	Rescued     int64 `json:"rescued"`
	HealthScore int   `json:"healthScore"`
}

type AccountSummary struct {
	ID                 string    `json:"id"`
	EmailAddress       string    `json:"emailAddress"`
	Status             string    `json:"status"`
	DailyLimit         int       `json:"dailyLimit"`
	SentToday          int64     `json:"sentToday"`
	CurrentWarmupScore int       `json:"currentWarmupScore"`
	CreatedAt          time.Time `json:"createdAt"`
}
