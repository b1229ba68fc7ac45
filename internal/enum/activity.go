package enum

type ActivityType string

const (
	ActivitySent     ActivityType = "SENT"
	ActivityReceived ActivityType = "RECEIVED"
)

func (t ActivityType) String() string {
	return string(t)
}

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "SUCCESS"
	ActivityStatusFailed  ActivityStatus = "FAILED"
	ActivityStatusRescued ActivityStatus = "RESCUED"
)

func (t ActivityStatus) String() string {
	return string(t)
}
