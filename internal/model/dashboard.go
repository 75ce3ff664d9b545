package model

// Totals are the server-computed counters of a client dashboard.
type Totals struct {
	ActiveCases    int `json:"activeCases"`
	SolvedProblems int `json:"solvedProblems"`
	TotalProblems  int `json:"totalProblems"`
}

// ServiceTrend is one point of the service demand series.
type ServiceTrend struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Dashboard is the aggregate view for one client, replaced wholesale on every load.
type Dashboard struct {
	FullName      string         `json:"fullName"`
	Picture       string         `json:"picture"`
	Totals        *Totals        `json:"totals"`
	ServiceTrends []ServiceTrend `json:"serviceTrends"`
	Problems      []Problem      `json:"problems" binding:"dive"`
	AssignedCA    []string       `json:"assignedCA"`
}

// NotificationType distinguishes advisor messages from status updates.
type NotificationType string

const (
	NotificationMessage NotificationType = "message"
	NotificationStatus  NotificationType = "status"
)

// Notification is a derived, dismissible dashboard notice.
type Notification struct {
	Type NotificationType `json:"type"`
	Text string           `json:"text"`
}
