package model

// Article is a compliance library entry.
type Article struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
	Citation string   `json:"citation"`
	Link     string   `json:"link"`
}

// ArticleDraft is what an admin publishes. Tags travel as the comma-separated
// text entered; the API splits them.
type ArticleDraft struct {
	Title    string `json:"title" binding:"required"`
	Tags     string `json:"tags"`
	Summary  string `json:"summary" binding:"required"`
	Citation string `json:"citation"`
	Link     string `json:"link"`
}
