package harvest

// Harvest v2 API payloads, limited to the fields the engine reads.

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type projectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type taskRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type timeEntry struct {
	ID        int64      `json:"id"`
	SpentDate string     `json:"spent_date"`
	Hours     float64    `json:"hours"`
	Notes     string     `json:"notes"`
	IsLocked  bool       `json:"is_locked"`
	Project   projectRef `json:"project"`
	Task      taskRef    `json:"task"`
}

type timeEntriesResponse struct {
	TimeEntries []timeEntry `json:"time_entries"`
	NextPage    *int        `json:"next_page"`
}

type createEntryRequest struct {
	ProjectID int64   `json:"project_id"`
	TaskID    int64   `json:"task_id"`
	SpentDate string  `json:"spent_date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
}

type createEntryResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type accountsResponse struct {
	User     userResponse `json:"user"`
	Accounts []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"accounts"`
}
