package model

// Task is a Wrike task as returned by GET /tasks.
type Task struct {
	ID             string   `json:"id"`
	AccountID      string   `json:"accountId"`
	Title          string   `json:"title"`
	Status         string   `json:"status"`
	Importance     string   `json:"importance"`
	CreatedDate    string   `json:"createdDate"`
	UpdatedDate    string   `json:"updatedDate"`
	Permalink      string   `json:"permalink"`
	ResponsibleIDs []string `json:"responsibleIds"`
	ParentIDs      []string `json:"parentIds"`
}

// NormalizedTask is a task renamed to the export field names.
type NormalizedTask struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Assignee       string   `json:"assignee" yaml:"assignee"`
	Status         string   `json:"status" yaml:"status"`
	CreatedAt      string   `json:"created_at" yaml:"created_at"`
	UpdatedAt      string   `json:"updated_at" yaml:"updated_at"`
	TicketURL      string   `json:"ticket_url" yaml:"ticket_url"`
	ResponsibleIDs []string `json:"responsible_ids" yaml:"responsible_ids"`
	Collections    []string `json:"collections" yaml:"collections"`
}
