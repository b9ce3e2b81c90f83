package model

// Project is a Wrike folder flagged as a project (GET /folders?project=true).
type Project struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
