package utils

import "github.com/roksva123/go-wrike-export/internal/model"

// TaskFieldMap maps Wrike task fields to export field names.
var TaskFieldMap = map[string]string{
	"id":             "id",
	"title":          "name",
	"accountId":      "assignee",
	"importance":     "status",
	"createdDate":    "created_at",
	"updatedDate":    "updated_at",
	"permalink":      "ticket_url",
	"responsibleIds": "responsible_ids",
	"parentIds":      "collections",
}

// UserFieldMap maps Wrike contact fields to export field names.
var UserFieldMap = map[string]string{
	"id":           "id",
	"firstName":    "first_name",
	"lastName":     "last_name",
	"primaryEmail": "email",
}

// MapTask renames a Wrike task to the export shape. Missing id lists become
// empty slices.
func MapTask(t model.Task) model.NormalizedTask {
	return model.NormalizedTask{
		ID:             t.ID,
		Name:           t.Title,
		Assignee:       t.AccountID,
		Status:         t.Importance,
		CreatedAt:      t.CreatedDate,
		UpdatedAt:      t.UpdatedDate,
		TicketURL:      t.Permalink,
		ResponsibleIDs: cloneIDs(t.ResponsibleIDs),
		Collections:    cloneIDs(t.ParentIDs),
	}
}

func MapTasks(tasks []model.Task) []model.NormalizedTask {
	out := make([]model.NormalizedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, MapTask(t))
	}
	return out
}

func MapUser(u model.User) model.NormalizedUser {
	return model.NormalizedUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.PrimaryEmail,
	}
}

func MapUsers(users []model.User) []model.NormalizedUser {
	out := make([]model.NormalizedUser, 0, len(users))
	for _, u := range users {
		out = append(out, MapUser(u))
	}
	return out
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
