package wrike

import (
	"context"
	"net/url"
	"strings"

	"github.com/roksva123/go-wrike-export/internal/model"
)

// maxIDsPerRequest is the Wrike limit for comma-separated id lists.
const maxIDsPerRequest = 100

// taskFields requests the optional relation fields the export needs.
const taskFields = `["responsibleIds","parentIds"]`

// FetchTasks returns all tasks visible to the token.
func (c *Client) FetchTasks(ctx context.Context, token string) ([]model.Task, error) {
	query := url.Values{}
	query.Set("fields", taskFields)

	var tasks []model.Task
	if err := c.get(ctx, "tasks", token, "/tasks", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FetchUsers returns the contacts for ids, requesting them in batches. No
// request is made when ids is empty.
func (c *Client) FetchUsers(ctx context.Context, token string, ids []string) ([]model.User, error) {
	users := make([]model.User, 0, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(ids))
		escaped := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			escaped = append(escaped, url.PathEscape(id))
		}

		var batch []model.User
		if err := c.get(ctx, "contacts", token, "/contacts/"+strings.Join(escaped, ","), nil, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

// FetchProjects returns the folders flagged as projects.
func (c *Client) FetchProjects(ctx context.Context, token string) ([]model.Project, error) {
	query := url.Values{}
	query.Set("project", "true")

	var projects []model.Project
	if err := c.get(ctx, "projects", token, "/folders", query, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
