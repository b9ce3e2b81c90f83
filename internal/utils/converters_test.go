package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roksva123/go-wrike-export/internal/model"
)

func sampleTask() model.Task {
	return model.Task{
		ID:             "T1",
		AccountID:      "ACC1",
		Title:          "Fix bug",
		Status:         "Active",
		Importance:     "High",
		CreatedDate:    "2024-01-02T10:00:00Z",
		UpdatedDate:    "2024-01-03T11:00:00Z",
		Permalink:      "https://www.wrike.com/open.htm?id=1",
		ResponsibleIDs: []string{"U1", "U9"},
		ParentIDs:      []string{"P1"},
	}
}

func TestMapTask(t *testing.T) {
	got := MapTask(sampleTask())

	assert.Equal(t, model.NormalizedTask{
		ID:             "T1",
		Name:           "Fix bug",
		Assignee:       "ACC1",
		Status:         "High",
		CreatedAt:      "2024-01-02T10:00:00Z",
		UpdatedAt:      "2024-01-03T11:00:00Z",
		TicketURL:      "https://www.wrike.com/open.htm?id=1",
		ResponsibleIDs: []string{"U1", "U9"},
		Collections:    []string{"P1"},
	}, got)
}

func TestMapTaskMissingIDLists(t *testing.T) {
	got := MapTask(model.Task{ID: "T2"})

	require.NotNil(t, got.ResponsibleIDs)
	require.NotNil(t, got.Collections)
	assert.Empty(t, got.ResponsibleIDs)
	assert.Empty(t, got.Collections)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"collections":[]`)
	assert.Contains(t, string(b), `"responsible_ids":[]`)
}

func TestMapTaskDoesNotAliasInput(t *testing.T) {
	in := sampleTask()
	got := MapTask(in)

	in.ParentIDs[0] = "changed"
	in.ResponsibleIDs[0] = "changed"

	assert.Equal(t, "P1", got.Collections[0])
	assert.Equal(t, "U1", got.ResponsibleIDs[0])
}

// MapTask takes and returns values, so repeated mapping is idempotent by
// construction; equal inputs must also give equal outputs.
func TestMapTaskDeterministic(t *testing.T) {
	assert.Equal(t, MapTask(sampleTask()), MapTask(sampleTask()))
}

// The JSON keys produced for a task are exactly the targets of TaskFieldMap.
func TestTaskFieldMapMatchesJSONKeys(t *testing.T) {
	b, err := json.Marshal(MapTask(sampleTask()))
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(b, &keys))

	want := map[string]bool{}
	for _, to := range TaskFieldMap {
		want[to] = true
	}
	assert.Len(t, keys, len(want))
	for k := range keys {
		assert.True(t, want[k], "unexpected key %s", k)
	}
}

func TestMapUser(t *testing.T) {
	got := MapUser(model.User{ID: "U1", FirstName: "Ann", LastName: "Lee", PrimaryEmail: "a@x.com"})

	assert.Equal(t, model.NormalizedUser{ID: "U1", FirstName: "Ann", LastName: "Lee", Email: "a@x.com"}, got)
}

func TestMapSlicesPreserveOrder(t *testing.T) {
	tasks := MapTasks([]model.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	users := MapUsers([]model.User{{ID: "x"}, {ID: "y"}})

	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "c", tasks[2].ID)
	assert.Equal(t, []string{"x", "y"}, []string{users[0].ID, users[1].ID})

	assert.NotNil(t, MapTasks(nil))
	assert.Empty(t, MapUsers(nil))
}
