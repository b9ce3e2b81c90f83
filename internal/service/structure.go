package service

import "github.com/roksva123/go-wrike-export/internal/model"

// BuildProjectStructure nests tasks under the projects listed in their
// collections and resolves each task's responsible ids against users.
//
// One entry is emitted per project, in input order, even when no task
// references it. A task is listed once under every project it names, in task
// input order. Tasks with no collections appear nowhere. Responsible ids with
// no matching user are dropped. The result shares no slices with the inputs.
func BuildProjectStructure(projects []model.Project, tasks []model.NormalizedTask, users []model.NormalizedUser) []model.ProjectStructure {
	byProject := make(map[string][]int, len(projects))
	for i, t := range tasks {
		seen := make(map[string]bool, len(t.Collections))
		for _, pid := range t.Collections {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			byProject[pid] = append(byProject[pid], i)
		}
	}

	userByID := make(map[string]model.NormalizedUser, len(users))
	for _, u := range users {
		if _, ok := userByID[u.ID]; !ok {
			userByID[u.ID] = u
		}
	}

	out := make([]model.ProjectStructure, 0, len(projects))
	for _, p := range projects {
		members := byProject[p.ID]
		ps := model.ProjectStructure{
			ID:    p.ID,
			Name:  p.Title,
			Tasks: make([]model.TaskWithUsers, 0, len(members)),
		}
		for _, i := range members {
			ps.Tasks = append(ps.Tasks, withUsers(tasks[i], userByID))
		}
		out = append(out, ps)
	}
	return out
}

func withUsers(t model.NormalizedTask, userByID map[string]model.NormalizedUser) model.TaskWithUsers {
	t.ResponsibleIDs = append([]string{}, t.ResponsibleIDs...)
	t.Collections = append([]string{}, t.Collections...)

	resolved := make([]model.NormalizedUser, 0, len(t.ResponsibleIDs))
	for _, id := range t.ResponsibleIDs {
		if u, ok := userByID[id]; ok {
			resolved = append(resolved, u)
		}
	}
	return model.TaskWithUsers{NormalizedTask: t, Users: resolved}
}

// CollectResponsibleIDs returns the distinct responsible ids across tasks in
// first-seen order.
func CollectResponsibleIDs(tasks []model.Task) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, t := range tasks {
		for _, id := range t.ResponsibleIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// CountUnassigned returns how many tasks name no project and are therefore
// absent from the built structure.
func CountUnassigned(tasks []model.NormalizedTask) int {
	n := 0
	for _, t := range tasks {
		if len(t.Collections) == 0 {
			n++
		}
	}
	return n
}
