package model

// TaskWithUsers is a normalized task carrying its resolved responsible users.
type TaskWithUsers struct {
	NormalizedTask `yaml:",inline"`
	Users          []NormalizedUser `json:"users" yaml:"users"`
}

// ProjectStructure is one entry of the exported document.
type ProjectStructure struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Tasks []TaskWithUsers `json:"tasks" yaml:"tasks"`
}
