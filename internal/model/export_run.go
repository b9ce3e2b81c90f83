package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	RunStatusDone   = "done"
	RunStatusFailed = "failed"
)

// ExportRun summarizes one pipeline execution. Rows live in export_runs.
type ExportRun struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	Stage           string         `json:"stage"`
	Status          string         `json:"status"`
	Error           string         `json:"error,omitempty"`
	HTTPStatus      int            `json:"http_status,omitempty" gorm:"column:http_status"`
	ProjectCount    int            `json:"project_count"`
	TaskCount       int            `json:"task_count"`
	UserCount       int            `json:"user_count"`
	UnassignedTasks int            `json:"unassigned_tasks"`
	ProjectIDs      pq.StringArray `json:"project_ids" gorm:"column:project_ids;type:text[]"`
	Destination     string         `json:"destination"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
}

func (ExportRun) TableName() string { return "export_runs" }
