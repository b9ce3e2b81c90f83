package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roksva123/go-wrike-export/internal/config"
	"github.com/roksva123/go-wrike-export/internal/model"
	"github.com/roksva123/go-wrike-export/internal/utils"
	"github.com/roksva123/go-wrike-export/internal/wrike"
)

// Stage names a step of an export run.
type Stage string

const (
	StageFetchTasks    Stage = "fetch_tasks"
	StageFetchUsers    Stage = "fetch_users"
	StageFetchProjects Stage = "fetch_projects"
	StageMap           Stage = "map"
	StageJoin          Stage = "join"
	StagePersist       Stage = "persist"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Retriever fetches the three source collections. Implemented by wrike.Client.
type Retriever interface {
	FetchTasks(ctx context.Context, token string) ([]model.Task, error)
	FetchUsers(ctx context.Context, token string, ids []string) ([]model.User, error)
	FetchProjects(ctx context.Context, token string) ([]model.Project, error)
}

// Sink persists the finished document.
type Sink interface {
	Save(ctx context.Context, doc []model.ProjectStructure) error
	Destination() string
}

// RunRecorder stores run summaries.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *model.ExportRun) error
}

// StageError wraps the error that stopped a run at Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("export failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExportService runs the fetch, map, join, persist pipeline.
type ExportService struct {
	Retriever Retriever
	Sink      Sink
	Recorder  RunRecorder
	Logger    *slog.Logger
	// Parallel fetches projects alongside the tasks->users chain.
	Parallel bool

	now func() time.Time
}

func NewExportService(retriever Retriever, sink Sink, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		Retriever: retriever,
		Sink:      sink,
		Logger:    logger,
		now:       time.Now,
	}
}

type fetched struct {
	tasks    []model.Task
	users    []model.User
	projects []model.Project
}

// Run executes one export with the given token. Any stage failure stops the
// run before persistence; the returned error is a *StageError, or the
// configuration error when token is empty. The run summary is returned in
// both cases.
func (s *ExportService) Run(ctx context.Context, token string) (*model.ExportRun, error) {
	run := &model.ExportRun{
		ID:          uuid.NewString(),
		StartedAt:   s.clock(),
		Destination: s.Sink.Destination(),
	}
	logger := s.Logger.With("run_id", run.ID)

	if strings.TrimSpace(token) == "" {
		run.Stage = string(StageFetchTasks)
		err := config.MissingToken()
		s.finish(ctx, logger, run, StageFailed, err)
		return run, err
	}

	logger.Info("export started", "destination", run.Destination, "parallel", s.Parallel)

	var (
		data fetched
		err  error
	)
	if s.Parallel {
		data, err = s.fetchParallel(ctx, logger, run, token)
	} else {
		data, err = s.fetchSequential(ctx, logger, run, token)
	}
	if err != nil {
		s.finish(ctx, logger, run, StageFailed, err)
		return run, err
	}

	run.Stage = string(StageMap)
	tasks := utils.MapTasks(data.tasks)
	users := utils.MapUsers(data.users)

	run.Stage = string(StageJoin)
	doc := BuildProjectStructure(data.projects, tasks, users)
	run.ProjectCount = len(data.projects)
	run.TaskCount = len(tasks)
	run.UserCount = len(users)
	run.UnassignedTasks = CountUnassigned(tasks)
	run.ProjectIDs = make([]string, 0, len(data.projects))
	for _, p := range data.projects {
		run.ProjectIDs = append(run.ProjectIDs, p.ID)
	}
	if run.UnassignedTasks > 0 {
		logger.Info("tasks without a project are left out of the document", "count", run.UnassignedTasks)
	}

	run.Stage = string(StagePersist)
	if err := s.Sink.Save(ctx, doc); err != nil {
		err = &StageError{Stage: StagePersist, Err: err}
		s.finish(ctx, logger, run, StageFailed, err)
		return run, err
	}

	s.finish(ctx, logger, run, StageDone, nil)
	return run, nil
}

func (s *ExportService) fetchSequential(ctx context.Context, logger *slog.Logger, run *model.ExportRun, token string) (fetched, error) {
	var out fetched

	run.Stage = string(StageFetchTasks)
	tasks, err := s.Retriever.FetchTasks(ctx, token)
	if err != nil {
		return out, &StageError{Stage: StageFetchTasks, Err: err}
	}
	logger.Debug("tasks fetched", "count", len(tasks))

	run.Stage = string(StageFetchUsers)
	users, err := s.Retriever.FetchUsers(ctx, token, CollectResponsibleIDs(tasks))
	if err != nil {
		return out, &StageError{Stage: StageFetchUsers, Err: err}
	}
	logger.Debug("users fetched", "count", len(users))

	run.Stage = string(StageFetchProjects)
	projects, err := s.Retriever.FetchProjects(ctx, token)
	if err != nil {
		return out, &StageError{Stage: StageFetchProjects, Err: err}
	}
	logger.Debug("projects fetched", "count", len(projects))

	return fetched{tasks: tasks, users: users, projects: projects}, nil
}

// fetchParallel runs the project fetch concurrently with tasks->users. The
// first failure cancels the other branch; run.Stage reports the failed one.
func (s *ExportService) fetchParallel(ctx context.Context, logger *slog.Logger, run *model.ExportRun, token string) (fetched, error) {
	var out fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := s.Retriever.FetchTasks(gctx, token)
		if err != nil {
			return &StageError{Stage: StageFetchTasks, Err: err}
		}
		users, err := s.Retriever.FetchUsers(gctx, token, CollectResponsibleIDs(tasks))
		if err != nil {
			return &StageError{Stage: StageFetchUsers, Err: err}
		}
		out.tasks, out.users = tasks, users
		return nil
	})
	g.Go(func() error {
		projects, err := s.Retriever.FetchProjects(gctx, token)
		if err != nil {
			return &StageError{Stage: StageFetchProjects, Err: err}
		}
		out.projects = projects
		return nil
	})

	run.Stage = string(StageFetchTasks)
	if err := g.Wait(); err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			run.Stage = string(stageErr.Stage)
		}
		return fetched{}, err
	}
	logger.Debug("collections fetched", "tasks", len(out.tasks), "users", len(out.users), "projects", len(out.projects))
	return out, nil
}

// finish stamps the run, logs the outcome and hands it to the recorder. The
// failing stage stays in run.Stage; status carries done/failed.
func (s *ExportService) finish(ctx context.Context, logger *slog.Logger, run *model.ExportRun, final Stage, err error) {
	run.FinishedAt = s.clock()
	if err == nil {
		run.Stage = string(final)
		run.Status = model.RunStatusDone
		logger.Info("export finished",
			"projects", run.ProjectCount,
			"tasks", run.TaskCount,
			"users", run.UserCount,
			"duration", run.FinishedAt.Sub(run.StartedAt))
	} else {
		if run.Stage == "" {
			run.Stage = string(final)
		}
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		attrs := []any{"stage", run.Stage, "error", err}
		var rErr *wrike.RetrievalError
		if errors.As(err, &rErr) {
			run.HTTPStatus = rErr.StatusCode
			attrs = append(attrs, "status", rErr.StatusCode, "body", rErr.Body)
		}
		logger.Error("export failed", attrs...)
	}

	if s.Recorder == nil {
		return
	}
	// The run outcome is recorded even when ctx was cancelled mid-run.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if recErr := s.Recorder.RecordRun(recCtx, run); recErr != nil {
		logger.Warn("failed to record export run", "error", recErr)
	}
}

func (s *ExportService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
