package tasks

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"github.com/Add1ct1ve/CalWid/internal/logger"
)

// maxTasksPerList bounds the per-list page size.
const maxTasksPerList = 50

// statusCompleted is the provider's completed-task status value.
const statusCompleted = "completed"

// Task is the normalized task record handed to the widget.
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
	TasklistID string `json:"tasklist_id"`
}

// TokenProvider supplies a usable access token, once per call.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Fetcher lists incomplete tasks from an operator-defined allow-list of
// task lists. Lists outside the allow-list contribute nothing; per-list
// fetch failures are logged and skipped.
type Fetcher struct {
	tokens       TokenProvider
	allowedLists map[string]bool
	endpoint     string // base URL override for tests; empty means production
}

// NewFetcher creates a tasks fetcher. allowedLists holds the task-list
// names to include; an empty allow-list yields no tasks.
func NewFetcher(tokens TokenProvider, allowedLists []string) *Fetcher {
	allowed := make(map[string]bool, len(allowedLists))
	for _, name := range allowedLists {
		allowed[name] = true
	}
	return &Fetcher{tokens: tokens, allowedLists: allowed}
}

// WithEndpoint points the fetcher at a different API base URL.
func (f *Fetcher) WithEndpoint(endpoint string) *Fetcher {
	f.endpoint = endpoint
	return f
}

func (f *Fetcher) service(ctx context.Context) (*gtasks.Service, error) {
	accessToken, err := f.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}

	svc, err := gtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return svc, nil
}

// Fetch lists incomplete, titled tasks from every allowed task list.
func (f *Fetcher) Fetch(ctx context.Context) ([]Task, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, err
	}

	lists, err := f.listTasklists(ctx, svc)
	if err != nil {
		return nil, err
	}

	var allTasks []Task
	for _, list := range lists {
		if !f.allowedLists[list.Title] {
			logger.Debug("skipping task list outside allow-list", "list", list.Title)
			continue
		}

		page, err := svc.Tasks.List(list.Id).
			ShowCompleted(false).
			MaxResults(maxTasksPerList).
			Context(ctx).
			Do()
		if err != nil {
			logger.Warn("failed to fetch tasks from list", "list", list.Title, "error", err)
			continue
		}

		for _, item := range page.Items {
			if item.Title == "" {
				continue
			}
			task := Task{
				ID:         item.Id,
				Title:      item.Title,
				Completed:  item.Status == statusCompleted,
				TasklistID: list.Id,
			}
			if task.Completed {
				continue
			}
			allTasks = append(allTasks, task)
		}
	}

	logger.Info("tasks aggregated", "count", len(allTasks))
	return allTasks, nil
}

// listTasklists pages through all task lists visible to the account.
func (f *Fetcher) listTasklists(ctx context.Context, svc *gtasks.Service) ([]*gtasks.TaskList, error) {
	var lists []*gtasks.TaskList
	pageToken := ""

	for {
		call := svc.Tasklists.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list task lists: %w", err)
		}

		lists = append(lists, page.Items...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return lists, nil
}

// Complete marks a task completed. A pass-through write: the snapshot
// cache is not touched, callers refresh to observe the change.
func (f *Fetcher) Complete(ctx context.Context, taskID, tasklistID string) error {
	svc, err := f.service(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Tasks.Patch(tasklistID, taskID, &gtasks.Task{Status: statusCompleted}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	return nil
}
