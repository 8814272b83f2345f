package scheduler

import (
	"context"
	"net/http"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
)

type jobRecord struct {
	JobID    string `json:"job_id"`
	Metadata struct {
		JobPrefix string `json:"job_prefix"`
	} `json:"metadata"`
	Status  string `json:"status"`
	NextRun string `json:"next_run"`
}

type jobsResponse struct {
	Jobs []jobRecord `json:"jobs"`
}

// ListJobs fetches the scheduled jobs for the session's user
func (c *Client) ListJobs(ctx context.Context, session *model.Session) ([]*model.Job, error) {
	path := "/users/" + session.UserID.String() + "/jobs"

	var resp jobsResponse
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, path, session.BearerHeader(), nil)
	}, "Failed to fetch jobs", &resp); err != nil {
		return nil, err
	}

	jobs := make([]*model.Job, 0, len(resp.Jobs))
	for _, r := range resp.Jobs {
		jobs = append(jobs, &model.Job{
			ID:      r.JobID,
			Prefix:  r.Metadata.JobPrefix,
			Status:  r.Status,
			NextRun: r.NextRun,
		})
	}
	return jobs, nil
}
