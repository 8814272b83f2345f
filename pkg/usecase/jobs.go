package usecase

import (
	"context"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
)

// ListJobs returns the scheduled jobs for the logged-in user
func (uc *UseCases) ListJobs(ctx context.Context) ([]*model.Job, error) {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return uc.api.ListJobs(ctx, sess)
}
