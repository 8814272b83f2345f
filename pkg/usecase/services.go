package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
)

// ServicesView bundles the user's profile with the current credential
// status for the services screen.
type ServicesView struct {
	User   *model.UserInfo
	Status *model.CredentialStatus
}

// BootstrapServices fetches the profile and credential status in parallel
// and merges the connected flags into the plan.
func (uc *UseCases) BootstrapServices(ctx context.Context, plan *model.ServicePlan) (*ServicesView, error) {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	view := &ServicesView{}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		info, err := uc.api.GetUser(ctx, sess)
		if err != nil {
			return err
		}
		view.User = info
		return nil
	})
	eg.Go(func() error {
		status, err := uc.api.CredentialsStatus(ctx, sess)
		if err != nil {
			return err
		}
		view.Status = status
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	plan.ApplyCredentialStatus(view.Status)
	return view, nil
}

// SaveServices validates the plan, submits the enabled entries, and
// reconciles the backend's echoed configuration back into the plan. The
// echoed set is authoritative: entries it omits are disabled, schedules it
// returns replace the local ones. An empty echo leaves the plan untouched.
func (uc *UseCases) SaveServices(ctx context.Context, plan *model.ServicePlan) error {
	sess, err := uc.CurrentSession(ctx)
	if err != nil {
		return err
	}

	if err := plan.Validate(); err != nil {
		return goerr.Wrap(ErrValidation, err.Error())
	}

	result, err := uc.api.UpdateServices(ctx, sess, plan.Enabled())
	if err != nil {
		return err
	}

	if len(result.Services) == 0 {
		return nil
	}
	stored := map[types.ServiceName]model.Schedule{}
	for _, sub := range result.Services {
		name, err := types.ParseServiceName(sub.Service)
		if err != nil {
			continue
		}
		stored[name] = sub.Schedule
	}
	for _, e := range plan.Entries {
		sched, ok := stored[e.Name]
		if !ok {
			e.Enabled = false
			continue
		}
		e.Enabled = true
		e.Schedule = sched
	}
	return nil
}
