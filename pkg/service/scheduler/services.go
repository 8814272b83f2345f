package scheduler

import (
	"context"
	"net/http"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
)

// ServiceSubmission is one enabled entry in the services payload
type ServiceSubmission struct {
	Service  string         `json:"service"`
	Schedule model.Schedule `json:"schedule"`
}

type servicesPayload struct {
	UserID   string              `json:"user_id"`
	Services []ServiceSubmission `json:"services"`
}

// ServicesResult is the backend's view of the configuration after a save.
// When the backend echoes the stored services, that set is authoritative.
type ServicesResult struct {
	Status   string              `json:"status"`
	Services []ServiceSubmission `json:"services"`
}

// UpdateServices submits the enabled service entries, reduced to
// {service, schedule}, for the session's user.
func (c *Client) UpdateServices(ctx context.Context, session *model.Session, entries []*model.ServiceEntry) (*ServicesResult, error) {
	payload := servicesPayload{
		UserID:   session.UserID.String(),
		Services: make([]ServiceSubmission, 0, len(entries)),
	}
	for _, e := range entries {
		payload.Services = append(payload.Services, ServiceSubmission{
			Service:  e.Name.String(),
			Schedule: e.Schedule,
		})
	}

	path := "/users/" + session.UserID.String() + "/services"

	var result ServicesResult
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, path, session.BearerHeader(), payload)
	}, "Failed to update services", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CredentialsStatus fetches the recorded state of the user's Google and
// LinkedIn credentials
func (c *Client) CredentialsStatus(ctx context.Context, session *model.Session) (*model.CredentialStatus, error) {
	path := "/users/" + session.UserID.String() + "/credentials-status"

	var status model.CredentialStatus
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, path, session.BearerHeader(), nil)
	}, "Failed to get credentials status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetUser fetches the display profile of the session's user
func (c *Client) GetUser(ctx context.Context, session *model.Session) (*model.UserInfo, error) {
	path := "/users/" + session.UserID.String()

	var info model.UserInfo
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, path, session.BearerHeader(), nil)
	}, "Failed to get user info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}
