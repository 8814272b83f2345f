package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
)

// authResponse is returned on account creation and login. The backend
// issues numeric user IDs; the client stores them as opaque text.
type authResponse struct {
	UserID      json.Number `json:"user_id"`
	AccessToken string      `json:"access_token"`
}

func (r *authResponse) toSession() *model.Session {
	return model.NewSession(types.UserID(r.UserID.String()), r.AccessToken)
}

// SignupRequest is the account creation payload
type SignupRequest struct {
	Email          string         `json:"email"`
	Password       string         `json:"password" masq:"secret"`
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	Services       []any          `json:"services"`
	APICredentials map[string]any `json:"api_credentials"`
}

// CreateUser registers a new account and returns the issued session
func (c *Client) CreateUser(ctx context.Context, req *SignupRequest) (*model.Session, error) {
	if req.Services == nil {
		req.Services = []any{}
	}
	if req.APICredentials == nil {
		req.APICredentials = map[string]any{}
	}

	var resp authResponse
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, "/users", "", req)
	}, "Failed to create user", &resp); err != nil {
		return nil, err
	}

	return resp.toSession(), nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp authResponse
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, "/login", "", payload)
	}, "Login failed", &resp); err != nil {
		return nil, err
	}

	return resp.toSession(), nil
}

// UploadCredentials uploads the user's Google OAuth credentials file as a
// multipart form with field name "credentials".
func (c *Client) UploadCredentials(ctx context.Context, session *model.Session, filename string, content []byte) error {
	path := "/users/" + session.UserID.String() + "/upload-credentials"

	return c.do(ctx, func() (*http.Request, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("credentials", filename)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build multipart form")
		}
		if _, err := io.Copy(fw, bytes.NewReader(content)); err != nil {
			return nil, goerr.Wrap(err, "failed to write credentials to form")
		}
		if err := mw.Close(); err != nil {
			return nil, goerr.Wrap(err, "failed to finalize multipart form")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create request")
		}
		req.Header.Set("Authorization", session.BearerHeader())
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	}, "Failed to upload credentials", nil)
}

// AuthInitiation is returned when the backend prepares an OAuth redirect
type AuthInitiation struct {
	Status           string `json:"status"`
	AuthorizationURL string `json:"authorization_url"`
}

// InitiateGoogleAuth asks the backend for a Google authorization URL
func (c *Client) InitiateGoogleAuth(ctx context.Context, session *model.Session) (*AuthInitiation, error) {
	path := "/users/" + session.UserID.String() + "/initiate-google-auth"

	var resp AuthInitiation
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, path, session.BearerHeader(), nil)
	}, "Failed to initiate Google auth", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteGoogleAuth submits the one-shot (code, state) pair from the
// Google redirect
func (c *Client) CompleteGoogleAuth(ctx context.Context, session *model.Session, code, state string) error {
	if code == "" {
		return goerr.New("authorization code is required")
	}
	path := "/users/" + session.UserID.String() + "/google-auth-complete"
	payload := map[string]string{"code": code, "state": state}

	return c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, path, session.BearerHeader(), payload)
	}, "Failed to complete Google authentication", nil)
}

// SaveLinkedInApp registers the user's LinkedIn OAuth application
// credentials with the backend
func (c *Client) SaveLinkedInApp(ctx context.Context, session *model.Session, creds *model.LinkedInAppCredentials) error {
	path := "/users/" + session.UserID.String() + "/linkedin-app"

	return c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, path, session.BearerHeader(), creds)
	}, "Failed to save LinkedIn credentials", nil)
}

// InitiateLinkedInAuth asks the backend for a LinkedIn authorization URL
func (c *Client) InitiateLinkedInAuth(ctx context.Context, session *model.Session) (*AuthInitiation, error) {
	path := "/users/" + session.UserID.String() + "/initiate-linkedin-auth"

	var resp AuthInitiation
	if err := c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, path, session.BearerHeader(), nil)
	}, "Failed to initiate LinkedIn authentication", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteLinkedInAuth submits the one-shot (code, state) pair from the
// LinkedIn redirect
func (c *Client) CompleteLinkedInAuth(ctx context.Context, session *model.Session, code, state string) error {
	if code == "" {
		return goerr.New("authorization code is required")
	}
	path := "/users/" + session.UserID.String() + "/linkedin-auth-complete"
	payload := map[string]string{"code": code, "state": state}

	return c.do(ctx, func() (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, path, session.BearerHeader(), payload)
	}, "Failed to complete LinkedIn authentication", nil)
}

// jsonRequest builds a request with an optional JSON body and bearer header
func (c *Client) jsonRequest(ctx context.Context, method, path, bearer string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
