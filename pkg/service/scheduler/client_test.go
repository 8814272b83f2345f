package scheduler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
)

// failingTransport simulates a network-level failure: the request never
// receives a response.
type failingTransport struct {
	calls int
}

func (t *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return nil, errors.New("connection refused")
}

func TestNew(t *testing.T) {
	t.Run("returns error when base URL is empty", func(t *testing.T) {
		_, err := scheduler.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates client when base URL is provided", func(t *testing.T) {
		c, err := scheduler.New("http://localhost:8001")
		gt.NoError(t, err).Required()
		gt.Value(t, c).NotNil()
	})
}

func TestRetryPolicy(t *testing.T) {
	t.Run("network failure is attempted exactly three times", func(t *testing.T) {
		tr := &failingTransport{}
		c, err := scheduler.New("http://backend.invalid",
			scheduler.WithHTTPClient(&http.Client{Transport: tr}),
			scheduler.WithRetryInterval(time.Millisecond),
		)
		gt.NoError(t, err).Required()

		_, err = c.Login(context.Background(), "a@b.com", "x")
		gt.Value(t, err).NotNil()
		gt.Number(t, tr.calls).Equal(3)
	})

	t.Run("HTTP error response is never retried", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
		}))
		defer srv.Close()

		c, err := scheduler.New(srv.URL, scheduler.WithRetryInterval(time.Millisecond))
		gt.NoError(t, err).Required()

		_, err = c.Login(context.Background(), "a@b.com", "wrong")
		gt.Value(t, err).NotNil()
		gt.Number(t, calls).Equal(1)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		tr := &failingTransport{}
		c, err := scheduler.New("http://backend.invalid",
			scheduler.WithHTTPClient(&http.Client{Transport: tr}),
			scheduler.WithRetryInterval(time.Hour),
		)
		gt.NoError(t, err).Required()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err = c.Login(ctx, "a@b.com", "x")
		gt.Value(t, err).NotNil()
		gt.Number(t, tr.calls).Equal(1)
	})
}

func TestErrorNormalization(t *testing.T) {
	t.Run("server detail message is preferred", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"email already registered"}`))
		}))
		defer srv.Close()

		c, err := scheduler.New(srv.URL)
		gt.NoError(t, err).Required()

		_, err = c.CreateUser(context.Background(), &scheduler.SignupRequest{Email: "a@b.com"})
		gt.Value(t, err).NotNil()
		gt.Value(t, scheduler.ErrorMessage(err)).Equal("email already registered")

		var apiErr *scheduler.APIError
		gt.B(t, errors.As(err, &apiErr)).True()
		gt.Number(t, apiErr.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("message field is a fallback for detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"scheduler unavailable"}`))
		}))
		defer srv.Close()

		c, err := scheduler.New(srv.URL)
		gt.NoError(t, err).Required()

		sess := model.NewSession("7", "t")
		_, err = c.UpdateServices(context.Background(), sess, nil)
		gt.Value(t, scheduler.ErrorMessage(err)).Equal("scheduler unavailable")
	})

	t.Run("static default when body is not structured", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream timeout"))
		}))
		defer srv.Close()

		c, err := scheduler.New(srv.URL)
		gt.NoError(t, err).Required()

		_, err = c.Login(context.Background(), "a@b.com", "x")
		gt.Value(t, scheduler.ErrorMessage(err)).Equal("Login failed")
	})
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/login")

		var payload map[string]string
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gt.Value(t, payload["email"]).Equal("a@b.com")
		gt.Value(t, payload["password"]).Equal("x")

		_, _ = w.Write([]byte(`{"user_id":7,"access_token":"t"}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	sess, err := c.Login(context.Background(), "a@b.com", "x")
	gt.NoError(t, err).Required()

	// Numeric user IDs are stored as text
	gt.Value(t, sess.UserID.String()).Equal("7")
	gt.Value(t, sess.AccessToken).Equal("t")
}

func TestUpdateServices_Payload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/users/7/services")
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer t")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	sess := model.NewSession("7", "t")
	entries := []*model.ServiceEntry{
		{
			Name:     types.ServiceLinkedIn,
			Enabled:  true,
			Schedule: model.NewWeeklySchedule(types.WeekdayFri, "10:00"),
		},
	}

	_, err = c.UpdateServices(context.Background(), sess, entries)
	gt.NoError(t, err).Required()

	gt.Value(t, got["user_id"]).Equal("7")
	services := got["services"].([]any)
	gt.Array(t, services).Length(1)

	svc := services[0].(map[string]any)
	gt.Value(t, svc["service"]).Equal("LinkedIn")

	schedule := svc["schedule"].(map[string]any)
	gt.Value(t, schedule["frequency"]).Equal("weekly")
	gt.Value(t, schedule["day_of_week"]).Equal("fri")
	gt.Value(t, schedule["hour"]).Equal("10:00")
	_, hasTime := schedule["time"]
	gt.B(t, hasTime).False()
}

func TestUploadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/users/7/upload-credentials")
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer t")

		f, hdr, err := r.FormFile("credentials")
		gt.NoError(t, err).Required()
		defer f.Close()

		gt.Value(t, hdr.Filename).Equal("credentials.json")
		content, err := io.ReadAll(f)
		gt.NoError(t, err)
		gt.Value(t, string(content)).Equal(`{"installed":{}}`)

		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	sess := model.NewSession("7", "t")
	err = c.UploadCredentials(context.Background(), sess, "credentials.json", []byte(`{"installed":{}}`))
	gt.NoError(t, err)
}

func TestCredentialsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/users/7/credentials-status")
		_, _ = w.Write([]byte(`{"google":{"valid":true},"linkedin":{"configured":true,"valid":false}}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	status, err := c.CredentialsStatus(context.Background(), model.NewSession("7", "t"))
	gt.NoError(t, err).Required()
	gt.B(t, status.Google.Valid).True()
	gt.B(t, status.LinkedIn.HasAppCredentials).True()
	gt.B(t, status.LinkedIn.Valid).False()
}

func TestListJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/users/7/jobs")
		_, _ = w.Write([]byte(`{"jobs":[{"job_id":"j1","metadata":{"job_prefix":"gmail"},"status":"scheduled","next_run":"2026-09-02T09:00:00Z"}]}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	jobs, err := c.ListJobs(context.Background(), model.NewSession("7", "t"))
	gt.NoError(t, err).Required()
	gt.Array(t, jobs).Length(1)
	gt.Value(t, jobs[0].ID).Equal("j1")
	gt.Value(t, jobs[0].Prefix).Equal("gmail")
	gt.Value(t, jobs[0].Status).Equal("scheduled")
}

func TestBearerNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer already-prefixed")
		_, _ = w.Write([]byte(`{"name":"n","status":"s"}`))
	}))
	defer srv.Close()

	c, err := scheduler.New(srv.URL)
	gt.NoError(t, err).Required()

	_, err = c.GetUser(context.Background(), model.NewSession("7", "Bearer already-prefixed"))
	gt.NoError(t, err)
}
