package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func TestBootstrapServices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "Alice", "status": "Engineer"})
	})
	mux.HandleFunc("GET /users/1/credentials-status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"google":   map[string]bool{"valid": true},
			"linkedin": map[string]bool{"configured": true, "valid": false},
		})
	})

	uc, store, _ := newUseCases(t, mux)
	ctx := context.Background()
	gt.NoError(t, store.Save(ctx, model.NewSession("1", "tok")))

	plan := model.DefaultServicePlan()
	view, err := uc.BootstrapServices(ctx, plan)
	gt.NoError(t, err).Required()

	gt.Value(t, view.User.Name).Equal("Alice")
	gt.B(t, plan.Entry(types.ServiceGmail).Connected).True()
	gt.B(t, plan.Entry(types.ServiceCalendar).Connected).True()
	gt.B(t, plan.Entry(types.ServiceLinkedIn).Connected).False()
}

func TestSaveServices_SubmitsEnabledOnly(t *testing.T) {
	var payload struct {
		UserID   string `json:"user_id"`
		Services []struct {
			Service  string         `json:"service"`
			Schedule map[string]any `json:"schedule"`
		} `json:"services"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/1/services", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeJSON(w, map[string]string{"status": "success"})
	})

	uc, store, _ := newUseCases(t, mux)
	ctx := context.Background()
	gt.NoError(t, store.Save(ctx, model.NewSession("1", "tok")))

	plan := model.DefaultServicePlan()
	plan.Entry(types.ServiceGmail).Enabled = true
	plan.Entry(types.ServiceLinkedIn).Enabled = true

	gt.NoError(t, uc.SaveServices(ctx, plan))

	gt.Value(t, payload.UserID).Equal("1")
	gt.Array(t, payload.Services).Length(2)
	gt.Value(t, payload.Services[0].Service).Equal("Gmail")
	gt.Value(t, payload.Services[0].Schedule["time"]).Equal("09:00")
	gt.Value(t, payload.Services[1].Service).Equal("LinkedIn")
	gt.Value(t, payload.Services[1].Schedule["day_of_week"]).Equal("mon")

	// An empty echo leaves the local plan as submitted
	gt.B(t, plan.Entry(types.ServiceGmail).Enabled).True()
	gt.B(t, plan.Entry(types.ServiceCalendar).Enabled).False()
}

func TestSaveServices_ReconcilesEcho(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/1/services", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status": "success",
			"services": []map[string]any{
				{
					"service":  "Gmail",
					"schedule": map[string]string{"frequency": "daily", "time": "07:15"},
				},
			},
		})
	})

	uc, store, _ := newUseCases(t, mux)
	ctx := context.Background()
	gt.NoError(t, store.Save(ctx, model.NewSession("1", "tok")))

	plan := model.DefaultServicePlan()
	plan.Entry(types.ServiceGmail).Enabled = true
	plan.Entry(types.ServiceLinkedIn).Enabled = true

	gt.NoError(t, uc.SaveServices(ctx, plan))

	// The echoed configuration wins over what was submitted
	gmail := plan.Entry(types.ServiceGmail)
	gt.B(t, gmail.Enabled).True()
	gt.Value(t, gmail.Schedule.TimeOfDay).Equal("07:15")
	gt.B(t, plan.Entry(types.ServiceLinkedIn).Enabled).False()
}

func TestSaveServices_RejectsInvalidSchedule(t *testing.T) {
	uc, store, _ := newUseCases(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid plan")
	}))
	ctx := context.Background()
	gt.NoError(t, store.Save(ctx, model.NewSession("1", "tok")))

	plan := model.DefaultServicePlan()
	entry := plan.Entry(types.ServiceGmail)
	entry.Enabled = true
	entry.Schedule.TimeOfDay = "25:99"

	err := uc.SaveServices(ctx, plan)
	gt.Error(t, err).Is(usecase.ErrValidation)
}

func TestListJobs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/1/jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"jobs": []map[string]any{
				{
					"job_id":   "j-1",
					"metadata": map[string]string{"job_prefix": "gmail-digest"},
					"status":   "scheduled",
					"next_run": "2026-09-02T09:00:00Z",
				},
			},
		})
	})

	uc, store, _ := newUseCases(t, mux)
	ctx := context.Background()
	gt.NoError(t, store.Save(ctx, model.NewSession("1", "tok")))

	jobs, err := uc.ListJobs(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, jobs).Length(1)
	gt.Value(t, jobs[0].Prefix).Equal("gmail-digest")
}
