package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

var (
	headerColor    = color.New(color.FgCyan, color.Bold)
	connectedColor = color.New(color.FgGreen)
	pendingColor   = color.New(color.FgYellow)
	disabledColor  = color.New(color.FgHiBlack)
	assistantColor = color.New(color.FgMagenta)
	userColor      = color.New(color.FgBlue)
)

func renderStatus(view *usecase.ServicesView) {
	headerColor.Println("Account")
	fmt.Printf("  Name:   %s\n", view.User.Name)
	fmt.Printf("  Status: %s\n", view.User.Status)
	fmt.Println()

	headerColor.Println("Credentials")
	fmt.Printf("  Google:   %s\n", connectionLabel(view.Status.Google.Valid))
	if view.Status.LinkedIn.HasAppCredentials {
		fmt.Printf("  LinkedIn: %s\n", connectionLabel(view.Status.LinkedIn.Valid))
	} else {
		fmt.Printf("  LinkedIn: %s\n", disabledColor.Sprint("not configured"))
	}
}

func connectionLabel(connected bool) string {
	if connected {
		return connectedColor.Sprint("connected")
	}
	return pendingColor.Sprint("not connected")
}

func renderPlan(w io.Writer, plan *model.ServicePlan) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tENABLED\tSCHEDULE\tCONNECTED")
	for _, e := range plan.Entries {
		enabled := disabledColor.Sprint("no")
		if e.Enabled {
			enabled = connectedColor.Sprint("yes")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Name,
			enabled,
			describeSchedule(e.Schedule),
			connectionLabel(e.Connected),
		)
	}
	tw.Flush() //nolint:errcheck // best-effort terminal output
}

func describeSchedule(s model.Schedule) string {
	if s.Frequency == types.FrequencyWeekly {
		return fmt.Sprintf("weekly on %s at %s", s.DayOfWeek.DisplayName(), s.TimeOfDay)
	}
	return fmt.Sprintf("%s at %s", s.Frequency, s.TimeOfDay)
}

func renderJobsTable(w io.Writer, jobs []*model.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No scheduled jobs.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tSTATUS\tNEXT RUN")
	for _, j := range jobs {
		label := j.Prefix
		if label == "" {
			label = j.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", label, jobStatusLabel(j.Status), j.NextRun)
	}
	tw.Flush() //nolint:errcheck // best-effort terminal output
}

func jobStatusLabel(status string) string {
	switch strings.ToLower(status) {
	case "scheduled", "running":
		return connectedColor.Sprint(status)
	case "paused":
		return pendingColor.Sprint(status)
	default:
		return status
	}
}

// renderTimeline lists jobs in next-run order with relative offsets, closest
// first. Jobs without a parseable next run are listed last.
func renderTimeline(w io.Writer, jobs []*model.Job, now time.Time) {
	type slot struct {
		job *model.Job
		at  time.Time
		ok  bool
	}

	slots := make([]slot, 0, len(jobs))
	for _, j := range jobs {
		at, err := time.Parse(time.RFC3339, j.NextRun)
		slots = append(slots, slot{job: j, at: at, ok: err == nil})
	}
	sort.Slice(slots, func(i, k int) bool {
		if slots[i].ok != slots[k].ok {
			return slots[i].ok
		}
		return slots[i].at.Before(slots[k].at)
	})

	headerColor.Fprintln(w, "Upcoming runs")
	for _, s := range slots {
		label := s.job.Prefix
		if label == "" {
			label = s.job.ID
		}
		if !s.ok {
			fmt.Fprintf(w, "  %s  %s\n", disabledColor.Sprint("(unscheduled)"), label)
			continue
		}
		fmt.Fprintf(w, "  %s  %s (%s)\n",
			s.at.Local().Format("Mon 15:04"), label, relativeOffset(s.at, now))
	}
}

func relativeOffset(at, now time.Time) string {
	d := at.Sub(now)
	switch {
	case d < 0:
		return "overdue"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("in %dd", int(d.Hours()/24))
	}
}
