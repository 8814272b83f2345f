package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hrops-lab/schedctl/pkg/cli/config"
	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/service/scheduler"
	"github.com/hrops-lab/schedctl/pkg/usecase"
)

func cmdServices() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "services",
		Usage: "Configure per-service schedules interactively",
		Flags: clientCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			api, store, err := clientCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(api, store)

			plan := model.DefaultServicePlan()
			view, err := uc.BootstrapServices(ctx, plan)
			if err != nil {
				return clearSessionOnAuthError(ctx, store, err)
			}

			fmt.Printf("Configuring services for %s. Type `help` for commands.\n\n", view.User.Name)
			return runServicesREPL(ctx, uc, plan, os.Stdin, os.Stdout)
		},
	}
}

// runServicesREPL drives the interactive services screen. Edits stay local
// until an explicit save; quitting without saving discards them.
func runServicesREPL(ctx context.Context, uc *usecase.UseCases, plan *model.ServicePlan, in io.Reader, out io.Writer) error {
	renderPlan(out, plan)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "services> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "show":
			renderPlan(out, plan)

		case "enable", "disable":
			entry, err := planEntry(plan, fields, 2)
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			entry.Enabled = fields[0] == "enable"
			renderPlan(out, plan)

		case "freq":
			entry, err := planEntry(plan, fields, 3)
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			freq, err := types.ParseFrequency(fields[2])
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			entry.Schedule.SetFrequency(freq)
			renderPlan(out, plan)

		case "time":
			entry, err := planEntry(plan, fields, 3)
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			prev := entry.Schedule.TimeOfDay
			entry.Schedule.TimeOfDay = fields[2]
			if err := entry.Schedule.Validate(); err != nil {
				entry.Schedule.TimeOfDay = prev
				fmt.Fprintln(out, "Time must be in HH:MM format.")
				continue
			}
			renderPlan(out, plan)

		case "day":
			entry, err := planEntry(plan, fields, 3)
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			day, err := types.ParseWeekday(fields[2])
			if err != nil {
				fmt.Fprintln(out, err.Error())
				continue
			}
			entry.Schedule.DayOfWeek = day
			renderPlan(out, plan)

		case "save":
			if err := uc.SaveServices(ctx, plan); err != nil {
				if errors.Is(err, usecase.ErrValidation) {
					fmt.Fprintln(out, scheduler.ErrorMessage(err))
					continue
				}
				return err
			}
			fmt.Fprintln(out, "Saved.")
			renderPlan(out, plan)

		case "help":
			fmt.Fprintln(out, "Commands: show | enable <service> | disable <service> | freq <service> <daily|hourly|weekly> | time <service> <HH:MM> | day <service> <mon..sun> | save | quit")

		case "quit", "exit":
			return nil

		default:
			fmt.Fprintf(out, "Unknown command %q. Type `help` for commands.\n", fields[0])
		}
	}
}

func planEntry(plan *model.ServicePlan, fields []string, want int) (*model.ServiceEntry, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("usage: %s <service>%s", fields[0], strings.Repeat(" <value>", want-2))
	}
	name, err := types.ParseServiceName(fields[1])
	if err != nil {
		// Accept case-insensitive input at the prompt
		for _, candidate := range types.AllServiceNames() {
			if strings.EqualFold(fields[1], candidate.String()) {
				name, err = candidate, nil
				break
			}
		}
		if err != nil {
			return nil, err
		}
	}
	entry := plan.Entry(name)
	if entry == nil {
		return nil, fmt.Errorf("service %s is not configurable", name)
	}
	return entry, nil
}
