package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the
// duration until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		schedule   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the scene list on a schedule",
		Long:  "Periodically fetches the scene list and reports status changes. The schedule is a 5-field cron expression from the config's watch.cron, overridable with --cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchCmd(cmd, configPath, schedule)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&schedule, "cron", "", "cron expression override")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, configPath, schedule string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	if schedule == "" {
		schedule = a.cfg.Watch.Cron
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "Watching scenes on schedule %q... (Ctrl+C to stop)\n", schedule)

	// Track last known statuses to report only changes.
	last := map[string]string{}
	if scenes, err := a.store.Scenes(); err == nil {
		for _, s := range scenes {
			last[s.ID] = s.Status
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Stopped")
			return nil
		case <-time.After(nextCronDuration(schedule)):
		}

		scenes, err := a.engine.FetchScenes(ctx)
		if err != nil {
			fmt.Fprintf(out, "Refresh failed: %v\n", err)
			continue
		}
		for _, s := range scenes {
			prev, ok := last[s.ID]
			if !ok {
				prev = "new"
			}
			if prev != s.Status {
				fmt.Fprintf(out, "[%s] %s: %s -> %s (%d%%)\n",
					time.Now().Format("15:04:05"), s.ID, prev, s.Status, s.Progress)
			}
			last[s.ID] = s.Status
		}
	}
}
