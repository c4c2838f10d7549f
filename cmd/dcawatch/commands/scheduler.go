package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/history"
	"github.com/lmercier/dcawatch/internal/scheduler"
	"github.com/lmercier/dcawatch/internal/scheduler/jobs"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/internal/settings"
)

// schedulerCmd manages the scheduled scoring daemon.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run or inspect the scoring scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Subcommands:
  start   - start the daemon (Ctrl+C to stop)
  list    - registered jobs
  run     - trigger a job immediately

Example:
  dcawatch scheduler start
  dcawatch scheduler run score_pass`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Trigger a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down scheduler...")
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := sched.RunJob(args[0]); err != nil {
		return err
	}

	fmt.Printf("Job %s triggered\n", args[0])

	// One-shot trigger from the CLI: wait for the run to land in the
	// history so the process does not exit mid-pass.
	waitForJob(sched, args[0])
	return nil
}

func waitForJob(sched *scheduler.Scheduler, jobName string) {
	for {
		time.Sleep(200 * time.Millisecond)
		h, err := sched.History(jobName)
		if err != nil {
			return
		}
		if last := h.LastResult(); last != nil {
			if last.Success {
				PrintSuccess(fmt.Sprintf("Job %s completed in %s", jobName, last.Duration))
			} else {
				PrintError(fmt.Sprintf("Job %s failed: %s", jobName, last.Error))
			}
			return
		}
	}
}

// initScheduler wires the full daemon dependency graph.
func initScheduler(ctx context.Context) (*scheduler.Scheduler, *app, error) {
	a, err := initApp()
	if err != nil {
		return nil, nil, err
	}

	db, err := a.database()
	if err != nil {
		a.close()
		return nil, nil, err
	}

	settingsRepo := settings.NewRepository(db.Pool)
	store := history.NewRepository(db.Pool, a.hash)

	params, err := a.params(ctx, settingsRepo)
	if err != nil {
		a.close()
		return nil, nil, err
	}

	engine, err := scoring.NewEngine(a.marketData(), params, a.strategy.Lookback(), a.log)
	if err != nil {
		a.close()
		return nil, nil, err
	}

	sched := scheduler.New(a.log)
	job := jobs.NewScoreJob(engine, a.strategy, settingsRepo, a.notifier(), store, a.log)
	if err := sched.AddJob(job); err != nil {
		a.close()
		return nil, nil, err
	}

	return sched, a, nil
}
