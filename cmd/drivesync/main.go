// cmd/drivesync/main.go - mirrors the working directories onto a backup drive with robocopy.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/windowsadmins/winadmin/pkg/blocking"
	"github.com/windowsadmins/winadmin/pkg/config"
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/mirror"
	"github.com/windowsadmins/winadmin/pkg/runner"
	"github.com/windowsadmins/winadmin/pkg/tool"
)

func main() {
	app := tool.New("drivesync", elevate.StdinInherit)
	dest := app.Flags.StringP("dest", "d", "", "Destination drive letter (skips the prompt).")
	force := app.Flags.Bool("force", false, "Run even if another robocopy is already running.")
	app.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app.Finish(run(ctx, app, *dest, *force))
}

func planOptions(cfg config.MirrorConfig, systemDrive, dest string) mirror.PlanOptions {
	tasks := make([]mirror.Task, 0, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		tasks = append(tasks, mirror.Task{Source: t.Source, Destination: t.Destination})
	}
	return mirror.PlanOptions{
		OriginDrive:   cfg.OriginDrive,
		SystemDrive:   systemDrive,
		DestLetter:    dest,
		AllowedDrives: cfg.AllowedDrives,
		Flags:         cfg.Flags,
		Threshold:     cfg.SuccessThreshold,
		Tasks:         tasks,
	}
}

func run(ctx context.Context, app *tool.App, dest string, force bool) error {
	cfg := app.Config.Mirror
	log := app.Log

	systemDrive := os.Getenv("SYSTEMDRIVE")
	if systemDrive == "" {
		return errors.New("SYSTEMDRIVE environment variable is not set")
	}

	if dest == "" {
		question := fmt.Sprintf("Enter destination drive letter (%s): ", strings.Join(cfg.AllowedDrives, "/"))
		choice, err := app.Prompt.Choose(question, cfg.AllowedDrives)
		if err != nil {
			return err
		}
		dest = choice
	}

	plan, err := mirror.BuildPlan(planOptions(cfg, systemDrive, dest))
	if err != nil {
		return err
	}

	log.Info("Origin drive:      %s", plan.OriginRoot)
	log.Info("System drive:      %s", plan.SystemRoot)
	if info, err := mirror.Describe(plan.DestRoot); err != nil {
		log.Warning("%v", err)
		log.Info("Destination drive: %s", plan.DestRoot)
	} else {
		log.Info("Destination drive: %s", info)
	}
	log.Info("Robocopy flags:    %s", strings.Join(plan.Flags, " "))
	for _, t := range plan.Tasks {
		log.Info("  %s -> %s", t.Source, t.Destination)
	}

	if !app.Common.Yes {
		app.Prompt.WaitForEnter("Press Enter to continue...")
	}

	if busy, err := blocking.IsAppRunning("robocopy.exe"); err != nil {
		log.Debug("Could not list running processes: %v", err)
	} else if busy && !force {
		return errors.New("robocopy is already running; use --force to start anyway")
	}

	syncer := &mirror.Syncer{Robocopy: cfg.Robocopy, Runner: runner.NewExecRunner(), Log: log}
	if err := syncer.Run(ctx, plan); err != nil {
		return err
	}
	log.Success("Synchronization complete.")
	return nil
}
