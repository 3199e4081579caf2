// cmd/getupdates/main.go - lists and installs package upgrades with winget.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/windowsadmins/winadmin/pkg/blocking"
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/prompt"
	"github.com/windowsadmins/winadmin/pkg/runner"
	"github.com/windowsadmins/winadmin/pkg/tool"
	"github.com/windowsadmins/winadmin/pkg/winget"
)

func main() {
	app := tool.New("getupdates", elevate.StdinInherit)
	app.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app.Finish(run(ctx, app, runner.NewExecRunner()))
}

// wingetRunning is replaced in tests.
var wingetRunning = func() (bool, error) {
	return blocking.IsAppRunning("winget.exe")
}

func run(ctx context.Context, app *tool.App, r runner.Runner) error {
	cfg := app.Config.Updates
	log := app.Log
	client := winget.New(cfg.Winget, r)

	have, err := client.CheckMinimum(ctx, cfg.MinimumVersion)
	if err != nil {
		if errors.Is(err, winget.ErrTooOld) {
			return fmt.Errorf("%w; update App Installer from the Microsoft Store", err)
		}
		return fmt.Errorf("winget is not available: %w", err)
	}
	if have != nil {
		log.Debug("winget %s", have)
	}

	if busy, err := wingetRunning(); err != nil {
		log.Debug("Could not list running processes: %v", err)
	} else if busy {
		return errors.New("another winget process is running; wait for it to finish and try again")
	}

	log.Info("Checking for updates...")
	if err := client.Run(ctx, cfg.ListArgs); err != nil {
		return fmt.Errorf("failed to list updates: %w", err)
	}

	if !app.Common.Yes {
		ok, err := app.Prompt.Confirm("Do you want to proceed with upgrading all packages? (y/n) ")
		if err != nil && !errors.Is(err, prompt.ErrNoInput) {
			return err
		}
		if !ok {
			log.Info("Upgrade cancelled by user.")
			return nil
		}
	}

	log.Info("Upgrading all packages...")
	if err := client.Run(ctx, cfg.UpgradeArgs); err != nil {
		return fmt.Errorf("upgrade failed: %w", err)
	}
	log.Success("All packages upgraded.")
	return nil
}
