// cmd/regclean/main.go - removes stale Steam uninstall entries from the registry.

package main

import (
	"github.com/windowsadmins/winadmin/pkg/elevate"
	"github.com/windowsadmins/winadmin/pkg/regclean"
	"github.com/windowsadmins/winadmin/pkg/tool"
)

func main() {
	app := tool.New("regclean", elevate.StdinIgnore)
	dryRun := app.Flags.Bool("dry-run", false, "List matching entries without removing them.")
	app.Start()

	app.Finish(run(app, regclean.NewRegistryStore(), *dryRun))
}

func run(app *tool.App, store regclean.Store, dryRun bool) error {
	cfg := app.Config.Registry
	log := app.Log
	cleaner := regclean.NewCleaner(store, cfg.Match, cfg.Retries, log)

	log.Info("Searching for %q uninstall entries...", cfg.Match)
	entries, err := cleaner.Find(cfg.Roots)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Info("No matching entries found.")
		return nil
	}

	if dryRun {
		for _, e := range entries {
			log.Info("  - Would remove: %s", e.Path())
		}
		log.Info("Dry run: %d entries left in place.", len(entries))
		return nil
	}

	removed, err := cleaner.Remove(entries)
	log.Success("Removed %d of %d entries.", removed, len(entries))
	return err
}
