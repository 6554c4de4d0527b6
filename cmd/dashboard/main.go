package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"engagement-dashboard/internal/config"
	"engagement-dashboard/internal/export"
	"engagement-dashboard/internal/logging"
	"engagement-dashboard/internal/model"
	"engagement-dashboard/internal/pipeline"
	"engagement-dashboard/internal/session"
)

// listFlag is a comma separated value list. Unset means "all values".
type listFlag struct {
	values []string
	set    bool
}

func (l *listFlag) String() string { return strings.Join(l.values, ",") }

func (l *listFlag) Set(s string) error {
	l.set = true
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			l.values = append(l.values, v)
		}
	}
	if l.values == nil {
		l.values = []string{}
	}
	return nil
}

// selection returns nil when the flag was never given.
func (l *listFlag) selection() []string {
	if !l.set {
		return nil
	}
	return l.values
}

// intFlag is an optional integer.
type intFlag struct{ v *int }

func (i *intFlag) String() string {
	if i.v == nil {
		return ""
	}
	return fmt.Sprint(*i.v)
}

func (i *intFlag) Set(s string) error {
	var n int
	if _, err := fmt.Sscan(s, &n); err != nil {
		return err
	}
	i.v = &n
	return nil
}

func main() {
	var (
		genders, professions, locations, platforms, devices, selected listFlag
		ageMin, ageMax                                                intFlag
	)
	configPath := flag.String("config", "", "path to YAML config file")
	source := flag.String("source", "", "CSV dataset (overrides dataset.source)")
	out := flag.String("out", "", "export directory (overrides export.dir)")
	format := flag.String("format", "", "export format: csv, json or sqlite (overrides export.format)")
	flag.Var(&genders, "gender", "comma separated genders to keep")
	flag.Var(&professions, "profession", "comma separated professions to keep")
	flag.Var(&locations, "location", "comma separated locations to keep")
	flag.Var(&platforms, "platform", "comma separated platforms to keep")
	flag.Var(&devices, "device", "comma separated device types to keep")
	flag.Var(&selected, "pie-platforms", "platforms shown in the platform share view")
	flag.Var(&ageMin, "age-min", "minimum age (inclusive)")
	flag.Var(&ageMax, "age-max", "maximum age (inclusive)")
	flag.Parse()

	if err := run(*configPath, *source, *out, *format, model.RenderRequest{
		Filter: model.FilterRequest{
			Genders:     genders.selection(),
			Professions: professions.selection(),
			Locations:   locations.selection(),
			Platforms:   platforms.selection(),
			DeviceTypes: devices.selection(),
			AgeMin:      ageMin.v,
			AgeMax:      ageMax.v,
		},
		SelectedPlatforms: selected.values,
	}); err != nil {
		logging.Error().Err(err).Msg("dashboard run failed")
		os.Exit(1)
	}
}

func run(configPath, source, out, format string, req model.RenderRequest) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if source != "" {
		cfg.Dataset.Source = source
	}
	if out != "" {
		cfg.Export.Dir = out
	}
	if format != "" {
		cfg.Export.Format = format
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		DateLayouts:         cfg.Dataset.DateLayouts,
		NormalizeCategories: cfg.Dataset.NormalizeCategories,
	}
	if start, ok := cfg.Dataset.SyntheticStart(); ok {
		opts.SyntheticStart = start
	}

	s, err := session.Open(ctx, cfg.Dataset.Source, opts)
	if err != nil {
		return err
	}

	snap, err := s.Render(ctx, req)
	if err != nil {
		return err
	}

	em := export.NewExportManager(export.Options{
		Format:     cfg.Export.Format,
		Dir:        cfg.Export.Dir,
		SQLitePath: cfg.Export.SQLitePath,
	})
	result, err := em.Export(ctx, snap, s.Report())
	if err != nil {
		return err
	}

	fmt.Printf("rows: %d, exported %d records to %s (%s)\n", snap.Rows, result.RecordCount, result.Path, result.Type)
	return nil
}
