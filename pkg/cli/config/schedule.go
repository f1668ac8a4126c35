package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// DefaultSchedule runs the nightly sync at 02:00 UTC
const DefaultSchedule = "0 2 * * *"

// Schedule holds the periodic sync configuration of the server
type Schedule struct {
	Spec    string
	Publish bool
}

// Flags returns CLI flags for schedule configuration
func (c *Schedule) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "schedule",
			Usage:       "Cron expression (UTC) of the periodic sync, disabled when empty",
			Value:       DefaultSchedule,
			Destination: &c.Spec,
			Sources:     cli.EnvVars("METEO_SCHEDULE"),
		},
		&cli.BoolFlag{
			Name:        "schedule-publish",
			Usage:       "Publish the reports after a scheduled sync",
			Destination: &c.Publish,
			Sources:     cli.EnvVars("METEO_SCHEDULE_PUBLISH"),
		},
	}
}

// Enabled reports whether a periodic sync is configured
func (c *Schedule) Enabled() bool {
	return c.Spec != ""
}

// Validate checks the cron expression and that a publisher exists when scheduled runs publish
func (c *Schedule) Validate(publish *Publish) error {
	if !c.Enabled() {
		return nil
	}
	if _, err := cron.ParseStandard(c.Spec); err != nil {
		return goerr.Wrap(err, "invalid schedule", goerr.V("schedule", c.Spec))
	}
	if c.Publish && !publish.Enabled() {
		return goerr.New("--schedule-publish requires --publish", goerr.V("schedule", c.Spec))
	}
	return nil
}
