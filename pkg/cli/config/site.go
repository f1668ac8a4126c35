package config

import (
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/types"
	"github.com/m-mizutani/meteo/pkg/infra/site"
	"github.com/urfave/cli/v3"
)

// Site holds the weather station website configuration
type Site struct {
	BaseURL string
}

// Flags returns CLI flags for site configuration
func (c *Site) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "site-url",
			Usage:       "Base URL of the weather station website",
			Value:       site.DefaultBaseURL,
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("METEO_SITE_URL"),
		},
	}
}

// NewClient creates the site client
func (c *Site) NewClient() (interfaces.ReportSite, error) {
	return site.NewClient(c.BaseURL, site.WithUserAgent("meteo/"+types.Version))
}
