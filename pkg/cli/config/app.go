package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/hourbeam/hourbeam/pkg/usecase"
)

// App holds the path to the optional application configuration file. The file
// carries matcher tuning and the calendar color-to-label table:
//
//	[tuning]
//	similarity_threshold = 0.6
//	min_support = 2
//
//	[labels]
//	"5" = "internal"
//	"11" = "client-acme"
type App struct {
	path string
}

// appFile is the on-disk shape of the configuration file
type appFile struct {
	Tuning usecase.Tuning    `toml:"tuning"`
	Labels map[string]string `toml:"labels"`
}

// Flags returns CLI flags for application configuration
func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration file (tuning and color labels)",
			Sources:     cli.EnvVars("HOURBEAM_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure loads tuning parameters and the color label table. Without a
// config file the defaults apply and no color labels are defined.
func (x *App) Configure() (usecase.Tuning, map[string]string, error) {
	file := appFile{Tuning: usecase.DefaultTuning()}
	if x.path == "" {
		return file.Tuning, nil, nil
	}

	data, err := os.ReadFile(x.path)
	if err != nil {
		return usecase.Tuning{}, nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", x.path))
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return usecase.Tuning{}, nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", x.path))
	}
	if err := file.Tuning.Validate(); err != nil {
		return usecase.Tuning{}, nil, goerr.Wrap(err, "config validation failed", goerr.V("path", x.path))
	}

	return file.Tuning, file.Labels, nil
}
