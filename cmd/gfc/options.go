package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/gfcedit/config"
	"github.com/dhamidi/gfcedit/workspace"
)

type globalOptions struct {
	schema  string
	config  string
	verbose int
	logFile string

	verboseSet bool
	logFileSet bool
}

// configureLogging applies the flags, falling back to cfg for values not
// given on the command line.
func (o *globalOptions) configureLogging(cfg *config.Config) {
	verbosity, logFile := o.verbose, o.logFile
	if cfg != nil {
		if !o.verboseSet {
			verbosity = cfg.Verbosity
		}
		if !o.logFileSet {
			logFile = cfg.LogFile
		}
	}
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.config != "" {
		cfg, err = config.LoadFile(o.config)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return nil, err
	}
	if o.schema != "" {
		cfg.Schema = o.schema
		if abs, err := filepath.Abs(o.schema); err == nil {
			cfg.Schema = abs
		}
	}
	if cfg.Verbosity != 0 || cfg.LogFile != "" {
		o.configureLogging(cfg)
	}
	return cfg, nil
}

// openWorkspace loads the configuration and the schema. Without a schema
// every instance counts as unknown, which is reported but not fatal.
func (o *globalOptions) openWorkspace() (*workspace.Workspace, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	ws := workspace.New(cfg.Root, cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	path, err := workspace.LocateSchema(cfg, wd)
	if err != nil {
		log.Warningf("%s", err)
		return ws, nil
	}
	if err := ws.LoadSchema(path); err != nil {
		return nil, err
	}
	return ws, nil
}
