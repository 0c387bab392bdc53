package config

import (
	"fmt"

	"libcprobe/pkg/check"
	"libcprobe/pkg/manifest"
)

// Ctl contains configuration specific to controller mode.
type Ctl struct {
	// Suites and Checks restrict which checks run. Empty means all.
	Suites []string
	Checks []string

	// Manifest holds the expected outputs, loaded via LoadManifest.
	Manifest *manifest.Manifest

	Report  string
	Strict  bool
	Console bool

	manifestPath string
	manifestErr  error
}

// LoadManifest loads the expectations manifest at path. An empty path
// loads the built-in defaults. Errors are reported through Validate so
// they surface together with the other config errors.
func (cCfg *Ctl) LoadManifest(path string) {
	cCfg.manifestPath = path

	if path == "" {
		cCfg.Manifest = manifest.Default()
		return
	}

	cCfg.Manifest, cCfg.manifestErr = manifest.Load(path)
}

// Validate ...
func (cCfg *Ctl) Validate() []error {
	var errors []error

	if cCfg.manifestErr != nil {
		errors = append(errors, fmt.Errorf("Manifest '%s': %s", cCfg.manifestPath, cCfg.manifestErr))
	}

	for _, name := range cCfg.Suites {
		if _, ok := check.LookupSuite(name); !ok {
			errors = append(errors, fmt.Errorf("Unknown suite '%s'", name))
		}
	}

	for _, name := range cCfg.Checks {
		if _, _, ok := check.LookupCheck(name); !ok {
			errors = append(errors, fmt.Errorf("Unknown check '%s'", name))
		}
	}

	if cCfg.Console {
		if len(cCfg.Suites) > 0 || len(cCfg.Checks) > 0 {
			errors = append(errors, fmt.Errorf("You can't combine '--console' with '--suite' or '--check'"))
		}

		if cCfg.Strict {
			errors = append(errors, fmt.Errorf("You can't combine '--console' with '--strict'"))
		}

		if cCfg.Report != "" {
			errors = append(errors, fmt.Errorf("You can't combine '--console' with '--report'"))
		}
	}

	return errors
}
