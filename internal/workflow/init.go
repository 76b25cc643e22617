package workflow

import (
	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/config"
)

// InitOptions are the switches of `autoscribe init`.
type InitOptions struct {
	// Force overwrites an existing changelog and config file.
	Force bool
}

// InitResult reports which files init wrote.
type InitResult struct {
	ChangelogPath    string
	ChangelogWritten bool
	ConfigPath       string
	ConfigWritten    bool
}

// Init writes an empty changelog with an Unreleased section and the default
// config template. Existing files are left alone unless opts.Force is set.
func (r *Runner) Init(opts InitOptions) (*InitResult, error) {
	res := &InitResult{ChangelogPath: r.cfg.Output}

	if r.exists(r.cfg.Output) && !opts.Force {
		r.log.Infof("%s already exists, skipping", r.displayPath(r.cfg.Output))
	} else {
		cl := changelog.New()
		cl.AddVersion(changelog.Version{Number: changelog.Unreleased, Date: r.now()})
		if err := r.writeChangelog(r.cfg.Output, cl); err != nil {
			return res, err
		}
		res.ChangelogWritten = true
		r.log.Successf("Created %s", r.displayPath(r.cfg.Output))
	}

	if r.cfg.Source != "" && !opts.Force {
		res.ConfigPath = r.cfg.Source
		r.log.Infof("%s already exists, skipping", r.displayPath(r.cfg.Source))
		return res, nil
	}

	res.ConfigPath = config.ProjectConfigPath(r.cfg.Dir)
	if err := r.writeFile(res.ConfigPath, []byte(config.GetDefaultConfigTemplate())); err != nil {
		return res, err
	}
	res.ConfigWritten = true
	r.log.Successf("Created %s", r.displayPath(res.ConfigPath))
	return res, nil
}
