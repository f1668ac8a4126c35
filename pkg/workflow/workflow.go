// Package workflow checks the GitHub Actions manifest that runs the nightly data preparation
package workflow

import (
	"bytes"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the manifest lives in the repository
const DefaultPath = ".github/workflows/prepare-data.yml"

var (
	ErrNoTrigger      = goerr.New("workflow has neither workflow_dispatch nor schedule trigger")
	ErrInvalidCron    = goerr.New("invalid cron expression")
	ErrMissingWrite   = goerr.New("workflow lacks contents: write permission")
	ErrNoStep         = goerr.New("workflow has no step")
	ErrNoCommandStep  = goerr.New("no step runs a known command")
	ErrInvalidTrigger = goerr.New("invalid trigger definition")
	ErrInvalidScope   = goerr.New("invalid permissions definition")
)

// schedules of GitHub Actions take the five standard fields, without descriptors or TZ=
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Workflow is the subset of a GitHub Actions manifest that matters here
type Workflow struct {
	Name        string            `yaml:"name"`
	On          Triggers          `yaml:"on"`
	Permissions Permissions       `yaml:"permissions"`
	Jobs        map[string]Job    `yaml:"jobs"`
}

// Job of a workflow
type Job struct {
	RunsOn      any         `yaml:"runs-on"`
	Permissions Permissions `yaml:"permissions"`
	Steps       []Step      `yaml:"steps"`
}

// Step of a job. Exactly one of Uses and Run is usually set.
type Step struct {
	Name string         `yaml:"name"`
	Uses string         `yaml:"uses"`
	Run  string         `yaml:"run"`
	With map[string]any `yaml:"with"`
}

// Schedule is one cron entry of the schedule trigger
type Schedule struct {
	Cron string `yaml:"cron"`
}

// Triggers are the events starting the workflow. `on` may be a string, a list or a map.
type Triggers struct {
	Dispatch  bool
	Schedules []Schedule
	Others    []string
}

// UnmarshalYAML accepts the three forms of `on`
func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.add(node.Value)
		return nil

	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return goerr.Wrap(err, "failed to decode trigger list")
		}
		for _, name := range names {
			t.add(name)
		}
		return nil

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			value := node.Content[i+1]
			if name == "schedule" {
				if err := value.Decode(&t.Schedules); err != nil {
					return goerr.Wrap(err, "failed to decode schedule trigger")
				}
				continue
			}
			t.add(name)
		}
		return nil
	}

	return goerr.Wrap(ErrInvalidTrigger, "unexpected YAML node", goerr.V("line", node.Line))
}

// Permissions of the GITHUB_TOKEN. `permissions` is either a scope map or one of
// read-all and write-all.
type Permissions struct {
	All    string
	Scopes map[string]string
}

// UnmarshalYAML accepts both forms of `permissions`
func (p *Permissions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.All = node.Value
		return nil
	case yaml.MappingNode:
		if err := node.Decode(&p.Scopes); err != nil {
			return goerr.Wrap(err, "failed to decode permission scopes")
		}
		return nil
	}
	return goerr.Wrap(ErrInvalidScope, "unexpected YAML node", goerr.V("line", node.Line))
}

// CanWrite reports whether scope is granted write access
func (p Permissions) CanWrite(scope string) bool {
	return p.All == "write-all" || p.Scopes[scope] == "write"
}

func (t *Triggers) add(name string) {
	if name == "workflow_dispatch" {
		t.Dispatch = true
		return
	}
	t.Others = append(t.Others, name)
}

// Load reads and parses the manifest at path
func Load(path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workflow", goerr.V("path", path))
	}

	wf, err := Parse(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse workflow", goerr.V("path", path))
	}
	return wf, nil
}

// Parse decodes a manifest
func Parse(raw []byte) (*Workflow, error) {
	var wf Workflow
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&wf); err != nil {
		return nil, goerr.Wrap(err, "failed to decode workflow YAML")
	}
	return &wf, nil
}

// Validate checks that the workflow can be triggered, may push, and runs one of commands
func (wf *Workflow) Validate(commands []string) error {
	if !wf.On.Dispatch && len(wf.On.Schedules) == 0 {
		return goerr.Wrap(ErrNoTrigger, "workflow cannot be started")
	}

	for _, s := range wf.On.Schedules {
		if _, err := cronParser.Parse(s.Cron); err != nil {
			return goerr.Wrap(ErrInvalidCron, err.Error(), goerr.V("cron", s.Cron))
		}
	}

	steps := 0
	writable := wf.Permissions.CanWrite("contents")
	var runs []string
	for _, job := range wf.Jobs {
		steps += len(job.Steps)
		if job.Permissions.CanWrite("contents") {
			writable = true
		}
		for _, step := range job.Steps {
			if step.Run != "" {
				runs = append(runs, step.Run)
			}
		}
	}

	if !writable {
		return goerr.Wrap(ErrMissingWrite, "publishing reports would be rejected")
	}
	if steps == 0 {
		return goerr.Wrap(ErrNoStep, "workflow does nothing")
	}
	if !invokesCommand(runs, commands) {
		return goerr.Wrap(ErrNoCommandStep, "workflow does not prepare data", goerr.V("commands", commands))
	}
	return nil
}

func invokesCommand(runs, commands []string) bool {
	for _, run := range runs {
		for _, line := range strings.Split(run, "\n") {
			for _, field := range strings.Fields(line) {
				for _, cmd := range commands {
					if field == cmd {
						return true
					}
				}
			}
		}
	}
	return false
}
