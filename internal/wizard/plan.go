// Package wizard collects the answers a migration run needs, either from a
// terminal or from a plan file.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/files"
	"m2b4a/pkg/yaml"
)

// ErrAborted is returned when the operator interrupts a prompt.
var ErrAborted = errors.New("aborted by the operator")

// Plan answers every question up front, for unattended runs.
type Plan struct {
	Identity     string  `yaml:"identity"`
	Secret       string  `yaml:"secret,omitempty"`
	Signup       bool    `yaml:"signup"`
	ReuseSession bool    `yaml:"reuse_session"`
	SaveSession  bool    `yaml:"save_session"`
	App          PlanApp `yaml:"app"`
	DumpPath     string  `yaml:"dump_path"`
	FilesPath    string  `yaml:"files_path"`
}

// PlanApp selects the target application. An existing application named
// Name is used unless Create is set; otherwise one is created.
type PlanApp struct {
	Name   string `yaml:"name"`
	Create bool   `yaml:"create"`
	Drop   bool   `yaml:"drop"`
}

// ExamplePlan is printed by --print-plan.
func ExamplePlan() Plan {
	return Plan{
		Identity:     "alice@example.com",
		ReuseSession: true,
		App:          PlanApp{Name: "MyApp", Drop: true},
		DumpPath:     "/tmp/dump",
	}
}

// LoadPlan reads a plan file. Unknown fields are rejected.
func LoadPlan(path string) (Plan, error) {
	var p Plan
	if err := yaml.ReadFile(path, &p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Validate reports the first missing answer. The secret may be left out
// when a saved session is reused.
func (p Plan) Validate() error {
	switch {
	case p.Identity == "" && !p.ReuseSession:
		return fmt.Errorf("plan: identity is required")
	case p.Secret == "" && !p.ReuseSession:
		return fmt.Errorf("plan: secret is required unless reuse_session is set")
	case p.App.Name == "":
		return fmt.Errorf("plan: app.name is required")
	case p.DumpPath == "":
		return fmt.Errorf("plan: dump_path is required")
	}
	return nil
}

// PlanPrompter answers from a Plan.
type PlanPrompter struct {
	plan Plan
}

// NewPlanPrompter returns a prompter answering from p.
func NewPlanPrompter(p Plan) *PlanPrompter {
	return &PlanPrompter{plan: p}
}

// ReuseSession accepts the saved session only when it belongs to the
// planned identity.
func (p *PlanPrompter) ReuseSession(_ context.Context, identity string) (bool, error) {
	if !p.plan.ReuseSession {
		return false, nil
	}
	return p.plan.Identity == "" || p.plan.Identity == identity, nil
}

func (p *PlanPrompter) HasAccount(context.Context) (bool, error) {
	return !p.plan.Signup, nil
}

func (p *PlanPrompter) Identity(context.Context) (string, error) {
	if p.plan.Identity == "" {
		return "", fmt.Errorf("plan: identity is required, the saved session was not used")
	}
	return p.plan.Identity, nil
}

func (p *PlanPrompter) Secret(context.Context) (string, error) {
	if p.plan.Secret == "" {
		return "", fmt.Errorf("plan: secret is required, the saved session was not used")
	}
	return p.plan.Secret, nil
}

func (p *PlanPrompter) SaveSession(context.Context) (bool, error) {
	return p.plan.SaveSession, nil
}

// SelectApplication picks the application named in the plan. A missing
// application is created.
func (p *PlanPrompter) SelectApplication(_ context.Context, apps []model.ApplicationSummary) (model.ApplicationSummary, bool, error) {
	if p.plan.App.Create {
		return model.ApplicationSummary{}, false, nil
	}
	for _, app := range apps {
		if app.Name == p.plan.App.Name {
			return app, true, nil
		}
	}
	return model.ApplicationSummary{}, false, nil
}

func (p *PlanPrompter) Drop(context.Context, model.Application) (bool, error) {
	return p.plan.App.Drop, nil
}

func (p *PlanPrompter) ApplicationName(context.Context) (string, error) {
	return p.plan.App.Name, nil
}

func (p *PlanPrompter) DumpPath(context.Context) (string, error) {
	return existingDir(p.plan.DumpPath)
}

func (p *PlanPrompter) FilesPath(context.Context) (string, bool, error) {
	if p.plan.FilesPath == "" {
		return "", false, nil
	}
	path, err := existingDir(p.plan.FilesPath)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

func existingDir(path string) (string, error) {
	expanded, err := files.ExpandHome(path)
	if err != nil {
		return "", err
	}
	if !files.IsDir(expanded) {
		return "", fmt.Errorf("the path %s does not exist or is not a directory", path)
	}
	return expanded, nil
}
