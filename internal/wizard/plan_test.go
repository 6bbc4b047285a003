package wizard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"m2b4a/internal/domain/model"
)

func writePlan(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "plan.yaml")
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)
	return path
}

func TestLoadPlan(t *testing.T) {
	c := qt.New(t)
	path := writePlan(c, `
identity: alice@example.com
secret: s3cret
save_session: true
app:
  name: MyApp
  drop: true
dump_path: /tmp/dump
`)

	plan, err := LoadPlan(path)
	c.Assert(err, qt.IsNil)
	c.Assert(plan, qt.DeepEquals, Plan{
		Identity:    "alice@example.com",
		Secret:      "s3cret",
		SaveSession: true,
		App:         PlanApp{Name: "MyApp", Drop: true},
		DumpPath:    "/tmp/dump",
	})
	c.Assert(plan.Validate(), qt.IsNil)
}

func TestLoadPlanRejectsUnknownFields(t *testing.T) {
	c := qt.New(t)
	_, err := LoadPlan(writePlan(c, "identity: a\npasword: typo\n"))
	c.Assert(err, qt.IsNotNil)
}

func TestPlanValidate(t *testing.T) {
	valid := Plan{Identity: "a", Secret: "s", App: PlanApp{Name: "n"}, DumpPath: "d"}
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr string
	}{
		{"valid", func(*Plan) {}, ""},
		{"no identity", func(p *Plan) { p.Identity = "" }, "plan: identity is required"},
		{"no secret", func(p *Plan) { p.Secret = "" }, "plan: secret is required.*"},
		{"session reuse without secret", func(p *Plan) { p.Secret = ""; p.ReuseSession = true }, ""},
		{"no app", func(p *Plan) { p.App.Name = "" }, "plan: app.name is required"},
		{"no dump", func(p *Plan) { p.DumpPath = "" }, "plan: dump_path is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				qt.Assert(t, err, qt.IsNil)
				return
			}
			qt.Assert(t, err, qt.ErrorMatches, tt.wantErr)
		})
	}
}

func TestPlanPrompterAnswers(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	dump := c.TempDir()
	p := NewPlanPrompter(Plan{
		Identity:     "alice@example.com",
		Secret:       "s3cret",
		ReuseSession: true,
		App:          PlanApp{Name: "MyApp", Drop: true},
		DumpPath:     dump,
	})

	reuse, err := p.ReuseSession(ctx, "alice@example.com")
	c.Assert(err, qt.IsNil)
	c.Assert(reuse, qt.IsTrue)
	reuse, _ = p.ReuseSession(ctx, "bob@example.com")
	c.Assert(reuse, qt.IsFalse)

	hasAccount, _ := p.HasAccount(ctx)
	c.Assert(hasAccount, qt.IsTrue)

	apps := []model.ApplicationSummary{{ID: "1", Name: "Other"}, {ID: "42", Name: "MyApp"}}
	selected, ok, err := p.SelectApplication(ctx, apps)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(selected.ID, qt.Equals, "42")

	drop, _ := p.Drop(ctx, model.Application{})
	c.Assert(drop, qt.IsTrue)

	path, err := p.DumpPath(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(path, qt.Equals, dump)

	_, hasFiles, err := p.FilesPath(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(hasFiles, qt.IsFalse)
}

func TestPlanPrompterCreatesMissingApplication(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	apps := []model.ApplicationSummary{{ID: "1", Name: "Other"}}

	_, ok, err := NewPlanPrompter(Plan{App: PlanApp{Name: "MyApp"}}).SelectApplication(ctx, apps)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	apps = append(apps, model.ApplicationSummary{ID: "42", Name: "MyApp"})
	_, ok, _ = NewPlanPrompter(Plan{App: PlanApp{Name: "MyApp", Create: true}}).SelectApplication(ctx, apps)
	c.Assert(ok, qt.IsFalse)
}

func TestPlanPrompterRejectsMissingDirectories(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	missing := filepath.Join(c.TempDir(), "absent")
	p := NewPlanPrompter(Plan{DumpPath: missing, FilesPath: missing})

	_, err := p.DumpPath(ctx)
	c.Assert(err, qt.ErrorMatches, "the path .* does not exist or is not a directory")
	_, _, err = p.FilesPath(ctx)
	c.Assert(err, qt.IsNotNil)
}

func TestPlanPrompterWithoutSecret(t *testing.T) {
	c := qt.New(t)
	_, err := NewPlanPrompter(Plan{Identity: "a"}).Secret(context.Background())
	c.Assert(err, qt.ErrorMatches, "plan: secret is required.*")
}
