// Package report prints the outcome of a migration run for the operator.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/juju/ansiterm"

	"m2b4a/internal/domain/model"
	"m2b4a/internal/migration"
	"m2b4a/internal/platform/api"
	"m2b4a/internal/restore"
	"m2b4a/internal/upload"
	"m2b4a/pkg/capabilities"
	"m2b4a/pkg/env"
)

const (
	// DefaultConsoleURL hosts the application dashboards.
	DefaultConsoleURL = "https://parse-dashboard.back4app.com"
	// GuideURL documents the steps that follow a migration.
	GuideURL = "https://www.npmjs.com/package/@back4app/m2b4a"
)

var (
	heading = ansiterm.Foreground(ansiterm.Green)
	value   = ansiterm.Foreground(ansiterm.Cyan)
	failure = ansiterm.Foreground(ansiterm.BrightRed)
	caution = ansiterm.Foreground(ansiterm.Yellow)
)

// Reporter writes human readable reports.
type Reporter struct {
	w          *ansiterm.Writer
	consoleURL string
	serverURL  string
}

// New returns a reporter writing to out. Colours are used only when out is
// a terminal.
func New(out io.Writer, consoleURL, serverURL string) *Reporter {
	if consoleURL == "" {
		consoleURL = DefaultConsoleURL
	}
	if serverURL == "" {
		serverURL = api.DefaultParseURL
	}
	return &Reporter{w: ansiterm.NewWriter(out), consoleURL: consoleURL, serverURL: serverURL}
}

// DashboardURL is the dashboard of the application.
func (r *Reporter) DashboardURL(app model.Application) string {
	return r.consoleURL + "/apps/" + app.ID
}

// KeysURL is the key settings page of the application.
func (r *Reporter) KeysURL(app model.Application) string {
	return r.DashboardURL(app) + "/settings/keys"
}

// Credentials renders the key bag as a two column table.
func (r *Reporter) Credentials(app model.Application) string {
	table := uitable.New()
	table.MaxColWidth = 120
	table.AddRow("Server URL:", r.serverURL)
	table.AddRow("Application Id:", app.AppID)
	table.AddRow("Master Key:", app.MasterKey)
	table.AddRow("Client Key:", app.ClientKey)
	table.AddRow("Javascript Key:", app.JavascriptKey)
	table.AddRow("REST Key:", app.RESTKey)
	table.AddRow(".NET Key:", app.DotNetKey)
	table.AddRow("Webhook Key:", app.WebhookKey)
	table.AddRow("MongoURI:", app.DatabaseURL)
	return table.String()
}

// Result prints the end of a run that was not aborted.
func (r *Reporter) Result(result migration.Result) {
	app := result.Application
	restartFailed := false
	for _, warning := range result.Warnings {
		caution.Fprintf(r.w, "\n  %v\n", warning)
		var restartErr *migration.RestartWarning
		if errors.As(warning, &restartErr) {
			restartFailed = true
		}
	}

	if result.Outcome == migration.OutcomeDegraded {
		failure.Fprintf(r.w, "\n  Your data was migrated but the app does not answer after its restart.\n")
		r.support(app.ID)
	} else {
		if restartFailed {
			r.support(app.ID)
		}
		heading.Fprintf(r.w, "\n  Your app was successfully migrated to Back4App\n")
	}

	heading.Fprintf(r.w, "\n  You can now access your app at: ")
	value.Fprintf(r.w, "%s\n", r.DashboardURL(app))
	heading.Fprintf(r.w, "\n  You now need to change your frontend code to connect to your new app, test it, and deploy the new version of your app to the stores\n")
	heading.Fprintf(r.w, "\n  Please find your app credentials below:\n")
	fmt.Fprintln(r.w, indent(r.Credentials(app)))
	heading.Fprintf(r.w, "\n  You can always have access to these credentials at: ")
	value.Fprintf(r.w, "%s\n", r.KeysURL(app))
	heading.Fprintf(r.w, "\n  For additional information about the next steps, please check: ")
	value.Fprintf(r.w, "%s\n", GuideURL)
}

// Abort prints why a run stopped and what the operator can do about it.
func (r *Reporter) Abort(err error) {
	var stepErr *migration.StepError
	if !errors.As(err, &stepErr) {
		failure.Fprintf(r.w, "\n  Migration failed: %v\n", err)
		return
	}

	failure.Fprintf(r.w, "\n  Migration failed while trying to %s.\n", stepErr.Step)
	fmt.Fprintf(r.w, "  Cause: %v\n", stepErr.Err)
	if stepErr.Reached != migration.StateStart {
		fmt.Fprintf(r.w, "  Completed up to: %s\n", stepErr.Reached)
	}
	if hint := Hint(err); hint != "" {
		caution.Fprintf(r.w, "  %s\n", hint)
	}
	if stepErr.ApplicationID != "" && supportWorthy(err) {
		r.support(stepErr.ApplicationID)
	}
}

func (r *Reporter) support(appID string) {
	caution.Fprintf(r.w, "  Please open a support request quoting your app id %s.\n", appID)
}

// Hint returns what the operator can do about err, if anything specific.
func Hint(err error) string {
	var (
		authErr     *api.AuthError
		staleErr    *migration.StaleSessionError
		restoreErr  *restore.Error
		uploadErr   *upload.Error
		unreachable *migration.UnreachableError
	)
	switch {
	case errors.As(err, &authErr) && authErr.WrongCredentials():
		return "Check your email and password, wait one minute and run the migration again."
	case errors.As(err, &staleErr):
		return "Your saved session was removed. Run the migration again and log in."
	case errors.As(err, &restoreErr) && restoreErr.Kind == restore.KindLaunchFailed:
		return "Install mongorestore, put it in the tools directory or set restore.runtime to docker."
	case errors.As(err, &restoreErr) && restoreErr.Kind == restore.KindExitCode:
		return "The database may be partially restored. Check the restore output above before running again."
	case errors.As(err, &uploadErr):
		return fmt.Sprintf("The database was restored. Upload the remaining files starting with %s.", uploadErr.File)
	case errors.As(err, &unreachable):
		return "The app did not answer. Wait a few minutes and run the migration again."
	}
	return ""
}

// supportWorthy reports failures the operator cannot fix alone.
func supportWorthy(err error) bool {
	var unreachable *migration.UnreachableError
	var restoreErr *restore.Error
	return errors.As(err, &unreachable) ||
		(errors.As(err, &restoreErr) && restoreErr.Kind != restore.KindLaunchFailed)
}

// Capabilities prints the result of --check.
func (r *Reporter) Capabilities(reports []capabilities.Report) {
	table := uitable.New()
	table.AddRow("CAPABILITY", "AVAILABLE", "VERSION")
	for _, rep := range reports {
		available := "no"
		if rep.Available {
			available = "yes"
		}
		table.AddRow(rep.Name, available, rep.Version)
	}
	fmt.Fprintln(r.w, table.String())
}

// EnvVars returns the key bag as environment variables.
func EnvVars(app model.Application, serverURL string) map[string]string {
	if serverURL == "" {
		serverURL = api.DefaultParseURL
	}
	return map[string]string{
		"PARSE_SERVER_URL":     serverURL,
		"PARSE_APP_ID":         app.AppID,
		"PARSE_MASTER_KEY":     app.MasterKey,
		"PARSE_CLIENT_KEY":     app.ClientKey,
		"PARSE_JAVASCRIPT_KEY": app.JavascriptKey,
		"PARSE_REST_KEY":       app.RESTKey,
		"PARSE_DOTNET_KEY":     app.DotNetKey,
		"PARSE_WEBHOOK_KEY":    app.WebhookKey,
		"PARSE_DATABASE_URI":   app.DatabaseURL,
	}
}

// WriteEnv saves the key bag of app as a .env file at path.
func (r *Reporter) WriteEnv(path string, app model.Application) error {
	return env.Save(path, EnvVars(app, r.serverURL))
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
