package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"m2b4a/internal/config"
	"m2b4a/internal/migration"
	"m2b4a/internal/platform/api"
	"m2b4a/internal/report"
	"m2b4a/internal/restore"
	"m2b4a/internal/session"
	"m2b4a/internal/upload"
	"m2b4a/internal/wizard"
	"m2b4a/pkg/backoff"
	"m2b4a/pkg/capabilities"
	log "m2b4a/pkg/log"
	"m2b4a/pkg/version"
	"m2b4a/pkg/yaml"
)

// Exit codes.
const (
	exitOK       = 0
	exitAborted  = 1
	exitDegraded = 2
	exitUsage    = 64
)

const usage = `m2b4a migrates a Parse application (MongoDB dump and files) to Back4App.

Usage: m2b4a [options]

Options:
  --identity <email>  Account email
  --app <name>        Application to migrate into (created when missing)
  --dump <dir>        Directory holding the mongodump output
  --files <dir>       Directory of files to upload
  --drop              Erase the application data before the restore
  --signup            Create the account before logging in
  --plan <file>       Answer every question from a YAML plan file
  --print-plan        Print an example plan file
  --config <file>     Configuration file (default: m2b4a.yaml)
  --env-out <file>    Write the application keys as a .env file
  --check             Report the restore tools available on this machine
  --version           Show version information
  --help              Show help information

The account password is read from M2B4A_SECRET or the plan file when
running unattended.
`

type options struct {
	identity   string
	app        string
	dump       string
	files      string
	drop       bool
	signup     bool
	plan       string
	printPlan  bool
	configPath string
	envOut     string
	check      bool
	version    bool
	help       bool
	// set holds the flags given on the command line.
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("m2b4a", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	fs.StringVar(&opts.identity, "identity", "", "Account email")
	fs.StringVar(&opts.app, "app", "", "Application name")
	fs.StringVar(&opts.dump, "dump", "", "Dump directory")
	fs.StringVar(&opts.files, "files", "", "Files directory")
	fs.BoolVar(&opts.drop, "drop", false, "Erase the application data first")
	fs.BoolVar(&opts.signup, "signup", false, "Create the account")
	fs.StringVar(&opts.plan, "plan", "", "Plan file")
	fs.BoolVar(&opts.printPlan, "print-plan", false, "Print an example plan file")
	fs.StringVar(&opts.configPath, "config", "", "Configuration file")
	fs.StringVar(&opts.envOut, "env-out", "", "Write the application keys as a .env file")
	fs.BoolVar(&opts.check, "check", false, "Report available restore tools")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// answersGiven reports whether any flag answers a wizard question.
func (o options) answersGiven() bool {
	for _, name := range []string{"identity", "app", "dump", "files", "drop", "signup"} {
		if o.set[name] {
			return true
		}
	}
	return false
}

// applyTo overrides plan fields with the flags given.
func (o options) applyTo(p *wizard.Plan) {
	if o.set["identity"] {
		p.Identity = o.identity
	}
	if o.set["app"] {
		p.App.Name = o.app
	}
	if o.set["dump"] {
		p.DumpPath = o.dump
	}
	if o.set["files"] {
		p.FilesPath = o.files
	}
	if o.set["drop"] {
		p.App.Drop = o.drop
	}
	if o.set["signup"] {
		p.Signup = o.signup
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, version.Banner("m2b4a"))
		return exitOK
	}
	if opts.help {
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	if opts.printPlan {
		out, err := yaml.MarshalYAML(wizard.ExamplePlan())
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitAborted
		}
		stdout.Write(out)
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log.InitLogTo(stderr, cfg.Log.Level, cfg.Log.Format)

	reporter := report.New(stdout, cfg.API.ConsoleURL, cfg.API.ParseURL)

	if opts.check {
		return check(cfg, reporter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompter, closePrompter, err := newPrompter(opts, cfg, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer closePrompter()

	restorer, closeRestorer, err := newRestorer(cfg)
	if err != nil {
		reporter.Abort(err)
		return exitAborted
	}
	defer closeRestorer()

	sessions, err := session.NewStore(cfg.Session.Path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	client := api.NewClient(cfg.Endpoints(), api.WithTimeout(cfg.API.Timeout))
	uploader := upload.NewUploader(client,
		upload.WithPolicy(backoff.Fixed(1+cfg.Policy.UploadRetries, cfg.Policy.UploadDelay)))
	orchestrator := migration.New(client, restorer, uploader, sessions, prompter,
		migration.WithVerifyPolicy(backoff.Fixed(cfg.Policy.VerifyAttempts, cfg.Policy.VerifyDelay)))

	log.Debug("Starting migration", "version", version.GetVersion(), "runtime", cfg.Restore.Runtime)
	result, err := orchestrator.Run(ctx)
	if err != nil {
		reporter.Abort(err)
		return exitAborted
	}
	reporter.Result(result)

	if opts.envOut != "" {
		if err := reporter.WriteEnv(opts.envOut, result.Application); err != nil {
			log.Error("Failed to write the .env file", "path", opts.envOut, "error", err)
		} else {
			log.Info("Application keys written", "path", opts.envOut)
		}
	}

	if result.Outcome == migration.OutcomeDegraded {
		return exitDegraded
	}
	return exitOK
}

// newPrompter picks the terminal wizard, or a plan when one is given, the
// flags answer questions or no terminal is attached.
func newPrompter(opts options, cfg config.Config, stdout io.Writer) (migration.Prompter, func(), error) {
	if opts.plan == "" && !opts.answersGiven() && wizard.IsInteractive() {
		interactive := wizard.NewInteractive(stdout)
		return interactive, func() { _ = interactive.Close() }, nil
	}

	var plan wizard.Plan
	if opts.plan != "" {
		loaded, err := wizard.LoadPlan(opts.plan)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read plan %s: %w", opts.plan, err)
		}
		plan = loaded
	}
	opts.applyTo(&plan)
	if plan.Secret == "" {
		plan.Secret = cfg.Secret
	}
	if err := plan.Validate(); err != nil {
		return nil, nil, err
	}
	return wizard.NewPlanPrompter(plan), func() {}, nil
}

// newRestorer builds the restore invoker for the configured runtime.
func newRestorer(cfg config.Config) (*restore.Invoker, func(), error) {
	var invokerOpts []restore.InvokerOption
	if cfg.Restore.Preflight {
		invokerOpts = append(invokerOpts, restore.WithPreflight(restore.PingDatabase))
	}

	if cfg.Restore.Runtime == config.RuntimeDocker {
		docker, err := restore.NewDockerClient()
		if err != nil {
			return nil, nil, err
		}
		runner := restore.NewContainerRunner(docker, cfg.Restore.Image)
		closeDocker := func() {
			if err := docker.Close(); err != nil {
				log.Warn("Failed to close Docker client", "error", err)
			}
		}
		return restore.NewInvoker(runner, restore.DefaultBinaryName, invokerOpts...), closeDocker, nil
	}

	binary, err := restore.ResolveBinary(cfg.Restore.ToolsDir, capabilities.GetSystemInfo())
	if err != nil {
		return nil, nil, err
	}
	v, err := restore.ProbeVersion(binary)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Using restore tool", "binary", binary, "version", v)
	return restore.NewInvoker(restore.NewProcessRunner(), binary, invokerOpts...), func() {}, nil
}

// check prints the capabilities of this machine and succeeds when the
// configured runtime can restore.
func check(cfg config.Config, reporter *report.Reporter) int {
	binary, err := restore.ResolveBinary(cfg.Restore.ToolsDir, capabilities.GetSystemInfo())
	if err != nil {
		binary = restore.DefaultBinaryName
	}
	reports := capabilities.Probe(
		capabilities.NewSystemOSCapability(),
		capabilities.NewMongorestoreCapability(binary),
		capabilities.NewDockerCapability(),
	)
	reporter.Capabilities(reports)

	want := capabilities.CapabilityMongorestore
	if cfg.Restore.Runtime == config.RuntimeDocker {
		want = capabilities.CapabilityDocker
	}
	for _, rep := range reports {
		if rep.Name == want && rep.Available {
			return exitOK
		}
	}
	return exitAborted
}
