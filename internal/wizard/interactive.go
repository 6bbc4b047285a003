package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"m2b4a/internal/domain/model"
	"m2b4a/pkg/files"
)

// IsInteractive reports whether stdin and stdout are terminals.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lineReader is the part of liner.State the prompter uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
}

// Interactive asks the operator on the terminal.
type Interactive struct {
	line  lineReader
	out   io.Writer
	cwd   string
	close func() error
}

// NewInteractive takes over the terminal until Close is called.
func NewInteractive(out io.Writer) *Interactive {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetTabCompletionStyle(liner.TabPrints)
	state.SetCompleter(completeDirectory)
	return &Interactive{
		line:  state,
		out:   out,
		cwd:   workingDir(),
		close: state.Close,
	}
}

// Close restores the terminal.
func (p *Interactive) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func (p *Interactive) say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func promptErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

func (p *Interactive) confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		answer, err := p.line.Prompt("? " + question + " " + hint + " ")
		if err != nil {
			return false, promptErr(err)
		}
		if value, ok := parseYesNo(answer, def); ok {
			return value, nil
		}
		p.say("Please answer yes or no.")
	}
}

func (p *Interactive) choose(ctx context.Context, question string, choices []string) (int, error) {
	p.say("? %s", question)
	for i, choice := range choices {
		p.say("  %d) %s", i+1, choice)
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		answer, err := p.line.Prompt(fmt.Sprintf("Choice [1-%d]: ", len(choices)))
		if err != nil {
			return 0, promptErr(err)
		}
		if i, ok := parseChoice(answer, len(choices)); ok {
			return i, nil
		}
		p.say("Please enter a number between 1 and %d.", len(choices))
	}
}

func (p *Interactive) input(ctx context.Context, question string, secret bool) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var answer string
		var err error
		if secret {
			answer, err = p.line.PasswordPrompt("? " + question + " ")
		} else {
			answer, err = p.line.Prompt("? " + question + " ")
		}
		if err != nil {
			return "", promptErr(err)
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			return answer, nil
		}
	}
}

func (p *Interactive) directory(ctx context.Context, question, def string) (string, error) {
	p.say("? %s Search or paste the directory path here ('tab' and 'enter' keys can help you to search it).", question)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := p.line.PromptWithSuggestion("$ ", def, -1)
		if err != nil {
			return "", promptErr(err)
		}
		path, err := files.ExpandHome(strings.TrimSpace(answer))
		if err == nil && path != "" && files.IsDir(path) {
			return path, nil
		}
		p.say("The path does not exist.")
	}
}

func (p *Interactive) ReuseSession(ctx context.Context, identity string) (bool, error) {
	return p.confirm(ctx, fmt.Sprintf("You are already logged with %s. Do you want to use this logged user?", identity), true)
}

func (p *Interactive) HasAccount(ctx context.Context) (bool, error) {
	i, err := p.choose(ctx, "Do you have a Back4App account?", []string{
		"YES, let me login!",
		"NO, let me create a new one!",
	})
	return i == 0, err
}

func (p *Interactive) Identity(ctx context.Context) (string, error) {
	return p.input(ctx, "What is your email?", false)
}

func (p *Interactive) Secret(ctx context.Context) (string, error) {
	return p.input(ctx, "What is your password?", true)
}

func (p *Interactive) SaveSession(ctx context.Context) (bool, error) {
	return p.confirm(ctx, "Do you want to save your session?", true)
}

func (p *Interactive) SelectApplication(ctx context.Context, apps []model.ApplicationSummary) (model.ApplicationSummary, bool, error) {
	i, err := p.choose(ctx, "We found some apps in your account! Would you like to use one of them?", []string{
		"YES, I want to update one of them!",
		"NO, create a new one!",
	})
	if err != nil || i != 0 {
		return model.ApplicationSummary{}, false, err
	}

	labels := make([]string, len(apps))
	for i, app := range apps {
		labels[i] = app.Label()
	}
	i, err = p.choose(ctx, "Choose an app:", labels)
	if err != nil {
		return model.ApplicationSummary{}, false, err
	}
	return apps[i], true, nil
}

func (p *Interactive) Drop(ctx context.Context, app model.Application) (bool, error) {
	i, err := p.choose(ctx, fmt.Sprintf("Would you like to erase all data of %s before importing?", app.Name), []string{
		"YES! This is my first import or I know the risks",
		"NO! Only insert new ids",
	})
	return i == 0, err
}

func (p *Interactive) ApplicationName(ctx context.Context) (string, error) {
	return p.input(ctx, "Tell me a good app name:", false)
}

func (p *Interactive) DumpPath(ctx context.Context) (string, error) {
	return p.directory(ctx, "Where are the dumped mongodb files?", p.cwd)
}

func (p *Interactive) FilesPath(ctx context.Context) (string, bool, error) {
	hasFiles, err := p.confirm(ctx, "Do you have files to upload?", false)
	if err != nil || !hasFiles {
		return "", false, err
	}
	path, err := p.directory(ctx, "Where are the files to upload?", defaultFilesPath(p.cwd))
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}
