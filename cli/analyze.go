package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/beanledger/errors"
	"github.com/robinvdvleuten/beanledger/ledger"
)

type AnalyzeCmd struct {
	File   string   `help:"Ledger root file." arg:"" type:"existingfile"`
	Show   []string `help:"Print record tables (entries, postings, balances, accounts)." sep:","`
	Format string   `help:"Diagnostics output format." enum:"text,json" default:"text"`
	Export string   `help:"Write the analysis result as YAML to this file." type:"path"`
	Force  bool     `help:"Overwrite the export file without asking."`
	Watch  bool     `help:"Analyze again whenever one of the loaded files changes."`
}

func (cmd *AnalyzeCmd) Run(ctx *kong.Context, globals *Globals) error {
	for _, table := range cmd.Show {
		if _, ok := tableWriters[table]; !ok {
			return fmt.Errorf("unknown table %q, expected one of %s", table, tableNames())
		}
	}

	if cmd.Watch {
		return cmd.watch(ctx, globals)
	}

	result, _ := cmd.analyzeOnce(ctx.Stdout, ctx.Stderr, globals)
	if result.ExitCode != 0 {
		return NewCommandError(result.ExitCode)
	}
	return nil
}

// analyzeOnce runs a single analysis and prints its outcome. The loaded files are returned so
// that watch mode can follow them.
func (cmd *AnalyzeCmd) analyzeOnce(stdout, stderr io.Writer, globals *Globals) (CommandResult, []string) {
	r, err := newRun(globals, "analyze", cmd.File)
	if err != nil {
		printError(stderr, err.Error())
		return Failure(err), nil
	}
	defer r.report(stderr)

	renderer := NewErrorRenderer()

	result, err := r.analyze(cmd.File)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(stderr)
		printError(stderr, "analysis aborted")
		return Failure(err), r.loader.Files()
	}

	summary := stdout
	switch cmd.Format {
	case "json":
		_, _ = fmt.Fprintln(stdout, errors.NewJSONFormatter().FormatAll(diagnosticErrors(result.Diagnostics)))
		summary = stderr
	default:
		if len(result.Diagnostics) > 0 {
			_, _ = fmt.Fprintln(stderr, renderer.RenderDiagnostics(result.Diagnostics))
			_, _ = fmt.Fprintln(stderr)
		}
	}

	if len(cmd.Show) > 0 {
		writeTables(stdout, result, cmd.Show)
	}

	if cmd.Export != "" {
		if err := cmd.export(summary, result); err != nil {
			printError(stderr, err.Error())
			return Failure(err), r.loader.Files()
		}
	}

	if result.Diagnostics.HasErrors() {
		printError(stderr, fmt.Sprintf("%d error(s) found", len(result.Diagnostics.Errors())))
		return Failure(result.Diagnostics.AsError()), r.loader.Files()
	}

	printSuccess(summary, fmt.Sprintf("Analyzed %d entries and %d postings, %d warning(s)",
		len(result.Data.Entries), len(result.Data.Postings), len(result.Diagnostics.Warnings())))

	return Success(), r.loader.Files()
}

// export writes the result as YAML, asking before an existing file is replaced.
func (cmd *AnalyzeCmd) export(w io.Writer, result *ledger.Result) error {
	if _, err := os.Stat(cmd.Export); err == nil && !cmd.Force {
		overwrite, err := promptYesNo(fmt.Sprintf("%s already exists. Overwrite?", cmd.Export))
		if err != nil {
			return err
		}
		if !overwrite {
			printInfof(w, "Skipped export, %s exists (use --force to overwrite)", pathStyle.Render(cmd.Export))
			return nil
		}
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(cmd.Export, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Export, err)
	}

	printInfof(w, "Exported run %s to %s", result.RunID, pathStyle.Render(cmd.Export))
	return nil
}

func diagnosticErrors(diags ledger.Diagnostics) []error {
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return errs
}
