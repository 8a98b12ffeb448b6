package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/taylordotfish/fix-ardour-lv2-index/internal"
)

func runFix(cmd *cobra.Command, args []string) error {
	input := args[0]
	fromStdin := input == "-"

	if reportFormat != "text" && reportFormat != "yaml" {
		return fmt.Errorf("unknown report format: %s", reportFormat)
	}
	raw, err := readSession(cmd, input)
	if err != nil {
		return err
	}
	doc, err := internal.ParseDocument(raw)
	if err != nil {
		return err
	}
	provider, err := newProvider()
	if err != nil {
		return err
	}
	decisions := internal.Resolve(doc, provider)
	report := internal.BuildReport(decisions)

	// When the patched session goes to stdout, the report moves to stderr
	// so the two streams never mix. Stdin input without -o implies stdout.
	toStdout := !dryRun && (outputPath == "-" || (fromStdin && outputPath == ""))
	reportTo := cmd.OutOrStdout()
	if toStdout {
		reportTo = cmd.ErrOrStderr()
	}

	switch {
	case dryRun:
		// Resolve-and-report only.
	case toStdout:
		internal.ApplyRemaps(doc, decisions)
		if _, err := cmd.OutOrStdout().Write(doc.Serialize()); err != nil {
			return &internal.PatchError{Path: "stdout", Err: err}
		}
	case outputPath != "":
		internal.ApplyRemaps(doc, decisions)
		if err := internal.WriteAtomic(outputPath, doc.Serialize()); err != nil {
			return &internal.PatchError{Path: outputPath, Err: err}
		}
	default:
		result, err := internal.Apply(input, raw, doc, decisions)
		if err != nil {
			return err
		}
		if result.Patched {
			internal.LogInfo("backup saved to %s", result.BackupPath)
		}
	}

	if err := renderReport(reportTo, report); err != nil {
		return err
	}
	exitCode = exitCodeFor(report)
	return nil
}

func readSession(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("could not read from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read session file: %w", err)
	}
	return data, nil
}

func newProvider() (internal.DescriptorProvider, error) {
	if catalogPath != "" {
		return internal.LoadFileCatalog(catalogPath)
	}
	return &internal.LV2InfoProvider{}, nil
}

func renderReport(w io.Writer, report *internal.Report) error {
	switch reportFormat {
	case "text":
		report.RenderText(w)
		if !report.HasRemaps() {
			fmt.Fprintln(w, "No changes needed.")
		}
		return nil
	case "yaml":
		return report.RenderYAML(w)
	default:
		return fmt.Errorf("unknown report format: %s", reportFormat)
	}
}

func exitCodeFor(report *internal.Report) int {
	switch {
	case report.HasUnresolved():
		return ExitUnresolved
	case report.HasRemaps():
		return ExitPatched
	default:
		return ExitNoChange
	}
}
