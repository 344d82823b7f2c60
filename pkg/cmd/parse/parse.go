package parse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/nunit-reporter/nunit-reporter/pkg"
	"github.com/nunit-reporter/nunit-reporter/pkg/api"
	"github.com/nunit-reporter/nunit-reporter/pkg/checks"
)

type parseInput struct {
	output      string
	skipFailed  bool
	skipPassed  bool
	skipSkipped bool
}

// parseOutput is what --output json|yaml prints.
type parseOutput struct {
	File       string          `json:"file" yaml:"file"`
	Summary    string          `json:"summary" yaml:"summary"`
	Conclusion string          `json:"conclusion" yaml:"conclusion"`
	Report     *api.TestReport `json:"report" yaml:"report"`
}

func NewCmdParse() *cobra.Command {
	input := parseInput{}
	cmd := &cobra.Command{
		Use:     "parse [report.xml]",
		Example: "nunit-reporter parse TestResults.xml --output yaml",
		Short:   "Parse an NUnit result file and print what would be published.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := viper.GetString(pkg.KeyPath)
			if len(args) == 1 {
				file = args[0]
			}
			if file == "" {
				return fmt.Errorf("please provide the path to the NUnit file")
			}
			return parseRun(cmd.OutOrStdout(), file, &input)
		},
	}

	cmd.Flags().StringVarP(&input.output, "output", "o", "text", "Output format: text, json or yaml.")
	cmd.Flags().BoolVar(&input.skipFailed, "skip-failed", false, "Skip printing on stdout the failed test names.")
	cmd.Flags().BoolVar(&input.skipPassed, "skip-passed", false, "Skip printing on stdout the passed test names.")
	cmd.Flags().BoolVar(&input.skipSkipped, "skip-skipped", false, "Skip printing on stdout the skipped test names.")
	return cmd
}

func parseRun(w io.Writer, file string, input *parseInput) error {
	parser, err := api.NewNUnitXMLParser(file, api.WithWorkspace(viper.GetString(pkg.KeyWorkspace)))
	if err != nil {
		return err
	}
	out := parseOutput{
		File:       parser.XMLFile,
		Summary:    checks.Summary(parser.Report),
		Conclusion: string(checks.ConclusionFor(parser.Report)),
		Report:     parser.Report,
	}

	switch input.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text":
		printText(w, parser, out, input)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", input.output)
	}
}

func printText(w io.Writer, parser *api.NUnitXMLParser, out parseOutput, input *parseInput) {
	// Printing summary
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "- File: %s\n", out.File)
	fmt.Fprintf(w, "- Format: <%s>\n", parser.Root)
	fmt.Fprintf(w, "- Total: %d\n", parser.Counters.Total)
	fmt.Fprintf(w, "- Pass: %d\n", parser.Counters.Pass)
	fmt.Fprintf(w, "- Skipped: %d\n", parser.Counters.Skipped)
	fmt.Fprintf(w, "- Failures: %d\n", parser.Counters.Failures)
	fmt.Fprintf(w, "- Check: %s (%s)\n", out.Conclusion, out.Summary)

	passed := []string{}
	skipped := []string{}
	for _, testcase := range parser.Cases {
		if testcase.Status == api.TestStatusPass {
			passed = append(passed, testcase.Name)
		}
		if testcase.Status == api.TestStatusSkipped {
			skipped = append(skipped, testcase.Name)
		}
	}
	failed := []string{}
	for _, a := range out.Report.Annotations {
		failed = append(failed, fmt.Sprintf("%q %s:%d", a.Title, a.Path, a.StartLine))
	}

	if !input.skipPassed {
		fmt.Fprintf(w, "\n#> Passed tests (%d): \n%s\n", len(passed), strings.Join(passed, "\n"))
	}
	if !input.skipFailed {
		fmt.Fprintf(w, "\n#> Failed tests (%d): \n%s\n", len(failed), strings.Join(failed, "\n"))
	}
	if !input.skipSkipped {
		fmt.Fprintf(w, "\n#> Skipped tests (%d): \n%s\n", len(skipped), strings.Join(skipped, "\n"))
	}
}
