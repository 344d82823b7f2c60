package publish

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nunit-reporter/nunit-reporter/pkg"
	"github.com/nunit-reporter/nunit-reporter/pkg/actions"
	"github.com/nunit-reporter/nunit-reporter/pkg/api"
	"github.com/nunit-reporter/nunit-reporter/pkg/checks"
)

// AddFlags registers the run inputs on fs and binds them to viper.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("path", "", "NUnit XML result file (.xml, .xml.gz or .xml.xz)")
	fs.String("num-failures", "", "reserved, accepted for compatibility")
	fs.String("access-token", "", "GitHub token used to create the check run")
	fs.String("report-title", "", "title of the check run, shown as \"Tests Report: <title>\"")
	fs.String("repository", "", "owner/repo the check run belongs to")
	fs.String("sha", "", "commit the check run is attached to")
	fs.String("event-path", "", "workflow event payload, used to find the pull request head")
	fs.String("api-url", checks.DefaultAPIURL, "GitHub API URL")
	fs.Int("annotations-per-request", 0, "split annotations over several updates, 0 sends all at once")

	bindings := map[string]string{
		pkg.KeyPath:                  "path",
		pkg.KeyNumFailures:           "num-failures",
		pkg.KeyAccessToken:           "access-token",
		pkg.KeyReportTitle:           "report-title",
		pkg.KeyRepository:            "repository",
		pkg.KeySHA:                   "sha",
		pkg.KeyEventPath:             "event-path",
		pkg.KeyAPIURL:                "api-url",
		pkg.KeyAnnotationsPerRequest: "annotations-per-request",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s\n", flag)
		}
	}
}

func NewCmdPublish() *cobra.Command {
	return &cobra.Command{
		Use:     "publish",
		Example: "nunit-reporter publish --path TestResults.xml --report-title EditMode",
		Short:   "Parse a result file and publish it as a check run (default).",
		Args:    cobra.NoArgs,
		RunE:    RunE,
	}
}

func RunE(cmd *cobra.Command, args []string) error {
	config, err := pkg.NewConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := Run(ctx, config)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Conclusion, result.Summary)
	if result.HTMLURL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.HTMLURL)
	}
	return nil
}

// Run publishes the report configured in config.
func Run(ctx context.Context, config *pkg.Config) (*checks.RunResult, error) {
	headSHA := actions.HeadSHA(config.EventPath, config.SHA)
	client, err := checks.NewGitHubClient(ctx, checks.GitHubOptions{
		Token:   config.AccessToken,
		Owner:   config.Owner,
		Repo:    config.Repo,
		HeadSHA: headSHA,
		APIURL:  config.APIURL,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Publishing %s to %s/%s@%s", config.Path, config.Owner, config.Repo, headSHA)

	return publishWith(ctx, client, config)
}

func publishWith(ctx context.Context, client checks.Client, config *pkg.Config) (*checks.RunResult, error) {
	publisher := checks.NewPublisher(client, checks.PublisherOptions{
		AnnotationsPerRequest: config.AnnotationsPerRequest,
	})
	result, err := publisher.Publish(ctx, config.ReportTitle, func() (*api.TestReport, error) {
		parser, err := api.NewNUnitXMLParser(config.Path, api.WithWorkspace(config.Workspace))
		if err != nil {
			return nil, err
		}
		return parser.Report, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not publish %s", config.Path)
	}
	return result, nil
}
