// Package version contains all identifiable versioning info for
// describing the nunit-reporter project.
package version

import (
	"fmt"

	"github.com/google/go-github/v62/github"
	"github.com/spf13/cobra"
)

var (
	projectName = "nunit-reporter"
	version     = "unknown"
	commit      = "unknown"
)

var Version = VersionContext{
	Name:    projectName,
	Version: version,
	Commit:  commit,
}

type VersionContext struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (vc *VersionContext) String() string {
	return fmt.Sprintf("%s: %s+%s", vc.Name, vc.Version, vc.Commit)
}

func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the reporter version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version.String())
			fmt.Fprintf(cmd.OutOrStdout(), "go-github: %s\n", github.Version)
		},
	}
}
