// Package actions reads the GitHub Actions runtime environment.
package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Repository splits an "owner/repo" slug.
func Repository(slug string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(slug), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", slug)
	}
	return parts[0], parts[1], nil
}

// HeadSHA returns the pull request head commit recorded in the event payload,
// falling back to sha for any other event.
func HeadSHA(eventPath, sha string) string {
	if eventPath == "" {
		return sha
	}
	head, err := pullRequestHeadSHA(eventPath)
	if err != nil {
		log.Warnf("Unable to read event payload %s: %v", eventPath, err)
		return sha
	}
	if head == "" {
		return sha
	}
	log.Debugf("Using pull request head %s instead of %s", head, sha)
	return head
}

func pullRequestHeadSHA(eventPath string) (string, error) {
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return "", err
	}
	event := &github.PullRequestEvent{}
	if err := json.Unmarshal(data, event); err != nil {
		return "", errors.Wrap(err, "decoding event")
	}
	return event.GetPullRequest().GetHead().GetSHA(), nil
}

// Running reports whether the process runs as a GitHub Actions step.
func Running() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// SetFailed marks the step failed with err as the reason.
func SetFailed(w io.Writer, err error) {
	msg := escapeData(err.Error())
	fmt.Fprintf(w, "::error::%s\n", msg)
}

// escapeData follows the workflow command encoding for message data.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
