package checks

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"k8s.io/utils/ptr"

	"github.com/nunit-reporter/nunit-reporter/pkg/api"
)

const DefaultAPIURL = "https://api.github.com"

type GitHubOptions struct {
	Token   string
	Owner   string
	Repo    string
	HeadSHA string
	// APIURL points to a GitHub Enterprise API, empty means github.com.
	APIURL string
}

// GitHubClient implements Client on top of the GitHub Checks API.
type GitHubClient struct {
	client  *github.Client
	owner   string
	repo    string
	headSHA string
}

func NewGitHubClient(ctx context.Context, opts GitHubOptions) (*GitHubClient, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	apiURL := strings.TrimSuffix(opts.APIURL, "/")
	if apiURL != "" && apiURL != DefaultAPIURL {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid GitHub API URL %q", opts.APIURL)
		}
	}
	return newGitHubClient(client, opts), nil
}

func newGitHubClient(client *github.Client, opts GitHubOptions) *GitHubClient {
	return &GitHubClient{
		client:  client,
		owner:   opts.Owner,
		repo:    opts.Repo,
		headSHA: opts.HeadSHA,
	}
}

func (c *GitHubClient) CreateCheckRun(ctx context.Context, req *CreateCheckRunRequest) (*CheckRun, error) {
	run, resp, err := c.client.Checks.CreateCheckRun(ctx, c.owner, c.repo, github.CreateCheckRunOptions{
		Name:    req.Name,
		HeadSHA: c.headSHA,
		Status:  ptr.To(req.Status),
		Output:  toGitHubOutput(req.Output),
	})
	if err != nil {
		return nil, apiError("create check run", resp, err)
	}
	return &CheckRun{ID: run.GetID(), HTMLURL: run.GetHTMLURL()}, nil
}

func (c *GitHubClient) UpdateCheckRun(ctx context.Context, req *UpdateCheckRunRequest) (*CheckRun, error) {
	opts := github.UpdateCheckRunOptions{
		Name:   req.Name,
		Output: toGitHubOutput(req.Output),
	}
	if req.Status != "" {
		opts.Status = ptr.To(req.Status)
	}
	if req.Conclusion != "" {
		opts.Conclusion = ptr.To(string(req.Conclusion))
	}
	run, resp, err := c.client.Checks.UpdateCheckRun(ctx, c.owner, c.repo, req.CheckRunID, opts)
	if err != nil {
		return nil, apiError("update check run", resp, err)
	}
	return &CheckRun{ID: run.GetID(), HTMLURL: run.GetHTMLURL()}, nil
}

func toGitHubOutput(out Output) *github.CheckRunOutput {
	gh := &github.CheckRunOutput{
		Title:   ptr.To(out.Title),
		Summary: ptr.To(out.Summary),
	}
	if out.Text != "" {
		gh.Text = ptr.To(out.Text)
	}
	for _, a := range out.Annotations {
		gh.Annotations = append(gh.Annotations, toGitHubAnnotation(a))
	}
	return gh
}

func toGitHubAnnotation(a api.Annotation) *github.CheckRunAnnotation {
	return &github.CheckRunAnnotation{
		Path:            ptr.To(a.Path),
		StartLine:       ptr.To(a.StartLine),
		EndLine:         ptr.To(a.EndLine),
		AnnotationLevel: ptr.To(string(a.Level)),
		Title:           ptr.To(a.Title),
		Message:         ptr.To(a.Message),
	}
}

// apiError keeps the upstream status and message untouched.
func apiError(op string, resp *github.Response, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusUnauthorized {
			return &AuthenticationError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message, Err: err}
		}
		return &RemoteServiceError{Operation: op, StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message, Err: err}
	}
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	return &RemoteServiceError{Operation: op, StatusCode: status, Message: err.Error(), Err: err}
}
