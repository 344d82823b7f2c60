package checks

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/nunit-reporter/nunit-reporter/internal/metrics"
	"github.com/nunit-reporter/nunit-reporter/pkg/api"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Output is the output block of a check run.
type Output struct {
	Title       string
	Summary     string
	Text        string
	Annotations []api.Annotation
}

type CreateCheckRunRequest struct {
	Name   string
	Status string
	Output Output
}

// UpdateCheckRunRequest leaves Status and Conclusion empty for updates that
// only add annotations.
type UpdateCheckRunRequest struct {
	CheckRunID int64
	Name       string
	Status     string
	Conclusion Conclusion
	Output     Output
}

type CheckRun struct {
	ID      int64
	HTMLURL string
}

// Client talks to the check-run API of a single repository and commit.
type Client interface {
	CreateCheckRun(ctx context.Context, req *CreateCheckRunRequest) (*CheckRun, error)
	UpdateCheckRun(ctx context.Context, req *UpdateCheckRunRequest) (*CheckRun, error)
}

// LoadFunc produces the report once the check run has been opened.
type LoadFunc func() (*api.TestReport, error)

type PublisherOptions struct {
	// AnnotationsPerRequest splits annotations over several updates, zero
	// sends all of them with the completion update.
	AnnotationsPerRequest int
}

type Publisher struct {
	client Client
	opts   PublisherOptions
	Timers metrics.Timers
}

type RunResult struct {
	CheckRunID  int64
	HTMLURL     string
	Conclusion  Conclusion
	Summary     string
	Annotations int
}

func NewPublisher(client Client, opts PublisherOptions) *Publisher {
	return &Publisher{
		client: client,
		opts:   opts,
		Timers: metrics.NewTimers(),
	}
}

// CheckRunName is the name the check run is listed under.
func CheckRunName(title string) string {
	return fmt.Sprintf("Tests Report: %s", title)
}

// Publish opens an in-progress check run, loads the report and completes the
// run with its results. When load fails the run is left in progress.
func (p *Publisher) Publish(ctx context.Context, title string, load LoadFunc) (*RunResult, error) {
	name := CheckRunName(title)

	p.Timers.Set("create")
	run, err := p.client.CreateCheckRun(ctx, &CreateCheckRunRequest{
		Name:   name,
		Status: StatusInProgress,
		Output: Output{Title: title},
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Created check run %d %q", run.ID, name)

	p.Timers.Set("parse")
	report, err := load()
	if err != nil {
		log.Warnf("Check run %d is left in progress", run.ID)
		return nil, err
	}
	log.Infof("Parsed report: %d passed, %d failed, %d skipped", report.Passed, report.Failed, report.Skipped)
	if log.IsLevelEnabled(log.DebugLevel) {
		if data, err := json.Marshal(report.Annotations); err == nil {
			log.Debugf("Annotations: %s", data)
		}
	}

	p.Timers.Set("update")
	result := &RunResult{
		CheckRunID:  run.ID,
		HTMLURL:     run.HTMLURL,
		Conclusion:  ConclusionFor(report),
		Summary:     Summary(report),
		Annotations: len(report.Annotations),
	}
	output := Output{
		Title:   title,
		Summary: result.Summary,
		Text:    Details(report),
	}

	batches := p.batches(report.Annotations)
	for i, batch := range batches[:len(batches)-1] {
		output.Annotations = batch
		if _, err := p.client.UpdateCheckRun(ctx, &UpdateCheckRunRequest{
			CheckRunID: run.ID,
			Name:       name,
			Output:     output,
		}); err != nil {
			log.Errorf("Annotation batch %d/%d was not sent", i+1, len(batches))
			return nil, err
		}
		log.Debugf("Sent annotation batch %d/%d", i+1, len(batches))
	}

	output.Annotations = batches[len(batches)-1]
	completed, err := p.client.UpdateCheckRun(ctx, &UpdateCheckRunRequest{
		CheckRunID: run.ID,
		Name:       name,
		Status:     StatusCompleted,
		Conclusion: result.Conclusion,
		Output:     output,
	})
	if err != nil {
		return nil, err
	}
	if completed != nil && completed.HTMLURL != "" {
		result.HTMLURL = completed.HTMLURL
	}
	p.Timers.Set("done")

	log.Infof("Completed check run %d: %s (%s)", run.ID, result.Conclusion, result.Summary)
	for _, k := range []string{"create", "parse", "update"} {
		if t, ok := p.Timers.Timers[k]; ok {
			log.Debugf("Timer %s: %.3fs", k, t.Total)
		}
	}
	return result, nil
}

// batches always returns at least one, possibly empty, batch.
func (p *Publisher) batches(annotations []api.Annotation) [][]api.Annotation {
	size := p.opts.AnnotationsPerRequest
	if size <= 0 || len(annotations) <= size {
		return [][]api.Annotation{annotations}
	}
	out := [][]api.Annotation{}
	for start := 0; start < len(annotations); start += size {
		end := start + size
		if end > len(annotations) {
			end = len(annotations)
		}
		out = append(out, annotations[start:end])
	}
	return out
}
