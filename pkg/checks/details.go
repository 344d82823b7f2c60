package checks

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nunit-reporter/nunit-reporter/pkg/api"
)

const (
	// MaxDetailsLength is the longest output text GitHub accepts, with some headroom.
	MaxDetailsLength = 65000
	// TruncationMarker closes a details text that could not hold every failure.
	TruncationMarker = "\n\n ... and more."
)

type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
)

// Summary is the one-line outcome shown next to the check run title.
func Summary(report *api.TestReport) string {
	if report.Failed > 0 {
		return fmt.Sprintf("%d tests failed", report.Failed)
	}
	return fmt.Sprintf("%d tests passed", report.Passed)
}

// ConclusionFor fails the run when anything failed or when nothing passed.
func ConclusionFor(report *api.TestReport) Conclusion {
	if report.Failed > 0 || report.Passed == 0 {
		return ConclusionFailure
	}
	return ConclusionSuccess
}

func annotationEntry(a api.Annotation) string {
	return fmt.Sprintf("* %s\n   %s", a.Title, a.Message)
}

// Details renders the markdown body of the check run. Failure entries are
// appended whole until the next one would push the text past
// MaxDetailsLength characters, then TruncationMarker is appended instead.
func Details(report *api.TestReport) string {
	var sb strings.Builder
	if report.Failed == 0 {
		fmt.Fprintf(&sb, "**%d tests passed**", report.Passed)
	} else {
		fmt.Fprintf(&sb, "**%d tests passed**\n**%d tests failed**\n", report.Passed, report.Failed)
	}

	length := utf8.RuneCountInString(sb.String())
	for _, a := range report.Annotations {
		entry := "\n" + annotationEntry(a)
		n := utf8.RuneCountInString(entry)
		if length+n > MaxDetailsLength {
			sb.WriteString(TruncationMarker)
			break
		}
		sb.WriteString(entry)
		length += n
	}
	return sb.String()
}
