package api

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// Parse the XML data (NUnit 2 and NUnit 3 result files)
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusSkipped TestStatus = "skipped"
)

const (
	rootNUnit3 = "test-run"
	rootNUnit2 = "test-results"
	caseNode   = "test-case"
)

type Failure struct {
	Message    string `xml:"message"`
	StackTrace string `xml:"stack-trace"`
}

type TestCase struct {
	Name       string   `xml:"name,attr"`
	FullName   string   `xml:"fullname,attr"`
	ClassName  string   `xml:"classname,attr"`
	MethodName string   `xml:"methodname,attr"`
	Result     string   `xml:"result,attr"`
	Label      string   `xml:"label,attr"`
	Duration   string   `xml:"duration,attr"`
	File       string   `xml:"file,attr"`
	Line       string   `xml:"line,attr"`
	Failure    *Failure `xml:"failure"`
	Status     TestStatus
}

// status maps the result attribute of both NUnit generations.
func (tc *TestCase) status() TestStatus {
	switch strings.ToLower(strings.TrimSpace(tc.Result)) {
	case "passed", "success":
		return TestStatusPass
	case "failed", "failure", "error":
		return TestStatusFail
	default:
		return TestStatusSkipped
	}
}

type NUnitCounter struct {
	Total    int
	Skipped  int
	Failures int
	Pass     int
}

type NUnitXMLParser struct {
	XMLFile   string
	Workspace string
	Root      string
	Report    *TestReport
	Counters  *NUnitCounter
	Cases     []*TestCase
}

// ParserOption customizes how failure locations are resolved.
type ParserOption func(*NUnitXMLParser)

// WithWorkspace makes absolute failure paths under dir relative to it.
func WithWorkspace(dir string) ParserOption {
	return func(p *NUnitXMLParser) {
		p.Workspace = dir
	}
}

func newParser(xmlFile string, opts ...ParserOption) *NUnitXMLParser {
	p := &NUnitXMLParser{
		XMLFile:  xmlFile,
		Counters: &NUnitCounter{},
		Cases:    []*TestCase{},
		Report:   &TestReport{Annotations: []Annotation{}},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewNUnitXMLParser opens and parses the report stored in xmlFile.
func NewNUnitXMLParser(xmlFile string, opts ...ParserOption) (*NUnitXMLParser, error) {
	p := newParser(xmlFile, opts...)

	rc, err := OpenReport(xmlFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if err := p.decode(rc); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse reads a report from r.
func Parse(r io.Reader, opts ...ParserOption) (*TestReport, error) {
	p := newParser("", opts...)
	if err := p.decode(r); err != nil {
		return nil, err
	}
	return p.Report, nil
}

func (p *NUnitXMLParser) decode(r io.Reader) error {
	dec := xml.NewDecoder(r)
	// Reports written by Windows runners sometimes declare a legacy charset.
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.readError(err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if p.Root == "" {
			if se.Name.Local != rootNUnit3 && se.Name.Local != rootNUnit2 {
				return &MalformedReportError{
					Source: p.XMLFile,
					Reason: "unexpected root element <" + se.Name.Local + ">",
				}
			}
			p.Root = se.Name.Local
			log.Debugf("Detected NUnit report root <%s>", p.Root)
			continue
		}

		if se.Name.Local != caseNode {
			continue
		}
		tc := &TestCase{}
		if err := dec.DecodeElement(tc, &se); err != nil {
			return p.readError(err)
		}
		p.visit(tc)
	}

	if p.Root == "" {
		return &MalformedReportError{Source: p.XMLFile, Reason: "no root element found"}
	}
	p.Counters.Pass = p.Report.Passed
	return nil
}

// readError tells a broken document from a broken source.
func (p *NUnitXMLParser) readError(err error) error {
	var unreadable *UnreadableSourceError
	if errors.As(err, &unreadable) {
		if unreadable.Source == "" {
			unreadable.Source = p.XMLFile
		}
		return unreadable
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) || err == io.ErrUnexpectedEOF {
		return &MalformedReportError{Source: p.XMLFile, Reason: "invalid XML", Err: err}
	}
	return &UnreadableSourceError{Source: p.XMLFile, Err: err}
}

func (p *NUnitXMLParser) visit(tc *TestCase) {
	p.Counters.Total += 1
	tc.Status = tc.status()
	p.Cases = append(p.Cases, tc)

	switch tc.Status {
	case TestStatusPass:
		p.Report.Passed += 1
	case TestStatusFail:
		p.Counters.Failures += 1
		p.Report.Failed += 1
		p.Report.Annotations = append(p.Report.Annotations, p.annotate(tc))
	default:
		p.Counters.Skipped += 1
		p.Report.Skipped += 1
	}
}

func (p *NUnitXMLParser) annotate(tc *TestCase) Annotation {
	loc := resolveLocation(tc, p.Workspace)
	return Annotation{
		Path:      loc.Path,
		StartLine: loc.Line,
		EndLine:   loc.Line,
		Level:     AnnotationLevelFailure,
		Title:     tc.Name,
		Message:   failureMessage(tc),
	}
}

// failureMessage falls back to the result attribute when the case records no
// failure text.
func failureMessage(tc *TestCase) string {
	var message, stack string
	if tc.Failure != nil {
		message = strings.TrimSpace(tc.Failure.Message)
		stack = strings.TrimSpace(tc.Failure.StackTrace)
	}
	if message == "" && stack == "" {
		return resultMessage(tc)
	}
	if stack == "" {
		return message
	}
	if message == "" {
		return stack
	}
	return message + "\n" + stack
}

func resultMessage(tc *TestCase) string {
	result := strings.TrimSpace(tc.Result)
	if label := strings.TrimSpace(tc.Label); label != "" {
		return fmt.Sprintf("%s (%s)", result, label)
	}
	return result
}
