package api

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nunit3Report = `<?xml version="1.0" encoding="utf-8"?>
<test-run id="2" testcasecount="6" result="Failed" total="6" passed="3" failed="2" skipped="1">
  <test-suite type="Assembly" name="Game.Tests.dll">
    <test-suite type="TestFixture" name="PlayerTests" fullname="Game.Tests.PlayerTests">
      <test-case id="1001" name="Spawns" fullname="Game.Tests.PlayerTests.Spawns" result="Passed" duration="0.01"/>
      <test-case id="1002" name="TakesDamage" fullname="Game.Tests.PlayerTests.TakesDamage" result="Failed" duration="0.02">
        <failure>
          <message><![CDATA[Expected: 90
  But was:  100]]></message>
          <stack-trace><![CDATA[at Game.Tests.PlayerTests.TakesDamage () [0x00001] in /home/runner/work/game/game/Assets/Tests/PlayerTests.cs:42
]]></stack-trace>
        </failure>
      </test-case>
    </test-suite>
    <test-suite type="TestFixture" name="WorldTests">
      <test-case id="1003" name="Loads" result="Passed"/>
      <test-suite type="ParameterizedMethod" name="Tiles">
        <test-case id="1004" name="Tiles(1)" result="Passed"/>
        <test-case id="1005" name="Tiles(2)" result="Skipped" label="Ignored"/>
      </test-suite>
      <test-case id="1006" name="Saves" result="Failed" label="Error">
        <failure>
          <message><![CDATA[System.IO.IOException : disk full]]></message>
        </failure>
      </test-case>
    </test-suite>
  </test-suite>
</test-run>`

func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestNewNUnitXMLParser(t *testing.T) {
	xmlFile := writeReport(t, "TestResults.xml", nunit3Report)

	parser, err := NewNUnitXMLParser(xmlFile, WithWorkspace("/home/runner/work/game/game"))
	require.NoError(t, err)
	require.NotNil(t, parser)

	assert.Equal(t, rootNUnit3, parser.Root)
	assert.Len(t, parser.Cases, 6)

	// Cases are visited depth first, in document order.
	names := []string{}
	for _, tc := range parser.Cases {
		names = append(names, tc.Name)
	}
	assert.Equal(t, []string{"Spawns", "TakesDamage", "Loads", "Tiles(1)", "Tiles(2)", "Saves"}, names)
	assert.Equal(t, TestStatusSkipped, parser.Cases[4].Status)

	assert.Equal(t, 6, parser.Counters.Total)
	assert.Equal(t, 3, parser.Counters.Pass)
	assert.Equal(t, 2, parser.Counters.Failures)
	assert.Equal(t, 1, parser.Counters.Skipped)

	want := &TestReport{
		Passed:  3,
		Failed:  2,
		Skipped: 1,
		Annotations: []Annotation{
			{
				Path:      "Assets/Tests/PlayerTests.cs",
				StartLine: 42,
				EndLine:   42,
				Level:     AnnotationLevelFailure,
				Title:     "TakesDamage",
				Message:   "Expected: 90\n  But was:  100\nat Game.Tests.PlayerTests.TakesDamage () [0x00001] in /home/runner/work/game/game/Assets/Tests/PlayerTests.cs:42",
			},
			{
				Path:      UnknownPath,
				StartLine: 1,
				EndLine:   1,
				Level:     AnnotationLevelFailure,
				Title:     "Saves",
				Message:   "System.IO.IOException : disk full",
			},
		},
	}
	if diff := cmp.Diff(want, parser.Report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := Parse(strings.NewReader(nunit3Report))
	require.NoError(t, err)
	second, err := Parse(strings.NewReader(nunit3Report))
	require.NoError(t, err)

	assert.True(t, cmp.Equal(first, second), cmp.Diff(first, second))
}

func TestParseEdgeCases(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		passed  int
		failed  int
		skipped int
	}
	cases := []testCase{
		{
			name:  "empty-run",
			input: `<test-run id="0" testcasecount="0"></test-run>`,
		},
		{
			name:  "empty-suites",
			input: `<test-run><test-suite name="a"><test-suite name="b"/></test-suite></test-run>`,
		},
		{
			name:   "only-passing",
			input:  `<test-run><test-suite><test-case name="a" result="Passed"/><test-case name="b" result="Passed"/></test-suite></test-run>`,
			passed: 2,
		},
		{
			name:    "inconclusive-and-warning",
			input:   `<test-run><test-case name="a" result="Inconclusive"/><test-case name="b" result="Warning"/><test-case name="c"/></test-run>`,
			skipped: 3,
		},
		{
			name: "nunit2-results-wrapper",
			input: `<test-results name="Tests.dll" total="3">
  <test-suite type="Namespace" name="Game"><results>
    <test-suite type="TestFixture" name="PlayerTests"><results>
      <test-case name="Game.PlayerTests.Spawns" executed="True" result="Success" success="True"/>
      <test-case name="Game.PlayerTests.Dies" executed="True" result="Failure" success="False">
        <failure><message>boom</message><stack-trace>at Game.PlayerTests.Dies() in C:\src\Game\PlayerTests.cs:line 17</stack-trace></failure>
      </test-case>
      <test-case name="Game.PlayerTests.Crashes" executed="True" result="Error" success="False"/>
    </results></test-suite>
  </results></test-suite>
</test-results>`,
			passed: 1,
			failed: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.passed, report.Passed)
			assert.Equal(t, tc.failed, report.Failed)
			assert.Equal(t, tc.skipped, report.Skipped)
			assert.Len(t, report.Annotations, tc.failed)
			assert.NotNil(t, report.Annotations)
		})
	}
}

func TestParseNUnit2Location(t *testing.T) {
	input := `<test-results><test-suite><results>
  <test-case name="Dies" result="Failure">
    <failure><message>boom</message><stack-trace>at Game.PlayerTests.Dies() in C:\src\Game\PlayerTests.cs:line 17</stack-trace></failure>
  </test-case>
</results></test-suite></test-results>`

	report, err := Parse(strings.NewReader(input), WithWorkspace(`C:\src`))
	require.NoError(t, err)
	require.Len(t, report.Annotations, 1)
	assert.Equal(t, "Game/PlayerTests.cs", report.Annotations[0].Path)
	assert.Equal(t, 17, report.Annotations[0].StartLine)
	assert.Equal(t, 17, report.Annotations[0].EndLine)
}

func TestParseErrors(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		malformed bool
	}
	cases := []testCase{
		{name: "empty-document", input: "", malformed: true},
		{name: "not-xml", input: "Passed: 3, Failed: 0", malformed: true},
		{name: "truncated", input: `<test-run><test-suite><test-case name="a" result="Passed"/>`, malformed: true},
		{name: "junit-root", input: `<testsuite name="x"><testcase name="a"/></testsuite>`, malformed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			var malformed *MalformedReportError
			assert.Equal(t, tc.malformed, errors.As(err, &malformed), err.Error())
		})
	}
}

func TestNewNUnitXMLParserMissingFile(t *testing.T) {
	_, err := NewNUnitXMLParser(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)

	var unreadable *UnreadableSourceError
	require.True(t, errors.As(err, &unreadable))
	assert.True(t, os.IsNotExist(errors.Cause(unreadable.Err)))
}

func TestParseFailureWithoutText(t *testing.T) {
	input := `<test-results><test-suite><results>
  <test-case name="Crashes" result="Error"/>
  <test-case name="Hangs" result="Failed" label="Cancelled"><failure><message>  </message></failure></test-case>
</results></test-suite></test-results>`

	report, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, report.Annotations, 2)
	assert.Equal(t, "Error", report.Annotations[0].Message)
	assert.Equal(t, "Failed (Cancelled)", report.Annotations[1].Message)
}

func TestParseNestedLocationWinsOverAttributes(t *testing.T) {
	input := `<test-run><test-suite>
  <test-case name="Moves" result="Failed" file="Assets/Inline.cs" line="7">
    <failure><message>m</message><stack-trace>at Game.Moves () in /ws/Assets/Nested.cs:42</stack-trace></failure>
  </test-case>
  <test-case name="Jumps" result="Failed" file="/ws/Assets/Inline.cs" line="7">
    <failure><message>m</message></failure>
  </test-case>
</test-suite></test-run>`

	report, err := Parse(strings.NewReader(input), WithWorkspace("/ws"))
	require.NoError(t, err)
	require.Len(t, report.Annotations, 2)
	assert.Equal(t, "Assets/Nested.cs", report.Annotations[0].Path)
	assert.Equal(t, 42, report.Annotations[0].StartLine)
	assert.Equal(t, "Assets/Inline.cs", report.Annotations[1].Path)
	assert.Equal(t, 7, report.Annotations[1].StartLine)
}

func TestParseDeclaredCharset(t *testing.T) {
	// 0xe9 is "é" in windows-1252 and invalid on its own in UTF-8.
	input := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>\n" +
		"<test-run><test-case name=\"Caf\xe9\" result=\"Failed\">" +
		"<failure><message>expected caf\xe9</message></failure></test-case></test-run>"

	report, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, report.Annotations, 1)
	assert.Equal(t, "Café", report.Annotations[0].Title)
	assert.Equal(t, "expected café", report.Annotations[0].Message)
}
