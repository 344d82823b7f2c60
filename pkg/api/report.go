package api

// AnnotationLevel is the severity GitHub renders an annotation with.
type AnnotationLevel string

const (
	AnnotationLevelNotice  AnnotationLevel = "notice"
	AnnotationLevelWarning AnnotationLevel = "warning"
	AnnotationLevelFailure AnnotationLevel = "failure"
)

// Annotation points a failing test at a file and line range.
type Annotation struct {
	Path      string          `json:"path" yaml:"path"`
	StartLine int             `json:"start_line" yaml:"start_line"`
	EndLine   int             `json:"end_line" yaml:"end_line"`
	Level     AnnotationLevel `json:"annotation_level" yaml:"annotation_level"`
	Title     string          `json:"title" yaml:"title"`
	Message   string          `json:"message" yaml:"message"`
}

// TestReport is the normalized outcome of a report file. Cases that neither
// passed nor failed are only counted in Skipped.
type TestReport struct {
	Passed      int          `json:"passed" yaml:"passed"`
	Failed      int          `json:"failed" yaml:"failed"`
	Skipped     int          `json:"skipped" yaml:"skipped"`
	Annotations []Annotation `json:"annotations" yaml:"annotations"`
}
