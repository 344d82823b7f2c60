package api

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// UnknownPath is used when a failing case records no source file.
const UnknownPath = "unknown"

// Matches .NET ("in C:\src\Foo.cs:line 42") and Mono ("in /src/Foo.cs:42") frames.
var stackFrameLocation = regexp.MustCompile(`^.*\bin (.+):(?:line )?(\d+)\s*$`)

type location struct {
	Path string
	Line int
}

// resolveLocation prefers the stack trace over the test-case attributes.
func resolveLocation(tc *TestCase, workspace string) location {
	loc, ok := stackTraceLocation(tc.Failure)
	if !ok {
		loc, ok = attributeLocation(tc)
	}
	if !ok {
		loc = location{Path: UnknownPath}
	}
	if loc.Line < 1 {
		loc.Line = 1
	}
	loc.Path = relativePath(loc.Path, workspace)
	return loc
}

func stackTraceLocation(f *Failure) (location, bool) {
	if f == nil {
		return location{}, false
	}
	for _, frame := range strings.Split(f.StackTrace, "\n") {
		m := stackFrameLocation.FindStringSubmatch(strings.TrimSpace(frame))
		if m == nil {
			continue
		}
		line, err := strconv.Atoi(m[2])
		if err != nil || line == 0 {
			continue
		}
		return location{Path: strings.TrimSpace(m[1]), Line: line}, true
	}
	return location{}, false
}

func attributeLocation(tc *TestCase) (location, bool) {
	path := strings.TrimSpace(tc.File)
	if path == "" {
		return location{}, false
	}
	line, _ := strconv.Atoi(strings.TrimSpace(tc.Line))
	return location{Path: path, Line: line}, true
}

func relativePath(path, workspace string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	if workspace == "" || path == UnknownPath {
		return path
	}
	workspace = strings.TrimSuffix(strings.ReplaceAll(workspace, `\`, "/"), "/")
	if !strings.HasPrefix(path, workspace+"/") {
		return path
	}
	return filepath.ToSlash(strings.TrimPrefix(path, workspace+"/"))
}
