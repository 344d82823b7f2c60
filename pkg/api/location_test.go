package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLocation(t *testing.T) {
	type testCase struct {
		name      string
		tc        *TestCase
		workspace string
		want      location
	}
	cases := []testCase{
		{
			name: "nested-preferred-over-inline",
			tc: &TestCase{
				File: "Assets/Inline.cs",
				Line: "7",
				Failure: &Failure{
					StackTrace: "at Foo.Bar () [0x00001] in /ws/Assets/Nested.cs:42",
				},
			},
			workspace: "/ws",
			want:      location{Path: "Assets/Nested.cs", Line: 42},
		},
		{
			name: "inline-when-stack-has-no-location",
			tc: &TestCase{
				File:    "Assets/Inline.cs",
				Line:    "7",
				Failure: &Failure{StackTrace: "at Foo.Bar () <0x0000>"},
			},
			want: location{Path: "Assets/Inline.cs", Line: 7},
		},
		{
			name: "inline-without-line",
			tc:   &TestCase{File: "Assets/Inline.cs", Failure: &Failure{}},
			want: location{Path: "Assets/Inline.cs", Line: 1},
		},
		{
			name: "skips-zero-line-frames",
			tc: &TestCase{
				Failure: &Failure{
					StackTrace: "at Framework.Assert () in <filename unknown>:0\n  at Foo.Bar () in /src/Foo.cs:line 12\n",
				},
			},
			want: location{Path: "/src/Foo.cs", Line: 12},
		},
		{
			name: "no-location",
			tc:   &TestCase{},
			want: location{Path: UnknownPath, Line: 1},
		},
		{
			name: "outside-workspace",
			tc: &TestCase{
				Failure: &Failure{StackTrace: "at Foo.Bar () in /opt/lib/Foo.cs:3"},
			},
			workspace: "/ws/",
			want:      location{Path: "/opt/lib/Foo.cs", Line: 3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveLocation(tc.tc, tc.workspace))
		})
	}
}
