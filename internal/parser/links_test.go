package parser

import (
	"reflect"
	"testing"
)

func TestExtractReferences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"no links here", []string{}},
		{"[[20230101_0000]]", []string{"20230101_0000"}},
		{"- [[a]]\n- [[b]]\n- [[a]]", []string{"a", "b", "a"}},
		{"[[]] [[x]]", []string{"x"}},
	}
	for _, tc := range cases {
		got := ExtractReferences(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractReferences(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestExtractSourceURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"![](https://x.com/user/status/1)", "https://x.com/user/status/1"},
		{"![post](http://x.com/user/status/2)", "http://x.com/user/status/2"},
		{"![](https://example.com/a.png)\n\n![](https://x.com/u/status/3)", "https://x.com/u/status/3"},
		{"[link](https://x.com/u/status/4)", ""},
		{"https://x.com/u/status/5", ""},
	}
	for _, tc := range cases {
		if got := ExtractSourceURL(tc.in); got != tc.want {
			t.Errorf("ExtractSourceURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
