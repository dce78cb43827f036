package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestDispatch(t *testing.T) {
	var got []string
	Register("echo-test", "records its arguments", func(args []string) { got = args })

	var out bytes.Buffer
	if code := Dispatch([]string{"gcasm", "echo-test", "-v", "x.s"}, &out); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if len(got) != 3 || got[0] != "gcasm echo-test" || got[2] != "x.s" {
		t.Fatalf("command got %q", got)
	}

	for _, tc := range []struct {
		argv []string
		code int
		want string
	}{
		{[]string{"gcasm"}, 1, "Usage: gcasm <command>"},
		{[]string{"gcasm", "help"}, 0, "echo-test | records its arguments"},
		{[]string{"gcasm", "frob"}, 1, "Command 'frob' not found."},
	} {
		out.Reset()
		if code := Dispatch(tc.argv, &out); code != tc.code {
			t.Errorf("%v: exit %d, want %d", tc.argv, code, tc.code)
		}
		if !strings.Contains(out.String(), tc.want) {
			t.Errorf("%v: output missing %q:\n%s", tc.argv, tc.want, out.String())
		}
	}
}
