package disas

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (int, string) {
	var stdout, stderr bytes.Buffer
	c := newCmd()
	c.Stdout, c.Stderr = &stdout, &stderr
	code := c.Run(append([]string{"gcasm disas"}, args...))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	return code, stdout.String()
}

func TestDisasCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.bin")
	image := make([]byte, 256)
	copy(image, []byte{0x01, 0x00, 0x00, 0x09, 0xfa, 0x00})
	if err := os.WriteFile(path, image, 0644); err != nil {
		t.Fatal(err)
	}

	_, out := run(t, path)
	for _, want := range []string{"   L0:", "00:    01 00 00    getch r0", "03:    09 fa 00    jmp L0", "250 bytes of trailing padding"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}

	_, out = run(t, "-source", path)
	if out != "L0:\n    getch r0\n    jmp L0\n" {
		t.Errorf("unexpected source %q", out)
	}

	_, out = run(t, "-linear", "-base", "0x100", path)
	if !strings.HasPrefix(out, "0x100: 01 00 00    getch r0\n0x103: 09 fa 00    jmp -6\n") {
		t.Errorf("unexpected linear output %q", out)
	}
}
