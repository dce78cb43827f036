package batch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	c := newCmd()
	c.Stdout, c.Stderr = &stdout, &stderr
	code := c.Run(append([]string{"gcasm batch"}, args...))
	return code, stdout.String(), stderr.String()
}

func TestBatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 8; i++ {
		path := filepath.Join(dir, fmt.Sprintf("p%d.s", i))
		src := fmt.Sprintf("movcurs %x\ngetch r%d\nend\n", i, i+10)
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}
	archivePath := filepath.Join(dir, "all.gcar")
	code, _, stderr := run(t, append([]string{"-o", archivePath}, files...)...)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	code, stdout, stderr := run(t, "-x", archivePath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	last := -1
	for i, f := range files {
		idx := strings.Index(stdout, f+" (256 bytes):")
		if idx < last {
			t.Fatalf("entry %d missing or out of order:\n%s", i, stdout)
		}
		last = idx
		if want := fmt.Sprintf("getch r%d", i+10); !strings.Contains(stdout, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestBatchFailsOnBadSource(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.s")
	bad := filepath.Join(dir, "bad.s")
	os.WriteFile(good, []byte("nop\n"), 0644)
	os.WriteFile(bad, []byte("mov r1, r2\n"), 0644)
	archivePath := filepath.Join(dir, "out.gcar")
	code, _, stderr := run(t, "-o", archivePath, good, bad)
	if code != 1 || !strings.Contains(stderr, "bad.s:1") {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Fatal("archive written despite errors")
	}
}
