package card

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NYUAppSec/appsec-hw1/go/giftcard"
)

func run(t *testing.T, args ...string) string {
	var stdout, stderr bytes.Buffer
	c := newCmd()
	c.Stdout, c.Stderr = &stdout, &stderr
	if code := c.Run(append([]string{"gcasm card"}, args...)); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	return stderr.String()
}

func TestCardCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "anim.s")
	if err := os.WriteFile(src, []byte("mov 41, r0\nputch r0\ndisp\nend\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "anim.gft")
	run(t, "-m", "hi there", "-customer", "alice", "-note", "first", "-note", "second", "-o", out, src)

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	card, err := giftcard.Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(card.Records) != 3 {
		t.Fatalf("got %d records", len(card.Records))
	}
	prog := card.Records[0]
	if prog.Type != giftcard.TypeProgram || prog.Message != "hi there" {
		t.Fatalf("bad program record %+v", prog)
	}
	if !bytes.Equal(prog.Program[:6], []byte{0x04, 0x41, 0x00, 0x02, 0x00, 0x00}) {
		t.Errorf("bad program % x", prog.Program[:6])
	}
	if card.Records[2].Message != "second" {
		t.Errorf("notes out of order: %q", card.Records[2].Message)
	}
	if !strings.HasPrefix(string(card.CustomerID[:]), "alice ") {
		t.Errorf("customer id %q", card.CustomerID)
	}
}

func TestMessageOnlyCard(t *testing.T) {
	out := filepath.Join(t.TempDir(), "msg.gft")
	run(t, "-message-only", "-m", "congrats", "-o", out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	card, err := giftcard.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(card.Records) != 1 || card.Records[0].Type != giftcard.TypeMessage || card.Records[0].Message != "congrats" {
		t.Fatalf("unexpected card %+v", card.Records)
	}
}
