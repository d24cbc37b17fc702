package transport

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestArgvMinimal(t *testing.T) {
	args := Argv(Options{}, "deepthought", "uptime")
	want := []string{"-o", "BatchMode=yes", "deepthought", "uptime"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("argv: got %v, want %v", args, want)
	}
}

func TestArgvControlOptions(t *testing.T) {
	opts := Options{
		ControlPath:    "/home/u/.wsmux/control/%r@%h:%p",
		ControlPersist: "1h",
		ConnectTimeout: 10 * time.Second,
	}
	args := Argv(opts, "alice@deepthought", "true")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"BatchMode=yes",
		"ConnectTimeout=10",
		"ControlPath=/home/u/.wsmux/control/%r@%h:%p",
		"ControlMaster=auto",
		"ControlPersist=1h",
		"alice@deepthought true",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("argv missing %q: %v", fragment, args)
		}
	}
}

func TestArgvDefaultControlPersist(t *testing.T) {
	args := Argv(Options{ControlPath: "/tmp/cp"}, "h")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "ControlPersist=10m") {
		t.Fatalf("expected default ControlPersist, got %v", args)
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("abduco -A /tmp/s bash"); got != "'abduco -A /tmp/s bash'" {
		t.Fatalf("quote: got %q", got)
	}
	if got := Quote("it's"); got != `'it'\''s'` {
		t.Fatalf("quote with apostrophe: got %q", got)
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Command: "cat x", Code: 1, Stderr: "No such file\n"}
	msg := err.Error()
	if !strings.Contains(msg, "exited 1") || !strings.Contains(msg, "No such file") {
		t.Fatalf("unexpected message %q", msg)
	}
	bare := &ExitError{Command: "true", Code: 3}
	if strings.Contains(bare.Error(), ": :") {
		t.Fatalf("unexpected separator in %q", bare.Error())
	}
}

func TestTerminatePIDGoneIsNoError(t *testing.T) {
	if err := TerminatePID(0); err != nil {
		t.Fatalf("pid 0: %v", err)
	}
	// A pid that cannot exist on Linux.
	if err := TerminatePID(1 << 30); err != nil {
		t.Fatalf("missing pid: %v", err)
	}
}
