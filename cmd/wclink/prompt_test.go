// cmd/wclink/prompt_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/wclink/internal/transfer"
)

func TestPrompterAnswers(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("Y\nno\nyes\n"), &out)
	ctx := context.Background()

	choice, err := p.ConfirmReinit(ctx)
	if err != nil || choice != transfer.ReinitYes {
		t.Fatalf("reinit: got %v %v", choice, err)
	}

	cont, err := p.ContinueAfterFailure(ctx, transfer.Failure{Label: "OIL_P0", Err: errors.New("timeout")})
	if err != nil || cont {
		t.Fatalf("continue: got %v %v", cont, err)
	}
	if !strings.Contains(out.String(), "OIL_P0: timeout") {
		t.Fatalf("failure not shown to operator: %q", out.String())
	}

	ok, err := p.ConfirmCommit(ctx)
	if err != nil || !ok {
		t.Fatalf("commit: got %v %v", ok, err)
	}
}

func TestPrompterEOFCancels(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})

	choice, err := p.ConfirmReinit(context.Background())
	if err == nil || choice != transfer.ReinitCancel {
		t.Fatalf("expected cancel on EOF, got %v %v", choice, err)
	}
}

func TestPrompterCancelKeepsReader(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := newPrompter(r, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.ConfirmCommit(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}

	go w.Write([]byte("y\n"))
	ok, err := p.ConfirmCommit(context.Background())
	if err != nil || !ok {
		t.Fatalf("commit after cancel: got %v %v", ok, err)
	}

	w.Close()
	if _, err := p.ConfirmCommit(context.Background()); err == nil {
		t.Fatal("expected error after input closed")
	}
}

func TestProgressPrinter(t *testing.T) {
	var out bytes.Buffer
	fn := progressPrinter(&out)
	fn(1, 2, "A")
	fn(2, 2, "B")

	if !strings.HasSuffix(out.String(), "\n") || !strings.Contains(out.String(), "[2/2] B") {
		t.Fatalf("unexpected progress output %q", out.String())
	}
}
