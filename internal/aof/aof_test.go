package aof

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/refactoredjello/pyredis-go/internal/resp"
)

func frameOf(args ...string) resp.Frame {
	items := make([]resp.Frame, len(args))
	for i, a := range args {
		items[i] = resp.BulkFromString(a)
	}
	return resp.ArrayOf(items)
}

func TestWriteThenReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.aof")

	w := NewWriter(path, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Log(frameOf("SET", "k", "v"))
	w.Log(frameOf("DEL", "k"))

	// Give the worker a moment to drain the queue before we stop it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	var replayed []resp.Frame
	if err := Replay(path, func(f resp.Frame) { replayed = append(replayed, f) }); err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	if len(replayed) != 2 {
		t.Fatalf("replayed %d frames, want 2", len(replayed))
	}
	if !replayed[0].Equal(frameOf("SET", "k", "v")) {
		t.Fatalf("replayed[0] = %+v, want SET frame", replayed[0])
	}
	if !replayed[1].Equal(frameOf("DEL", "k")) {
		t.Fatalf("replayed[1] = %+v, want DEL frame", replayed[1])
	}
}

func TestReplayIgnoresMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.aof")
	called := false
	if err := Replay(path, func(resp.Frame) { called = true }); err != nil {
		t.Fatalf("Replay on missing file returned error: %v", err)
	}
	if called {
		t.Fatalf("apply called on missing file")
	}
}

func TestReplayStopsAtTornTrailingFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.aof")

	complete := frameOf("SET", "a", "1").Encode()
	torn := frameOf("SET", "b", "2").Encode()
	torn = torn[:len(torn)-3] // simulate a crash mid-write of the second record

	if err := os.WriteFile(path, append(complete, torn...), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var replayed []resp.Frame
	if err := Replay(path, func(f resp.Frame) { replayed = append(replayed, f) }); err != nil {
		t.Fatalf("Replay returned error on torn tail: %v", err)
	}
	if len(replayed) != 1 {
		t.Fatalf("replayed %d frames, want 1 (torn trailing frame dropped)", len(replayed))
	}
}
