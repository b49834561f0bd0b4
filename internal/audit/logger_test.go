package audit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/metrics"
	"github.com/iliyamo/production-manager/internal/model"
)

type memSink struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	block   chan struct{}
}

func (s *memSink) Publish(ctx context.Context, e Entry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func (s *memSink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

var admin = model.Identity{UserID: 1, Email: "admin@example.com", Role: model.RoleAdmin}

func TestLogOperation_WritesLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf), nil, 0)
	ctx := logging.WithRequestID(context.Background(), "req-9")

	e := l.LogOperation(ctx, "POST", "/api/clientes", admin, "Crear cliente", "id=7", "rfc=ACM010101AB1")

	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("entry not stamped: %+v", e)
	}
	if e.Details != "id=7; rfc=ACM010101AB1" {
		t.Errorf("details = %q", e.Details)
	}
	out := buf.String()
	for _, want := range []string{
		`"method":"POST"`,
		`"endpoint":"/api/clientes"`,
		`"email":"admin@example.com"`,
		`"role":"admin"`,
		`"action":"Crear cliente"`,
		`"request_id":"req-9"`,
		`"component":"audit"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestLogOperation_ForwardsToSink(t *testing.T) {
	sink := &memSink{}
	l := New(zerolog.Nop(), sink, 4)
	l.LogOperation(context.Background(), "DELETE", "/api/clientes/3", admin, "Eliminar cliente")
	l.LogOperation(context.Background(), "PUT", "/api/clientes/4", admin, "Actualizar cliente")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Close(ctx); err != nil {
		t.Fatal(err)
	}
	got := sink.Entries()
	if len(got) != 2 || got[0].Action != "Eliminar cliente" || got[1].Action != "Actualizar cliente" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestLogOperation_SinkErrorsDoNotPropagate(t *testing.T) {
	var buf bytes.Buffer
	sink := &memSink{err: errors.New("broker down")}
	l := New(zerolog.New(&buf), sink, 1)
	l.LogOperation(context.Background(), "GET", "/api/clientes", admin, "Listar clientes")
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "audit sink publish failed") {
		t.Errorf("sink failure not logged: %s", buf.String())
	}
}

func TestLogOperation_FullQueueDrops(t *testing.T) {
	sink := &memSink{block: make(chan struct{})}
	l := New(zerolog.Nop(), sink, 1)
	before := testutil.ToFloat64(metrics.AuditDroppedTotal)

	done := make(chan struct{})
	go func() {
		// worker holds one entry, the queue holds one, the rest are dropped
		for i := 0; i < 5; i++ {
			l.LogOperation(context.Background(), "GET", "/x", admin, "x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("LogOperation blocked on a full queue")
	}

	close(sink.block)
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if dropped := testutil.ToFloat64(metrics.AuditDroppedTotal) - before; dropped < 3 {
		t.Errorf("dropped = %v, want at least 3", dropped)
	}
}

func TestLogOperation_AfterClose(t *testing.T) {
	sink := &memSink{}
	l := New(zerolog.Nop(), sink, 1)
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.LogOperation(context.Background(), "GET", "/x", admin, "x")
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(sink.Entries()); n != 0 {
		t.Errorf("entries after close = %d", n)
	}
}

func TestFormatLine(t *testing.T) {
	e := Entry{
		Timestamp: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		Method:    "POST",
		Endpoint:  "/api/clientes",
		Email:     "ana@example.com",
		Role:      model.RoleGerente,
		Action:    "Crear cliente",
		Details:   "nombre=Acme\nrfc=X",
	}
	want := "[2025-01-02T15:04:05Z] ana@example.com (gerente) | POST /api/clientes | Crear cliente | nombre=Acme rfc=X"
	if got := FormatLine(e); got != want {
		t.Errorf("FormatLine = %q\nwant %q", got, want)
	}
	e.Details = ""
	if got := FormatLine(e); strings.HasSuffix(got, " | ") {
		t.Errorf("trailing separator: %q", got)
	}
}

func TestAppendLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	e := Entry{Timestamp: time.Now(), Method: "GET", Endpoint: "/api/clientes", Email: "a@b.c", Role: model.RoleAdmin, Action: "Listar"}
	for i := 0; i < 2; i++ {
		if err := AppendLine(dir, e); err != nil {
			t.Fatal(err)
		}
	}
	bs, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(bs), "\n"); lines != 2 {
		t.Errorf("lines = %d", lines)
	}
}

func TestHandleMessage_RejectsGarbage(t *testing.T) {
	if err := handleMessage(t.TempDir(), []byte("{not json")); err == nil {
		t.Error("expected error")
	}
}
