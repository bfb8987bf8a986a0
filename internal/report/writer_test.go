package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkosuda/proxyvet/internal/model"
)

func testSummary() *Summary {
	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewSummary(
		started,
		started.Add(90*time.Second),
		model.RealIdentity("203.0.113.9"),
		8,
		250,
		model.CountersSnapshot{Anonymous: 12, Transparent: 38, Failed: 200},
	)
	s.Relays = []model.ProbeResult{
		{
			Endpoint:       "10.0.0.1:8080",
			Classification: model.ClassAnonymous,
			OriginIPs:      []string{"10.0.0.1"},
			Reason:         model.ReasonElite,
		},
		{
			Endpoint:       "10.0.0.2:3128",
			Classification: model.ClassAnonymous,
			OriginIPs:      []string{"198.51.100.7"},
			Reason:         model.ReasonDifferentExit,
		},
	}
	return s
}

func TestSummaryTotals(t *testing.T) {
	t.Parallel()

	s := testSummary()
	if s.Total() != 250 {
		t.Errorf("Total() = %d, expected 250", s.Total())
	}
	if s.Duration() != 90*time.Second {
		t.Errorf("Duration() = %s, expected 90s", s.Duration())
	}
	if s.Degraded() {
		t.Error("Degraded() = true for a run with a resolved identity")
	}

	degraded := NewSummary(s.StartedAt, s.FinishedAt, model.IdentityUnknown, 0, 10, model.CountersSnapshot{})
	if !degraded.Degraded() {
		t.Error("Degraded() = false for a run without an identity")
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("default output has tallies but no relay listing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(testSummary()); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		for _, want := range []string{"ANONYMOUS:   12", "TRANSPARENT: 38", "FAILED:      200", "TOTAL:       250", "203.0.113.9"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, "10.0.0.1:8080") {
			t.Error("relay listing shown without verbose mode")
		}
	})

	t.Run("verbose output lists relays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(testSummary()); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		if !strings.Contains(output, "10.0.0.1:8080") || !strings.Contains(output, "10.0.0.2:3128") {
			t.Errorf("verbose output missing relay listing:\n%s", output)
		}
	})

	t.Run("degraded run is flagged", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(time.Now(), time.Now(), model.IdentityUnknown, 8, 10, model.CountersSnapshot{Failed: 10})

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(s); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "degraded mode") {
			t.Errorf("degraded run not flagged:\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testSummary()); err != nil {
			t.Fatal(err)
		}

		var decoded Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Anonymous != 12 || decoded.Candidates != 250 {
			t.Errorf("decoded summary = %+v, tallies lost in encoding", decoded)
		}
		if len(decoded.Relays) != 2 {
			t.Errorf("decoded %d relays, expected 2", len(decoded.Relays))
		}
	})

	t.Run("pretty printed output is indented", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testSummary()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testSummary()); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	for _, want := range []string{
		"# Proxyvet Run Summary",
		"## Classification",
		"🟢 Anonymous",
		"🟠 Transparent",
		"`10.0.0.1:8080`",
		"pie",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q:\n%s", want, output)
		}
	}
}

func TestMarkdownWriterEmptyRun(t *testing.T) {
	t.Parallel()

	s := NewSummary(time.Now(), time.Now(), model.RealIdentity("203.0.113.9"), 8, 0, model.CountersSnapshot{})

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No relays were verified anonymous") {
		t.Errorf("empty run output missing placeholder:\n%s", buf.String())
	}
}

// failWriter fails after the first write to exercise MultiWriter's error
// handling.
type failWriter struct{}

func (failWriter) Write(*Summary) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, jsonBuf bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&jsonBuf))

		if _, err := mw.Write(testSummary()); err != nil {
			t.Fatal(err)
		}
		if text.Len() == 0 || jsonBuf.Len() == 0 {
			t.Error("one of the writers received no output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failWriter{}, NewTextWriter(&buf))

		if _, err := mw.Write(testSummary()); err == nil {
			t.Fatal("Write() succeeded despite a failing writer")
		}
		if buf.Len() != 0 {
			t.Error("writer after the failing one still received output")
		}
	})
}
