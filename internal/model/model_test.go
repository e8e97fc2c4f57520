package model

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

// crockfordBase32 matches valid ULID strings (26 chars, Crockford Base32 alphabet).
var crockfordBase32 = regexp.MustCompile(`^[0123456789ABCDEFGHJKMNPQRSTVWXYZ]{26}$`)

func TestNewIDFormat(t *testing.T) {
	id := NewID()
	if !crockfordBase32.MatchString(id) {
		t.Errorf("NewID() = %q, does not match Crockford Base32 ULID format", id)
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("NewID() produced duplicate: %s", id)
		}
		seen[id] = true
	}
}

func TestStatusWireValues(t *testing.T) {
	statuses := []struct {
		constant Status
		expected string
	}{
		{StatusWaiting, "WAIT"},
		{StatusRunning, "RUNNING"},
		{StatusSuccess, "SUCCESS"},
		{StatusFailed, "FAILED"},
	}
	for _, s := range statuses {
		if string(s.constant) != s.expected {
			t.Errorf("status constant = %q, want %q", s.constant, s.expected)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"python", KindScript, false},
		{"bin", KindBinary, false},
		{"", "", true},
		{"PYTHON", "", true},
		{"sh", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownKind) {
				t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusWaiting, StatusRunning, true},
		{StatusWaiting, StatusFailed, true},
		{StatusWaiting, StatusSuccess, false},
		{StatusRunning, StatusSuccess, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusWaiting, false},
		{StatusSuccess, StatusRunning, false},
		{StatusFailed, StatusSuccess, false},
	}
	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if StatusWaiting.IsTerminal() || StatusRunning.IsTerminal() {
		t.Error("non-terminal status reported terminal")
	}
	if !StatusSuccess.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("terminal status not reported terminal")
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	now := time.Now()
	stderr := "boom"
	r := Record{Status: StatusFailed, StartedAt: &now, FinishedAt: &now, Stderr: &stderr}

	c := r.Clone()
	*c.Stderr = "changed"
	*c.StartedAt = now.Add(time.Hour)

	if *r.Stderr != "boom" {
		t.Errorf("original stderr mutated through clone: %q", *r.Stderr)
	}
	if !r.StartedAt.Equal(now) {
		t.Error("original started_at mutated through clone")
	}
}

func TestRecordDuration(t *testing.T) {
	start := time.Now()
	end := start.Add(250 * time.Millisecond)

	r := NewRecord(KindScript)
	if r.Duration() != 0 {
		t.Errorf("Duration of waiting record = %v, want 0", r.Duration())
	}
	r.StartedAt, r.FinishedAt = &start, &end
	if r.Duration() != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", r.Duration())
	}
}
