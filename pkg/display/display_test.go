package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/squad-console/pkg/model"
)

var (
	testPlayers = []model.Player{
		{ID: "p1", Name: "Son Heung-min", TeamName: "Spurs", Cost: 15000000, IsCaptain: true},
		{ID: "p2", Name: "Kim Min-jae", TeamID: "t2", Cost: 9500000},
	}
	testComments = []model.Comment{
		{ID: "c1", Author: "alice", Rating: 2, Content: "Great first touch"},
		{ID: "c2", AuthorID: "u9", Rating: 9, Content: "Overrated"},
	}
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config Config
		want   string // Type name
	}{
		{
			name:   "default format (table)",
			config: Config{},
			want:   "*display.tableFormatter",
		},
		{
			name:   "table format",
			config: Config{Format: FormatTable},
			want:   "*display.tableFormatter",
		},
		{
			name:   "json format",
			config: Config{Format: FormatJSON},
			want:   "*display.jsonFormatter",
		},
		{
			name:   "simple format",
			config: Config{Format: FormatSimple},
			want:   "*display.simpleFormatter",
		},
		{
			name:   "unknown format falls back to table",
			config: Config{Format: "xml"},
			want:   "*display.tableFormatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fmt.Sprintf("%T", New(tt.config))
			if got != tt.want {
				t.Errorf("New() type = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableFormatter_FormatPlayers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(Config{}).FormatPlayers(&buf, testPlayers); err != nil {
		t.Fatalf("FormatPlayers() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"ID", "Name", "Captain", "Son Heung-min", "Spurs", "15,000,000", "9,500,000", "t2", "yes"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header+separator+2 rows:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[1], "--") {
		t.Errorf("separator line = %q", lines[1])
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(Config{}).FormatTeams(&buf, nil); err != nil {
		t.Fatalf("FormatTeams() error = %v", err)
	}
	if got := buf.String(); got != "No data\n" {
		t.Errorf("output = %q, want %q", got, "No data\n")
	}
}

func TestTableFormatter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	teams := []model.Team{{ID: "t1", Name: "Spurs", PlayerCount: 3}}
	if err := New(Config{Compact: true}).FormatTeams(&buf, teams); err != nil {
		t.Fatalf("FormatTeams() error = %v", err)
	}

	want := "ID Name  Players\nt1 Spurs 3\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTableFormatter_FitsWidth(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 80)
	comments := []model.Comment{{ID: "c1", Author: "bob", Rating: 3, Content: long}}

	var buf bytes.Buffer
	if err := New(Config{Width: 40, Compact: true}).FormatComments(&buf, comments); err != nil {
		t.Fatalf("FormatComments() error = %v", err)
	}

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if n := len([]rune(line)); n > 40 {
			t.Errorf("line has %d runes, want <= 40: %q", n, line)
		}
	}
	if !strings.Contains(buf.String(), "~") {
		t.Error("truncated cell should end with ~")
	}
}

func TestTableFormatter_FormatStats(t *testing.T) {
	t.Parallel()

	stats := model.Counters{"totalPlayers": 3, "totalCost": 25000000, "totalTeamPlayers": 7}

	var buf bytes.Buffer
	if err := New(Config{}).FormatStats(&buf, stats); err != nil {
		t.Fatalf("FormatStats() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Statistics", "Players", "3", "Cost", "25,000,000", "Team Players"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Index(output, "Cost") > strings.Index(output, "Players") {
		t.Error("stats should be sorted by key")
	}
}

func TestFormatStats_NilPrintsNothing(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatTable, FormatJSON, FormatSimple} {
		var buf bytes.Buffer
		if err := New(Config{Format: format}).FormatStats(&buf, nil); err != nil {
			t.Fatalf("%s FormatStats() error = %v", format, err)
		}
		if buf.Len() != 0 {
			t.Errorf("%s FormatStats(nil) = %q, want empty", format, buf.String())
		}
	}
}

func TestTableFormatter_FormatProfile(t *testing.T) {
	t.Parallel()

	user := model.User{
		ID: "u1", Username: "alice", Name: "Alice", YOB: 1990, IsAdmin: true,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := New(Config{}).FormatProfile(&buf, user); err != nil {
		t.Fatalf("FormatProfile() error = %v", err)
	}
	for _, want := range []string{"alice", "1990", "admin", "2024-03-01"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatPagination(t *testing.T) {
	t.Parallel()

	p := model.Pagination{Page: 2, Limit: 10, TotalPages: 0, TotalItems: 1200}
	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "Page 2 of 1, 1,200 items\n"},
		{FormatSimple, "page 2/1 (1200 items)\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := New(Config{Format: tt.format}).FormatPagination(&buf, p); err != nil {
			t.Fatalf("FormatPagination() error = %v", err)
		}
		if got := buf.String(); got != tt.want {
			t.Errorf("%s FormatPagination() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := New(Config{Format: FormatJSON})
	if err := f.FormatPlayers(&buf, testPlayers); err != nil {
		t.Fatalf("FormatPlayers() error = %v", err)
	}

	var decoded []model.Player
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Name != "Son Heung-min" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := f.FormatMembers(&buf, nil); err != nil {
		t.Fatalf("FormatMembers() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("nil members = %q, want []", got)
	}
}

func TestJSONFormatter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(Config{Format: FormatJSON, Compact: true}).FormatStats(&buf, model.Counters{"totalTeams": 2}); err != nil {
		t.Fatalf("FormatStats() error = %v", err)
	}
	if got := buf.String(); got != "{\"totalTeams\":2}\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSimpleFormatter(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatSimple})

	var buf bytes.Buffer
	if err := f.FormatPlayers(&buf, testPlayers); err != nil {
		t.Fatalf("FormatPlayers() error = %v", err)
	}
	want := "p1: Son Heung-min (C) | Spurs | 15,000,000\np2: Kim Min-jae | t2 | 9,500,000\n"
	if got := buf.String(); got != want {
		t.Errorf("FormatPlayers() = %q, want %q", got, want)
	}

	buf.Reset()
	if err := f.FormatComments(&buf, testComments); err != nil {
		t.Fatalf("FormatComments() error = %v", err)
	}
	if !strings.Contains(buf.String(), "c2: [9/3] u9 - Overrated") {
		t.Errorf("FormatComments() = %q", buf.String())
	}

	buf.Reset()
	if err := f.FormatStats(&buf, model.Counters{"totalTeams": 2, "totalAdmins": 1}); err != nil {
		t.Fatalf("FormatStats() error = %v", err)
	}
	if got := buf.String(); got != "Admins: 1 | Teams: 2\n" {
		t.Errorf("FormatStats() = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-15000, "-15,000"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.input); got != tt.want {
			t.Errorf("formatNumber(%d) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFormatRating(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "...", 2: "**.", 3: "***", 7: "***", -1: "..."}
	for in, want := range tests {
		if got := formatRating(in); got != want {
			t.Errorf("formatRating(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestStatLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"totalPlayers":     "Players",
		"totalTeamPlayers": "Team Players",
		"total":            "Total",
		"custom":           "custom",
	}
	for in, want := range tests {
		if got := statLabel(in); got != want {
			t.Errorf("statLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTerminalWidthNonTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() // nolint:errcheck

	if got := TerminalWidth(f); got != 0 {
		t.Errorf("TerminalWidth(file) = %d, want 0", got)
	}
}
