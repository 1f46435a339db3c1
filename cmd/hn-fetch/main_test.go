package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Sternrassler/hn-fetch/internal/testutil"
)

// execute runs the root command against mock and returns stdout.
func execute(t *testing.T, mock *testutil.MockHN, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	stdout := &bytes.Buffer{}
	cmd := newRootCommand(stdout)
	cmd.SetErr(&bytes.Buffer{})

	base := []string{"--log-level", "disabled"}
	if mock != nil {
		base = append(base, "--item-url", mock.ItemURL(), "--user-url", mock.UserURL(), "--timeout", "2s")
	}
	cmd.SetArgs(append(base, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func newTreeMock() *testutil.MockHN {
	mock := testutil.NewMockHN()
	mock.SetUser("whoishiring", testutil.NewUserJSON("whoishiring", []int{1, 2}))
	mock.SetTree(map[int][]int{
		1: {3, 4},
		2: nil,
		3: {5},
		4: nil,
		5: nil,
	})
	return mock
}

func TestRun_Author(t *testing.T) {
	mock := newTreeMock()
	defer mock.Close()

	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"--author", "whoishiring"}, "fetched 1 posts\n"},
		{[]string{"--author", "whoishiring", "--recursive", "1"}, "fetched 3 posts\n"},
		{[]string{"--author", "whoishiring", "--recursive", "2"}, "fetched 5 posts\n"},
		{[]string{"--author", "whoishiring", "--recursive", "3", "--max-concurrency", "1"}, "fetched 6 posts\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, mock, tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if out != tt.expected {
				t.Errorf("stdout = %q, want %q", out, tt.expected)
			}
		})
	}
}

func TestRun_Items(t *testing.T) {
	mock := newTreeMock()
	defer mock.Close()

	out, err := execute(t, mock, "--item", "1", "--item", "2", "--recursive", "1")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "fetched 4 posts\n" {
		t.Errorf("stdout = %q, want %q", out, "fetched 4 posts\n")
	}
}

func TestRun_VerboseKeepsStdoutClean(t *testing.T) {
	mock := newTreeMock()
	defer mock.Close()

	out, err := execute(t, mock, "--author", "whoishiring", "--recursive", "1", "--verbose")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "fetched 3 posts\n" {
		t.Errorf("stdout = %q, want only the count line", out)
	}
}

func TestRun_NothingToFetch(t *testing.T) {
	mock := newTreeMock()
	defer mock.Close()

	out, err := execute(t, mock)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want no output", out)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestRun_FetchError(t *testing.T) {
	mock := newTreeMock()
	defer mock.Close()
	mock.SetItemResponse(2, testutil.NewServerErrorResponse())

	out, err := execute(t, mock, "--author", "whoishiring", "--recursive", "1")
	if err == nil {
		t.Fatal("execute() error = nil, want fetch error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %q, want it to mention the status", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want no output on failure", out)
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"negative recursion", []string{"--author", "pg", "--recursive", "-1"}, "--recursive must be >= 0"},
		{"zero timeout", []string{"--author", "pg", "--timeout", "0s"}, "timeout must be > 0"},
		{"positional args", []string{"pg"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, nil, tt.args...)
			if err == nil {
				t.Fatal("execute() error = nil")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err, tt.contains)
			}
		})
	}
}
