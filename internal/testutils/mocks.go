package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type Post struct {
	Destination string
	Text        string
}

// MockNotifier records every Post. FailCalls lists 1-based call numbers that
// return an error; ShouldFail fails every call.
type MockNotifier struct {
	mu         sync.Mutex
	Posts      []Post
	Attempts   int
	ShouldFail bool
	FailCalls  map[int]bool
	PanicCalls map[int]bool
	Delay      time.Duration
}

func (m *MockNotifier) Post(ctx context.Context, destination, text string) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts++
	if m.PanicCalls[m.Attempts] {
		panic("mock notifier panic")
	}
	if m.ShouldFail || m.FailCalls[m.Attempts] {
		return fmt.Errorf("mock post %d failed", m.Attempts)
	}

	m.Posts = append(m.Posts, Post{Destination: destination, Text: text})
	return nil
}

func (m *MockNotifier) GetPosts() []Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]Post, len(m.Posts))
	copy(posts, m.Posts)
	return posts
}

func (m *MockNotifier) GetAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Attempts
}

// Texts returns the posted texts in order.
func (m *MockNotifier) Texts() []string {
	posts := m.GetPosts()
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}
	return texts
}

// LineRecorder is a LineSink that keeps every line in memory.
type LineRecorder struct {
	mu    sync.Mutex
	Lines []string
}

func (r *LineRecorder) WriteLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, line)
}

func (r *LineRecorder) GetLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.Lines))
	copy(lines, r.Lines)
	return lines
}

// CreateTempLogFile writes content to name inside a fresh temp dir and
// returns the full path.
func CreateTempLogFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}
