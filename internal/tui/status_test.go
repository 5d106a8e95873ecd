package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"calpersonal/internal/remote"
	"calpersonal/internal/syncer"
)

func TestAuthStatus_RecomputedPerHandle(t *testing.T) {
	f := &fakeEngine{}
	m := newTestModel(t, f)
	if m.status.auth != authAuthenticating {
		t.Fatalf("expected Authenticating before any handle resolves; got %v", m.status.auth)
	}

	f.batches = [][]syncer.Message{
		{syncer.HandleResolved{Kind: syncer.KindEvents, Available: false}},
		{syncer.HandleResolved{Kind: syncer.KindTasks, Available: true}},
	}
	m, _ = press(m, tickMsg{})
	if m.status.auth != authOffline {
		t.Fatalf("expected Offline after a failed events handle; got %v", m.status.auth)
	}
	m, _ = press(m, tickMsg{})
	if m.status.auth != authOnline {
		t.Fatalf("expected Online once the tasks handle resolves; got %v", m.status.auth)
	}
	if !strings.Contains(m.View(), "Online") {
		t.Fatalf("expected the header to show Online")
	}
}

func TestAuthStatus_BothUnavailableIsOffline(t *testing.T) {
	f := &fakeEngine{batches: [][]syncer.Message{{
		syncer.HandleResolved{Kind: syncer.KindEvents},
		syncer.HandleResolved{Kind: syncer.KindTasks},
	}}}
	m := newTestModel(t, f)
	m, _ = press(m, tickMsg{})
	if m.status.auth != authOffline {
		t.Fatalf("expected Offline; got %v", m.status.auth)
	}
}

func TestFeedback_SetsStatus(t *testing.T) {
	f := &fakeEngine{batches: [][]syncer.Message{
		{syncer.Feedback{Op: syncer.OpInsertTask, Text: "Task created!", OK: true}},
		{syncer.Feedback{Op: syncer.OpDeleteEvent, Text: "Failed: gone", OK: false}},
		{syncer.RefreshFailed{Kind: syncer.KindEvents, Err: errors.New("timeout")}},
	}}
	m := newTestModel(t, f)

	m, _ = press(m, tickMsg{})
	if m.status.text != "Task created!" || m.status.sev != severitySuccess {
		t.Fatalf("expected success status; got %q/%v", m.status.text, m.status.sev)
	}
	m, _ = press(m, tickMsg{})
	if m.status.text != "Failed: gone" || m.status.sev != severityError {
		t.Fatalf("expected failure status; got %q/%v", m.status.text, m.status.sev)
	}
	m, _ = press(m, tickMsg{})
	if m.status.text != "Failed: timeout" {
		t.Fatalf("expected refresh failure status; got %q", m.status.text)
	}
}

func TestStatus_AutoClearsAfterInterval(t *testing.T) {
	m := newTestModel(t, &fakeEngine{})

	m.status.set("Event created!", severitySuccess, testNow.Add(-statusAutoClearAfter-100*time.Millisecond))
	m, _ = press(m, tickMsg{})
	if m.status.text != "" {
		t.Fatalf("expected status to clear; got %q", m.status.text)
	}

	m.status.set("Event created!", severitySuccess, testNow)
	m, _ = press(m, tickMsg{})
	if m.status.text == "" {
		t.Fatalf("expected recent status to remain")
	}
}

func TestStatus_PendingNeverAutoClears(t *testing.T) {
	m := newTestModel(t, &fakeEngine{})
	m.status.pending("Creating event", testNow.Add(-time.Hour))
	m, _ = press(m, tickMsg{})
	if m.status.text != "Creating event" {
		t.Fatalf("expected pending status to stay; got %q", m.status.text)
	}
}

func TestRefresh_OfflineWhenNoHandle(t *testing.T) {
	f := &fakeEngine{refreshErr: remote.ErrNotConnected}
	m := newTestModel(t, f)
	m, _ = press(m, runes("R"), tickMsg{})
	if m.status.text != "Offline" {
		t.Fatalf("expected Offline; got %q", m.status.text)
	}
}

func TestStatusLine_ShowsRefreshing(t *testing.T) {
	f := &fakeEngine{refreshing: map[syncer.Kind]bool{syncer.KindTasks: true}}
	m := newTestModel(t, f)
	m, _ = press(m, tickMsg{})
	if !strings.Contains(m.renderStatusLine(), "Refreshing") {
		t.Fatalf("expected refreshing indicator; got %q", m.renderStatusLine())
	}
	f.refreshing = nil
	if strings.Contains(m.renderStatusLine(), "Refreshing") {
		t.Fatalf("expected indicator to clear once refreshes finish")
	}
}
