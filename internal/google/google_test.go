package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func remoteFilter() remote.EventFilter {
	return remote.EventFilter{SingleEvents: true, OrderBy: "startTime"}
}

func serve(t *testing.T, mux *http.ServeMux) []option.ClientOption {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestCalendarClient_ListAndConvert(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []map[string]any{{"id": "primary", "summary": "Me"}, {"id": "family", "summary": "Family"}}})
	})
	var gotQuery string
	mux.HandleFunc("GET /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": "e1", "summary": "Standup", "start": map[string]string{"dateTime": "2025-03-05T10:00:00+09:00"}, "end": map[string]string{"dateTime": "2025-03-05T11:00:00+09:00"}},
			{"id": "e2", "start": map[string]string{"date": "2025-03-06"}, "end": map[string]string{"date": "2025-03-07"}},
		}})
	})

	c, err := NewCalendarClient(context.Background(), serve(t, mux)...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cals, err := c.ListCalendars(context.Background())
	if err != nil {
		t.Fatalf("list calendars: %v", err)
	}
	if len(cals) != 2 || cals[0].ID != "primary" || cals[1].Title != "Family" {
		t.Fatalf("unexpected calendars: %+v", cals)
	}

	evs, err := c.ListEvents(context.Background(), "primary", remoteFilter())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if !strings.Contains(gotQuery, "singleEvents=true") || !strings.Contains(gotQuery, "orderBy=startTime") {
		t.Fatalf("expected singleEvents/orderBy in query; got %q", gotQuery)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events; got %d", len(evs))
	}
	want := time.Date(2025, time.March, 5, 1, 0, 0, 0, time.UTC)
	if evs[0].Start.DateTime == nil || !evs[0].Start.DateTime.Equal(want) {
		t.Fatalf("expected timed start %v; got %+v", want, evs[0].Start)
	}
	if !evs[1].Start.AllDay() || evs[1].Start.Date.String() != "2025-03-06" {
		t.Fatalf("expected all-day start; got %+v", evs[1].Start)
	}
	if evs[1].DisplayTitle() != "Untitled" {
		t.Fatalf("expected untitled fallback; got %q", evs[1].DisplayTitle())
	}
}

func TestCalendarClient_Mutations(t *testing.T) {
	mux := http.NewServeMux()
	var inserted, patched map[string]any
	deleted := false
	mux.HandleFunc("POST /calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&inserted)
		inserted["id"] = "new-id"
		writeJSON(w, inserted)
	})
	mux.HandleFunc("PATCH /calendars/primary/events/e1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&patched)
		writeJSON(w, patched)
	})
	mux.HandleFunc("DELETE /calendars/primary/events/e1", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	c, err := NewCalendarClient(context.Background(), serve(t, mux)...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	day := model.Date{Year: 2025, Month: time.March, Day: 5}
	ev, err := c.InsertEvent(context.Background(), "primary", model.Event{Title: "Trip", Start: model.On(day), End: model.On(day.AddDays(1))})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if ev.ID != "new-id" || !ev.Start.AllDay() {
		t.Fatalf("unexpected created event: %+v", ev)
	}
	start, _ := inserted["start"].(map[string]any)
	if start["date"] != "2025-03-05" {
		t.Fatalf("expected all-day start on the wire; got %v", inserted["start"])
	}

	if err := c.PatchEvent(context.Background(), "primary", "e1", model.Event{Title: "Renamed"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched["summary"] != "Renamed" {
		t.Fatalf("expected summary in patch; got %v", patched)
	}
	if _, ok := patched["start"]; ok {
		t.Fatalf("expected title-only patch to omit start; got %v", patched)
	}

	if err := c.DeleteEvent(context.Background(), "primary", "e1"); err != nil || !deleted {
		t.Fatalf("delete: err=%v deleted=%v", err, deleted)
	}
}

func TestCalendarClient_ErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})
	c, err := NewCalendarClient(context.Background(), serve(t, mux)...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := c.ListCalendars(context.Background()); err == nil {
		t.Fatalf("expected error from failing remote")
	}
}

func TestTaskClient_RoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []map[string]any{{"id": "L1", "title": "My Tasks"}}})
	})
	var listQuery string
	mux.HandleFunc("GET /tasks/v1/lists/L1/tasks", func(w http.ResponseWriter, r *http.Request) {
		listQuery = r.URL.RawQuery
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": "T1", "title": "Pay rent", "due": "2025-03-05T00:00:00.000Z", "notes": "call first", "status": "needsAction"},
		}})
	})
	var patched map[string]any
	mux.HandleFunc("PATCH /tasks/v1/lists/L1/tasks/T1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&patched)
		writeJSON(w, patched)
	})
	cleared := false
	mux.HandleFunc("POST /tasks/v1/lists/L1/clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		w.WriteHeader(http.StatusNoContent)
	})

	c, err := NewTaskClient(context.Background(), serve(t, mux)...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	lists, err := c.ListTaskLists(context.Background())
	if err != nil || len(lists) != 1 || lists[0].ID != "L1" {
		t.Fatalf("unexpected lists %+v err=%v", lists, err)
	}
	ts, err := c.ListTasks(context.Background(), "L1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !strings.Contains(listQuery, "showCompleted=true") || !strings.Contains(listQuery, "showHidden=true") {
		t.Fatalf("expected completed and hidden tasks to be requested; got %q", listQuery)
	}
	want := model.Task{ID: "T1", Title: "Pay rent", Due: "2025-03-05T00:00:00.000Z", Notes: "call first", Status: model.TaskNeedsAction}
	if len(ts) != 1 || ts[0] != want {
		t.Fatalf("expected %+v; got %+v", want, ts)
	}

	if err := c.PatchTask(context.Background(), "L1", "T1", model.Task{Status: model.TaskCompleted}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched["status"] != "completed" {
		t.Fatalf("expected status patch; got %v", patched)
	}
	if _, ok := patched["title"]; ok {
		t.Fatalf("expected status-only patch; got %v", patched)
	}
	if err := c.ClearCompleted(context.Background(), "L1"); err != nil || !cleared {
		t.Fatalf("clear: err=%v cleared=%v", err, cleared)
	}
}

func TestProvider_HandlesFromOptions(t *testing.T) {
	p := &Provider{Log: testLogger(), Options: serve(t, http.NewServeMux())}
	if !p.CalendarHandle(context.Background()).Available() {
		t.Fatalf("expected calendar handle")
	}
	if !p.TaskHandle(context.Background()).Available() {
		t.Fatalf("expected task handle")
	}
}

func TestProvider_MissingCredentialsIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	p := &Provider{
		ClientSecretFile: filepath.Join(dir, "client_secret.json"),
		TokenDir:         dir,
		Log:              testLogger(),
	}
	if p.CalendarHandle(context.Background()).Available() {
		t.Fatalf("expected calendar handle to be unavailable without credentials")
	}
	if p.TaskHandle(context.Background()).Available() {
		t.Fatalf("expected task handle to be unavailable without credentials")
	}
}

func TestToken_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "token-events.json")
	in := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	if err := saveToken(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.AccessToken != "a" || out.RefreshToken != "r" {
		t.Fatalf("unexpected token %+v", out)
	}
}
