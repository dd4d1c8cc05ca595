package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/db"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/metrics"
	"github.com/ziadkadry99/netviz/internal/viz"
)

func setupTest(t *testing.T, labels ...string) (*Dashboard, *viz.Session, *history.Store) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := category.NewStore(category.FromLabels(labels))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	session := viz.NewSession(store)
	t.Cleanup(session.Close)

	hStore := history.NewStore(database)
	d := New(session, hStore, metrics.NewCollector("netviz"), nil)
	return d, session, hStore
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func dial(t *testing.T, d *Dashboard) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(setupRouter(d))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/network"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestStatsEndpoint(t *testing.T) {
	d, session, hStore := setupTest(t, "cats", "dogs")
	r := setupRouter(d)
	ctx := context.Background()

	session.ApplyPrediction(map[string]float64{"cats": 0.3, "dogs": 0.7})
	hStore.Log(ctx, history.Entry{Action: history.ActionPredict, Label: "dogs"})
	hStore.Log(ctx, history.Entry{Action: history.ActionUpload, Label: "cats"})
	hStore.Log(ctx, history.Entry{Action: history.ActionUpload, Label: "cats"})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.Categories != 2 {
		t.Errorf("expected 2 categories, got %d", stats.Categories)
	}
	if stats.Predicted != "dogs" {
		t.Errorf("expected predicted dogs, got %q", stats.Predicted)
	}
	if stats.History[history.ActionUpload] != 2 || stats.History[history.ActionPredict] != 1 {
		t.Errorf("unexpected history counts: %v", stats.History)
	}
}

func TestStatsWithoutHistory(t *testing.T) {
	_, session, _ := setupTest(t)
	d := New(session, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	setupRouter(d).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"history":{}`) {
		t.Errorf("expected empty history, got %s", w.Body.String())
	}
}

func TestWebSocketInitialFrame(t *testing.T) {
	d, _, _ := setupTest(t, "cats", "dogs")
	conn := dial(t, d)

	msg := read(t, conn)
	if msg.Type != "frame" {
		t.Fatalf("expected frame, got %q", msg.Type)
	}
	if msg.Frame == nil || len(msg.Frame.Probabilities) != 2 {
		t.Fatalf("unexpected frame: %+v", msg.Frame)
	}
	if !strings.HasPrefix(msg.SVG, "<svg") {
		t.Errorf("expected SVG payload, got %q", msg.SVG)
	}
}

func TestWebSocketStreamsCategoryChanges(t *testing.T) {
	d, session, _ := setupTest(t, "cats")
	conn := dial(t, d)
	read(t, conn)

	if _, err := session.Store().AddLabel("dogs"); err != nil {
		t.Fatalf("AddLabel: %v", err)
	}

	msg := read(t, conn)
	if msg.Type != "frame" || len(msg.Frame.Outputs()) != 2 {
		t.Errorf("expected frame with 2 outputs, got %+v", msg)
	}
}

func TestWebSocketProbabilities(t *testing.T) {
	d, _, _ := setupTest(t, "cats", "dogs")
	conn := dial(t, d)
	read(t, conn)

	if err := conn.WriteJSON(clientMessage{Type: "probabilities", Probabilities: []float64{0.9, 0.1}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := read(t, conn)
	if msg.Type != "frame" || msg.Frame.Predicted != 0 {
		t.Errorf("expected frame predicting 0, got %+v", msg)
	}
}

func TestWebSocketSimulate(t *testing.T) {
	d, _, _ := setupTest(t, "cats", "dogs", "birds")
	conn := dial(t, d)
	read(t, conn)

	conn.WriteJSON(clientMessage{Type: "simulate"})

	msg := read(t, conn)
	if msg.Type != "frame" {
		t.Fatalf("expected frame, got %q", msg.Type)
	}
	if sum := msg.Frame.Probabilities.Sum(); sum < 0.999 || sum > 1.001 {
		t.Errorf("simulated probabilities sum to %v", sum)
	}
}

func TestWebSocketSelect(t *testing.T) {
	d, session, _ := setupTest(t, "cats", "dogs")
	conn := dial(t, d)
	read(t, conn)

	conn.WriteJSON(clientMessage{Type: "select", Category: "dogs"})
	msg := read(t, conn)
	sel, _ := session.Store().Selected()
	if msg.Type != "selected" || msg.Content != sel.ID || sel.Label != "dogs" {
		t.Errorf("unexpected select reply %+v (selected %+v)", msg, sel)
	}

	conn.WriteJSON(clientMessage{Type: "select", Category: "nope"})
	msg = read(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Content, "not found") {
		t.Errorf("expected not found error, got %+v", msg)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	d, _, _ := setupTest(t)
	conn := dial(t, d)
	read(t, conn)

	conn.WriteJSON(clientMessage{Type: "dance"})

	msg := read(t, conn)
	if msg.Type != "error" {
		t.Errorf("expected error type, got %q", msg.Type)
	}
	if !strings.Contains(msg.Content, "unknown message type") {
		t.Errorf("expected unknown type error, got %q", msg.Content)
	}
}

func TestWebSocketInvalidJSON(t *testing.T) {
	d, _, _ := setupTest(t)
	conn := dial(t, d)
	read(t, conn)

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))

	msg := read(t, conn)
	if msg.Type != "error" || msg.Content != "invalid message format" {
		t.Errorf("unexpected reply %+v", msg)
	}
}

func TestServeIndex(t *testing.T) {
	d, _, _ := setupTest(t, "cats", "<dogs>")
	r := setupRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "netviz Dashboard") {
		t.Error("expected HTML to contain 'netviz Dashboard'")
	}
	body := w.Body.String()
	if !strings.Contains(body, `<div id="network"><svg`) {
		t.Error("expected the network SVG inlined in the page")
	}
	if !strings.Contains(body, "<li>cats</li>") {
		t.Error("expected the category list in the page")
	}
	if strings.Contains(body, "<dogs>") {
		t.Error("labels must be escaped")
	}
}

func TestPredictedLabelUsesFrameSnapshot(t *testing.T) {
	_, session, _ := setupTest(t, "cats", "dogs")
	frame := session.ApplyPrediction(map[string]float64{"cats": 0.3, "dogs": 0.7})

	// A later edit must not change what the captured frame reports.
	if err := session.Store().Set(category.FromLabels([]string{"birds"})); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := predictedLabel(frame); got != "dogs" {
		t.Errorf("predictedLabel = %q, want dogs", got)
	}

	frame.Predicted = 5
	if got := predictedLabel(frame); got != "" {
		t.Errorf("out of range predictedLabel = %q, want empty", got)
	}
}
