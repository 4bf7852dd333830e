package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type wsMessage struct {
	Type string `json:"type"`
	Data struct {
		Kind    string `json:"kind"`
		Phase   string `json:"phase"`
		Detail  string `json:"detail"`
		Outcome *struct {
			Score    float64 `json:"score"`
			XPEarned int     `json:"xpEarned"`
		} `json:"outcome"`
	} `json:"data"`
}

func TestRoundsWebSocketStreamsEvents(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	createProfile(t, srv)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rounds"
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}
	defer ws.Close(websocket.StatusNormalClosure, "test finished")

	body := `{"scenarioId":"` + testScenario + `","prompt":"` + goodPrompt + `"}`
	resp, err := http.Post(ts.URL+"/api/battles", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/battles: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("play status = %d", resp.StatusCode)
	}

	var kinds []string
	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			t.Fatalf("read: %v (seen %v)", err, kinds)
		}
		if msg.Type == "snapshot" {
			// Sent when the handler sees the round before its first event.
			continue
		}
		kinds = append(kinds, msg.Type+"/"+msg.Data.Phase)
		if msg.Type != "result" {
			continue
		}
		if msg.Data.Outcome == nil || msg.Data.Outcome.Score != 8 || msg.Data.Outcome.XPEarned != 180 {
			t.Fatalf("result = %+v", msg.Data)
		}
		break
	}
	want := []string{"phase/scenario", "phase/evaluation", "result/results"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
}

func TestRoundsWebSocketSendsSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	createProfile(t, srv)
	performJSONRequest(t, srv, http.MethodPost, "/api/rounds", `{"scenarioId":"`+testScenario+`"}`)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/rounds", nil)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}
	defer ws.Close(websocket.StatusNormalClosure, "test finished")

	var msg struct {
		Type string    `json:"type"`
		Data roundBody `json:"data"`
	}
	if err := wsjson.Read(ctx, ws, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "snapshot" || msg.Data.Round.Phase != "scenario" || msg.Data.Round.Remaining != 15 {
		t.Fatalf("snapshot = %+v", msg)
	}
}
