package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

// startTestServer 启动带管理器的 httptest.Server，返回 http 与 ws 根地址
func startTestServer(t *testing.T, cfg Config) (*Manager, string, string) {
	t.Helper()
	m := NewManager(cfg)
	srv := httptest.NewServer(m.Routes(t.TempDir()))
	t.Cleanup(func() {
		m.Shutdown()
		srv.Close()
	})
	return m, srv.URL, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrame 读一帧并解码为 map；二进制帧按 msgpack 解析
func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if kind == websocket.BinaryMessage {
		err = msgpack.Unmarshal(raw, &m)
	} else {
		err = json.Unmarshal(raw, &m)
	}
	if err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return m
}

// readUntil 丢弃不满足条件的帧（状态帧以 60Hz 穿插其中）
func readUntil(t *testing.T, conn *websocket.Conn, what string, pred func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m := readFrame(t, conn); pred(m) {
			return m
		}
	}
	t.Fatalf("timed out waiting for %s", what)
	return nil
}

func readType(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	return readUntil(t, conn, typ, func(m map[string]any) bool { return m["type"] == typ })
}

func isState(m map[string]any) bool {
	_, tagged := m["type"]
	return !tagged
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// ---------- websocket ----------

func TestWSNameFlowBetweenTwoPlayers(t *testing.T) {
	_, _, wsURL := startTestServer(t, DefaultConfig())

	alice := dialWS(t, wsURL+"/ws")
	first := readFrame(t, alice)
	if first["type"] != MsgConnection {
		t.Fatalf("first frame = %v, want connection", first)
	}
	bob := dialWS(t, wsURL+"/ws")
	readType(t, bob, MsgConnection)

	sendJSON(t, alice, map[string]string{"type": "setName", "name": "Alice"})
	if got := readType(t, alice, MsgNameSet); got["name"] != "Alice" {
		t.Errorf("nameSet = %v", got)
	}

	sendJSON(t, bob, map[string]string{"type": "setName", "name": "Alice"})
	taken := readType(t, bob, MsgNameTaken)
	if taken["message"] != nameTakenText {
		t.Errorf("nameTaken = %v", taken)
	}

	sendJSON(t, bob, map[string]string{"type": "setName", "name": "Bob"})
	readType(t, bob, MsgNameSet)

	readUntil(t, alice, "leaderboard with both names", func(m map[string]any) bool {
		if m["type"] != MsgLeaderboard {
			return false
		}
		names := map[string]bool{}
		for _, e := range m["leaderboard"].([]any) {
			names[e.(map[string]any)["name"].(string)] = true
		}
		return names["Alice"] && names["Bob"]
	})

	state := readUntil(t, alice, "state frame", isState)
	if got := len(state["players"].(map[string]any)); got != 2 {
		t.Errorf("state has %d players, want 2", got)
	}
}

func TestWSMovesChangeVelocity(t *testing.T) {
	_, _, wsURL := startTestServer(t, DefaultConfig())
	conn := dialWS(t, wsURL+"/ws")
	readType(t, conn, MsgConnection)

	sendJSON(t, conn, map[string]string{"type": "move", "direction": "right"})
	readUntil(t, conn, "moving state", func(m map[string]any) bool {
		if !isState(m) {
			return false
		}
		for _, p := range m["players"].(map[string]any) {
			if p.(map[string]any)["speedX"].(float64) > 0 {
				return true
			}
		}
		return false
	})
}

func TestWSServerFullAndPromotion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 1
	_, _, wsURL := startTestServer(t, cfg)

	first := dialWS(t, wsURL+"/ws?room=small")
	readType(t, first, MsgConnection)

	second := dialWS(t, wsURL+"/ws?room=small")
	full := readFrame(t, second)
	if full["type"] != MsgServerFull || full["message"] != serverFullText {
		t.Fatalf("second frame = %v, want serverFull", full)
	}

	first.Close()
	readType(t, second, MsgConnection)
}

func TestWSMsgpackCodec(t *testing.T) {
	_, _, wsURL := startTestServer(t, DefaultConfig())
	conn := dialWS(t, wsURL+"/ws?codec=msgpack")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("frame kind = %d, want binary", kind)
	}
	var hello map[string]any
	if err := msgpack.Unmarshal(raw, &hello); err != nil {
		t.Fatal(err)
	}
	if hello["type"] != MsgConnection {
		t.Fatalf("first frame = %v", hello)
	}

	payload, _ := msgpack.Marshal(map[string]string{"type": "setName", "name": "Packed"})
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.Fatal(err)
	}
	if got := readType(t, conn, MsgNameSet); got["name"] != "Packed" {
		t.Errorf("nameSet = %v", got)
	}
	state := readUntil(t, conn, "state frame", isState)
	if _, ok := state["star"]; !ok {
		t.Errorf("state frame missing star: %v", state)
	}
}

func TestWSRejectsUnknownCodec(t *testing.T) {
	_, _, wsURL := startTestServer(t, DefaultConfig())
	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws?codec=xml", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("response = %v", resp)
	}
}

func TestWSRoomsAreReclaimedWhenEmpty(t *testing.T) {
	m, _, wsURL := startTestServer(t, DefaultConfig())
	before := runtime.NumGoroutine()

	for i := 0; i < 100; i++ {
		conn := dialWS(t, fmt.Sprintf("%s/ws?room=r%d", wsURL, i))
		readType(t, conn, MsgConnection)
		conn.Close()
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(m.RoomIDs()) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ids := m.RoomIDs(); len(ids) != 0 {
		t.Fatalf("%d rooms still hosted after every client left", len(ids))
	}
	// 每个房间一个 Run 协程，回收后不应随拨号次数增长
	for runtime.NumGoroutine() > before+10 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > before+10 {
		t.Errorf("goroutines grew from %d to %d", before, after)
	}
}

func TestWSRoomCapRejectsNewRooms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRooms = 2
	_, _, wsURL := startTestServer(t, cfg)

	for _, id := range []string{"one", "two"} {
		conn := dialWS(t, wsURL+"/ws?room="+id)
		readType(t, conn, MsgConnection)
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws?room=three", nil)
	if err == nil {
		t.Fatal("expected a third room to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("response = %v", resp)
	}

	// 默认房间不受上限影响
	conn := dialWS(t, wsURL+"/ws")
	readType(t, conn, MsgConnection)
}

// ---------- http ----------

func TestAdminConfigRoundTrip(t *testing.T) {
	m, httpURL, _ := startTestServer(t, DefaultConfig())

	resp, err := http.Get(httpURL + "/admin/config?room=nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing room status = %d", resp.StatusCode)
	}

	if _, err := m.GetOrCreateRoom("arena"); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Post(httpURL+"/admin/config", "application/json",
		bytes.NewBufferString(`{"maxPlayers":99}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid patch status = %d", resp.StatusCode)
	}

	resp, err = http.Post(httpURL+"/admin/config", "application/json",
		bytes.NewBufferString(`{"tickRate":30,"resetPeriod":"5m"}`))
	if err != nil {
		t.Fatal(err)
	}
	var got adminConfig
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}
	if *got.TickRate != 30 || *got.ResetPeriod != "5m0s" || *got.MaxPlayers != 10 {
		t.Errorf("config = %d/%s/%d", *got.TickRate, *got.ResetPeriod, *got.MaxPlayers)
	}
}

func TestMetricsAndHealth(t *testing.T) {
	m, httpURL, _ := startTestServer(t, DefaultConfig())
	if _, err := m.GetOrCreateRoom("arena"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(httpURL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if body["room"] != "arena" {
		t.Errorf("room = %v", body["room"])
	}
	if _, ok := body["metrics"].(map[string]any); !ok {
		t.Errorf("metrics missing: %v", body)
	}
	if s, _ := body["next_reset"].(string); s == "" {
		t.Errorf("next_reset missing: %v", body)
	}

	resp, err = http.Get(httpURL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}
}

func TestQRServesPNG(t *testing.T) {
	_, httpURL, _ := startTestServer(t, DefaultConfig())
	resp, err := http.Get(httpURL + "/qr?room=arena")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestJoinURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://192.168.1.5:8080/qr", nil)
	if got := joinURL(r, "my room"); got != "http://192.168.1.5:8080/?room=my+room" {
		t.Errorf("joinURL = %q", got)
	}
}
