package integration

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	httpserver "github.com/t9fiction/Solana-Task-Manager/internal/http"
	"github.com/t9fiction/Solana-Task-Manager/internal/http/handlers"
	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/service"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"
	"github.com/t9fiction/Solana-Task-Manager/internal/ws"
)

// Full wallet flow over a live test server: sign in with a fresh keypair,
// subscribe to the event stream, drive the lifecycle over REST and check
// that every committed transition shows up on the socket in order.
func TestE2E_WalletFlowAndEventStream(t *testing.T) {
	os.Setenv("JWT_SECRET", "e2e-test-secret")
	service.InitJWT()
	gin.SetMode(gin.TestMode)

	l := ledger.NewMemoryLedger()
	hub := ws.NewHub()
	tasks := service.NewTaskService(l, task.ProgramID, hub)
	walletAuth := service.NewWalletAuthService("e2e")

	h := handlers.NewHandler(tasks, walletAuth, nil)
	health := handlers.NewHealthHandler(nil, nil, "test")

	r := gin.New()
	httpserver.RegisterRoutes(r, h, health, hub)
	ts := httptest.NewServer(r)
	defer ts.Close()

	// wallet sign-in
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate wallet: %v", err)
	}
	pk, err := solana.PublicKeyFromBytes(pub)
	if err != nil {
		t.Fatalf("wallet key: %v", err)
	}
	wallet := pk.String()

	var ch struct {
		Nonce   string `json:"nonce"`
		Message string `json:"message"`
	}
	post(t, ts.URL+"/api/v1/auth/challenge", "", map[string]string{"wallet": wallet}, &ch)

	var session struct {
		Token string `json:"token"`
	}
	post(t, ts.URL+"/api/v1/auth/verify", "", map[string]string{
		"wallet":    wallet,
		"nonce":     ch.Nonce,
		"signature": base64.StdEncoding.EncodeToString(ed25519.Sign(priv, []byte(ch.Message))),
	}, &session)
	if session.Token == "" {
		t.Fatal("empty session token")
	}

	// subscribe before mutating
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=" + session.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	events := make(chan map[string]any, 16)
	go func() {
		defer close(events)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var evt map[string]any
			if json.Unmarshal(msg, &evt) == nil {
				events <- evt
			}
		}
	}()

	// wait for the hub to register the subscriber
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Subscribers() == 0 {
		t.Fatal("subscriber never registered")
	}

	var created struct {
		Address string `json:"address"`
	}
	post(t, ts.URL+"/api/v1/tasks", session.Token, map[string]string{
		"title":       "stream me",
		"description": "end to end",
	}, &created)
	if created.Address == "" {
		t.Fatal("create returned no address")
	}

	do(t, http.MethodPatch, ts.URL+"/api/v1/tasks/"+created.Address+"/complete", session.Token, nil, nil)
	do(t, http.MethodDelete, ts.URL+"/api/v1/tasks/"+created.Address, session.Token, nil, nil)

	want := []string{"task_created", "task_completed", "task_deleted"}
	for _, wantType := range want {
		select {
		case evt := <-events:
			if evt["type"] != wantType {
				t.Fatalf("got event %v, want %s", evt["type"], wantType)
			}
			if evt["address"] != created.Address {
				t.Fatalf("event address %v, want %s", evt["address"], created.Address)
			}
			if evt["author"] != wallet {
				t.Fatalf("event author %v, want %s", evt["author"], wallet)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for %s", wantType)
		}
	}
}

func post(t *testing.T, url, token string, body, out any) {
	t.Helper()
	do(t, http.MethodPost, url, token, body, out)
}

func do(t *testing.T, method, url, token string, body, out any) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal %s: %v", url, err)
		}
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		t.Fatalf("%s %s: status %d", method, url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}
