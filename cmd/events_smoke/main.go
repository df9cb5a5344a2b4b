package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// End-to-end smoke against a running server: sign in with a throwaway
// wallet, subscribe to /ws, create and complete a task over the REST API,
// and print the events observed on the stream.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatalf("generate wallet: %v", err)
	}
	pk, err := solana.PublicKeyFromBytes(pub)
	if err != nil {
		log.Fatalf("wallet key: %v", err)
	}
	wallet := pk.String()
	log.Printf("wallet=%s", wallet)

	// challenge / verify
	var ch struct {
		Nonce   string `json:"nonce"`
		Message string `json:"message"`
	}
	postJSON(base+"/auth/challenge", map[string]string{"wallet": wallet}, &ch)

	sig := ed25519.Sign(priv, []byte(ch.Message))
	var session struct {
		Token string `json:"token"`
	}
	postJSON(base+"/auth/verify", map[string]string{
		"wallet":    wallet,
		"nonce":     ch.Nonce,
		"signature": base64.StdEncoding.EncodeToString(sig),
	}, &session)
	log.Println("signed in")

	// subscribe before mutating so no event is missed
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s&author=%s", port, session.Token, wallet)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	var created struct {
		Address string `json:"address"`
	}
	doAuth(http.MethodPost, base+"/tasks", session.Token, map[string]string{
		"title":       "smoke " + time.Now().Format("150405"),
		"description": "event stream check",
	}, &created)
	log.Printf("created task at %s", created.Address)

	doAuth(http.MethodPatch, base+"/tasks/"+created.Address+"/complete", session.Token, nil, nil)
	doAuth(http.MethodDelete, base+"/tasks/"+created.Address, session.Token, nil, nil)

	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read event %d: %v", i+1, err)
		}
		log.Printf("event: %s", string(msg))
	}

	log.Println("smoke test finished")
}

func postJSON(url string, body any, out any) {
	doAuth(http.MethodPost, url, "", body, out)
}

func doAuth(method, url, token string, body, out any) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal %s: %v", url, err)
		}
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: status %d", method, url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", url, err)
		}
	}
}
