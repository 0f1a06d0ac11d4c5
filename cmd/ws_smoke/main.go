// ws_smoke drives one full game of Bussen against a running server: two
// players, the question round, the pyramid and the bus. It exits non-zero
// when the flow stalls.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type player struct {
	ID    string
	Name  string
	Token string
	Conn  *websocket.Conn
	State map[string]any
}

var appURL string

func main() {
	appURL = os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	a := auth("smokeA")
	b := auth("smokeB")

	room := post(a.Token, "/api/v1/rooms", map[string]any{"name": "smoke room"})
	code := room["code"].(string)
	log.Printf("created room %s", code)
	post(b.Token, "/api/v1/rooms/join", map[string]any{"code": code})

	dial(a)
	dial(b)
	defer a.Conn.Close()
	defer b.Conn.Close()

	send(a, map[string]any{"type": "start"})

	deadline := time.Now().Add(2 * time.Minute)
	for time.Now().Before(deadline) {
		p := a
		pump(a)
		pump(b)

		phase, _ := a.State["phase"].(string)
		switch phase {
		case "phase1":
			p = currentPlayer(a, b)
			if p == nil {
				continue
			}
			send(p, map[string]any{"phase": "phase1", "type": "answer", "value": 0})
		case "phase2":
			idx := pyramidIndex(a)
			if idx == nil {
				continue
			}
			send(a, map[string]any{"phase": "phase2", "type": "next_card", "index": *idx})
		case "phase3":
			p = currentPlayer(a, b)
			if p == nil {
				continue
			}
			bus, _ := p.State["bus"].(map[string]any)
			if bus == nil {
				continue
			}
			idx := int(bus["current_index"].(float64))
			send(p, map[string]any{"phase": "phase3", "type": "guess", "guess": "higher", "index": idx})
		case "open":
			if a.State["celebrated"] == true {
				log.Println("smoke test passed: game finished")
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	log.Fatal("smoke test timed out")
}

func auth(name string) *player {
	res := post("", "/api/v1/auth", map[string]any{"name": name})
	pl := res["player"].(map[string]any)
	return &player{
		ID:    pl["id"].(string),
		Name:  name,
		Token: res["token"].(string),
		State: map[string]any{},
	}
}

func post(token, path string, body map[string]any) map[string]any {
	data, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", appURL+path, bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		log.Fatalf("POST %s: status %d", path, res.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		log.Fatalf("POST %s: decode: %v", path, err)
	}
	return out
}

func dial(p *player) {
	u, err := url.Parse(appURL)
	if err != nil {
		log.Fatal(err)
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/ws?token=%s", scheme, u.Host, p.Token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", p.Name, err)
	}
	p.Conn = conn
}

func send(p *player, msg map[string]any) {
	if err := p.Conn.WriteJSON(msg); err != nil {
		log.Fatalf("send %s: %v", p.Name, err)
	}
}

// pump reads whatever the server has queued and folds state snapshots
// into the player.
func pump(p *player) {
	for {
		p.Conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		_, raw, err := p.Conn.ReadMessage()
		if err != nil {
			if strings.Contains(err.Error(), "timeout") {
				return
			}
			log.Fatalf("read %s: %v", p.Name, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg["type"] {
		case "state":
			celebrated := p.State["celebrated"]
			p.State = msg
			p.State["celebrated"] = celebrated
		case "celebrate":
			p.State["celebrated"] = true
			log.Printf("%s saw celebrate: winner=%v", p.Name, msg["winner"])
		case "message":
			log.Printf("%s: [%v] %v", p.Name, msg["color"], msg["message"])
		case "error":
			log.Printf("%s: error: %v", p.Name, msg["message"])
		}
	}
}

func currentPlayer(players ...*player) *player {
	for _, p := range players {
		if cur, _ := p.State["current_player"].(string); cur == p.ID {
			return p
		}
	}
	return nil
}

func pyramidIndex(p *player) *int {
	pyr, _ := p.State["pyramid"].(map[string]any)
	if pyr == nil {
		return nil
	}
	v, ok := pyr["current_index"].(float64)
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}
