// simulate fires concurrent booking conversations at one slot through the
// chat endpoint and reports how many won the claim. With a healthy store
// exactly one conversation confirms; everyone else is told the slot is gone.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	Options   []string `json:"options,omitempty"`
}

type results struct {
	confirmed int64
	lost      int64
	failed    int64
}

func main() {
	log.SetFlags(log.LstdFlags)

	baseURL := flag.String("url", "http://localhost:8080", "api-server base URL")
	workers := flag.Int("workers", 20, "concurrent booking conversations")
	target := flag.String("slot", "", "slot to fight over, as dd/mm hh:mm (default: first offered)")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	var res results
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runConversation(client, *baseURL, *target, &res)
		}()
	}
	wg.Wait()

	fmt.Printf("workers=%d duration=%s\n", *workers, time.Since(start).Round(time.Millisecond))
	fmt.Printf("confirmed=%d slot_taken=%d failed=%d\n",
		atomic.LoadInt64(&res.confirmed), atomic.LoadInt64(&res.lost), atomic.LoadInt64(&res.failed))

	if atomic.LoadInt64(&res.confirmed) > 1 {
		log.Fatal("MORE THAN ONE CONVERSATION CONFIRMED THE SAME SLOT")
	}
}

func runConversation(client *http.Client, baseURL, target string, res *results) {
	sessionID := ""

	send := func(message string) (chatResponse, bool) {
		body, _ := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
		resp, err := client.Post(baseURL+"/chat", "application/json", bytes.NewReader(body))
		if err != nil {
			atomic.AddInt64(&res.failed, 1)
			return chatResponse{}, false
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			atomic.AddInt64(&res.failed, 1)
			return chatResponse{}, false
		}

		var out chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			atomic.AddInt64(&res.failed, 1)
			return chatResponse{}, false
		}
		sessionID = out.SessionID
		return out, true
	}

	if _, ok := send("quero marcar uma consulta"); !ok {
		return
	}
	if _, ok := send(gofakeit.Name()); !ok {
		return
	}

	offer, ok := send(gofakeit.Numerify("859########"))
	if !ok {
		return
	}

	choice := target
	if choice == "" {
		if len(offer.Options) == 0 {
			atomic.AddInt64(&res.failed, 1)
			return
		}
		choice = offer.Options[0]
	}

	if _, ok := send(choice); !ok {
		return
	}
	if _, ok := send("online"); !ok {
		return
	}

	final, ok := send("sim")
	if !ok {
		return
	}

	switch {
	case strings.Contains(final.Reply, "confirmada"):
		atomic.AddInt64(&res.confirmed, 1)
	case strings.Contains(final.Reply, "não está mais disponível"):
		atomic.AddInt64(&res.lost, 1)
	default:
		atomic.AddInt64(&res.failed, 1)
	}
}
