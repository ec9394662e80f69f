// Package main runs a demo WebSocket client for sync events.
package main

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}
	orderID := os.Getenv("IUTE_ORDER_ID")
	if orderID == "" {
		orderID = "1"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS first so the event from the manual sync below is caught
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/iute/events/ws"}
	q := u.Query()
	q.Set("orderId", orderID)
	u.RawQuery = q.Encode()
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt map[string]any
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %v", evt)
		}
	}()

	// Trigger a manual sync
	time.Sleep(200 * time.Millisecond)
	resp, err := http.Get(fmt.Sprintf("%s/iute/status/%s", base, orderID))
	if err != nil {
		log.Fatal(err)
	}
	_ = resp.Body.Close()
	log.Printf("manual sync: %s", resp.Status)

	select {
	case <-time.After(3 * time.Second):
	case <-done:
	}
}
