package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func main() {
	serverAddr := flag.String("server", "localhost:8080", "Service host:port")
	room := flag.String("room", "", "Room code to join (empty creates a fresh one)")
	username := flag.String("username", "roomclient", "Display name")
	listenFor := flag.Duration("listen", 30*time.Second, "How long to stay in the room")
	flag.Parse()

	roomID := *room
	if roomID == "" {
		created, err := createRoom(*serverAddr)
		if err != nil {
			log.Fatalf("Failed to create room: %v", err)
		}
		roomID = created
		log.Printf("Created room %s", roomID)
	}

	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to %s", u.String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				log.Printf("Read ended: %v", err)
				return
			}
			log.Printf("<- %s: %s", env.Event, env.Data)
		}
	}()

	join := outbound{Event: "join_room", Data: map[string]string{"room_id": roomID, "username": *username}}
	if err := conn.WriteJSON(join); err != nil {
		log.Fatalf("Failed to join room: %v", err)
	}

	// Let the join settle before chatting.
	time.Sleep(500 * time.Millisecond)
	msg := outbound{Event: "message", Data: map[string]string{"room_id": roomID, "message": "hello from roomclient"}}
	if err := conn.WriteJSON(msg); err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
		return
	case <-interrupt:
		log.Println("Interrupted, leaving room")
	case <-time.After(*listenFor):
		log.Println("Done listening, leaving room")
	}

	leave := outbound{Event: "leave_room", Data: map[string]string{"room_id": roomID}}
	_ = conn.WriteJSON(leave)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

func createRoom(serverAddr string) (string, error) {
	resp, err := http.Post("http://"+serverAddr+"/api/create_room", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %s: %s", resp.Status, body)
	}

	var reply struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", err
	}
	return reply.RoomID, nil
}
