package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

// Message IDs mirrored from network/protocol.go.
const (
	msgTypeJoinRandomRoom = 103
	msgTypeGuessWord      = 203
	msgTypeUploadLine     = 204
	msgTypeChat           = 205

	msgTypeDrawLine    = 301
	msgTypeGameStarted = 302
	msgTypeGameEnded   = 303
	msgTypeEnterMsg    = 304
	msgTypeLeaveMsg    = 305
	msgTypeNewHost     = 306
	msgTypeRecMsg      = 307
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	name := "guest"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	roomID := ""

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			payload := message[4:]

			switch msgID {
			case msgTypeJoinRandomRoom:
				var snapshot struct {
					RoomID    string `json:"roomId"`
					IsPlaying bool   `json:"isPlaying"`
					HostID    string `json:"hostId"`
				}
				if err := json.Unmarshal(payload, &snapshot); err == nil {
					roomID = snapshot.RoomID
					log.Printf("Joined room %s (playing=%v, host=%s)", snapshot.RoomID, snapshot.IsPlaying, snapshot.HostID)
				}
			case msgTypeDrawLine:
				log.Printf("Line: %s", payload)
			case msgTypeGameStarted:
				log.Println("Round started, guess away")
			case msgTypeGameEnded:
				log.Printf("Round over: %s", payload)
			case msgTypeEnterMsg:
				log.Printf("Someone joined: %s", payload)
			case msgTypeLeaveMsg:
				log.Printf("Someone left: %s", payload)
			case msgTypeNewHost:
				log.Printf("New host: %s", payload)
			case msgTypeRecMsg:
				log.Printf("Message: %s", payload)
			default:
				log.Printf("Push %d: %s", msgID, payload)
			}
		}
	}()

	if err := send(c, msgTypeJoinRandomRoom, map[string]string{"name": name}); err != nil {
		log.Fatalf("Join failed: %v", err)
	}

	// Stdin loop: "/guess <word>" submits a guess, "/draw" uploads a demo
	// segment, anything else is chat.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			switch {
			case strings.HasPrefix(text, "/guess "):
				send(c, msgTypeGuessWord, map[string]string{
					"roomId": roomID,
					"msg":    strings.TrimPrefix(text, "/guess "),
				})
			case text == "/draw":
				send(c, msgTypeUploadLine, map[string]interface{}{
					"l1": 10.0, "t1": 10.0, "l2": 90.0, "t2": 42.5,
					"c": "#222222", "w": "3",
				})
			default:
				send(c, msgTypeChat, map[string]string{
					"roomId": roomID,
					"msg":    text,
				})
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
