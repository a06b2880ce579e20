// Command client is a small terminal client for the hub, useful for manual
// testing: it joins as an identity, prints everything the hub pushes and
// lets you send messages from stdin.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wireMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt"`
	IsDeleted  bool   `json:"isDeleted"`
}

var (
	hubURL   string
	identity string
)

func main() {
	root := &cobra.Command{
		Use:   "client",
		Short: "Terminal client for the chat hub",
	}
	root.PersistentFlags().StringVar(&hubURL, "url", "ws://localhost:8080/ws", "hub websocket endpoint")
	root.PersistentFlags().StringVar(&identity, "identity", "", "identity id to join as")
	_ = root.MarkPersistentFlagRequired("identity")

	root.AddCommand(watchCmd(), sendCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Join and print every event pushed by the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := join()
			if err != nil {
				return err
			}
			defer conn.Close()

			go readInput(conn)
			return printEvents(conn)
		},
	}
}

func sendCmd() *cobra.Command {
	var to, content, messageType string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message and wait for the echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := join()
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := sendMessage(conn, to, content, messageType); err != nil {
				return err
			}
			// Wait for the echo carrying the server-assigned id.
			for {
				var env envelope
				if err := conn.ReadJSON(&env); err != nil {
					return err
				}
				if env.Event != "receiveMessage" {
					continue
				}
				var msg wireMessage
				if err := json.Unmarshal(env.Payload, &msg); err != nil {
					return err
				}
				color.Green.Printf("sent %s at %s\n", msg.ID, msg.CreatedAt)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "receiver identity id")
	cmd.Flags().StringVar(&content, "content", "", "message content")
	cmd.Flags().StringVar(&messageType, "type", "text", "message type (text|image)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func join() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(hubURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", hubURL, err)
	}
	if err := writeEvent(conn, "join", map[string]string{"identityId": identity}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func sendMessage(conn *websocket.Conn, to, content, messageType string) error {
	return writeEvent(conn, "sendMessage", map[string]string{
		"senderId":   identity,
		"receiverId": to,
		"content":    content,
		"type":       messageType,
	})
}

func writeEvent(conn *websocket.Conn, event string, payload any) error {
	bytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Event: event, Payload: bytes})
}

// readInput forwards stdin lines as messages: "receiverId: content".
func readInput(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		to, content, found := strings.Cut(scanner.Text(), ":")
		if !found {
			color.Gray.Println("format: receiverId: content")
			continue
		}
		if err := sendMessage(conn, strings.TrimSpace(to), strings.TrimSpace(content), "text"); err != nil {
			color.Red.Printf("send failed: %v\n", err)
			return
		}
	}
}

func printEvents(conn *websocket.Conn) error {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		switch env.Event {
		case "receiveMessage":
			var msg wireMessage
			if err := json.Unmarshal(env.Payload, &msg); err != nil {
				continue
			}
			if msg.SenderID == identity {
				color.Cyan.Printf("[echo] %s -> %s : %s\n", msg.SenderID, msg.ReceiverID, msg.Content)
			} else {
				color.Green.Printf("%s : %s\n", msg.SenderID, msg.Content)
			}
		case "onlineUsers":
			var identities []string
			if err := json.Unmarshal(env.Payload, &identities); err != nil {
				continue
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"online identities"})
			for _, id := range identities {
				table.Append([]string{id})
			}
			table.Render()
		case "typing":
			color.Gray.Println("peer is typing...")
		case "stopTyping":
			color.Gray.Println("peer stopped typing")
		case "messageDeleted":
			color.Yellow.Printf("message deleted: %s\n", string(env.Payload))
		case "messageRead":
			color.Yellow.Printf("message read: %s\n", string(env.Payload))
		default:
			color.Gray.Printf("%s: %s\n", env.Event, string(env.Payload))
		}
	}
}
