package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"github.com/soulbound/soulbound-server/internal/server"
)

var (
	addrFlag     = flag.String("addr", "localhost:8080", "server address")
	nameFlag     = flag.String("name", "", "display name")
	passwordFlag = flag.String("password", "", "join password")
)

func main() {
	flag.Parse()

	name := *nameFlag
	if name == "" {
		name, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your name").Show()
		pterm.Println()
	}

	query := url.Values{"name": {strings.TrimSpace(name)}}
	if *passwordFlag != "" {
		query.Set("password", *passwordFlag)
	}
	u := url.URL{Scheme: "ws", Host: *addrFlag, Path: "/ws", RawQuery: query.Encode()}

	spinner, _ := pterm.DefaultSpinner.Start("Connecting to " + u.Host + "...")
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("Connected")
	defer conn.Close()

	ui := newScreen()
	// The connection allows one writer; the read loop asks main to refresh.
	refresh := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg server.ServerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				pterm.Warning.Printfln("connection closed: %v", err)
				return
			}
			if ui.handle(msg) {
				select {
				case refresh <- struct{}{}:
				default:
				}
			}
		}
	}()

	printHelp()
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-done:
			return
		case <-refresh:
			if err := conn.WriteJSON(server.ClientMessage{Type: server.MessageView}); err != nil {
				pterm.Error.Printfln("send failed: %v", err)
				return
			}
		case line, ok := <-input:
			if !ok {
				return
			}
			msg, quit, err := parseCommand(line)
			if quit {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
				return
			}
			if err != nil {
				pterm.Error.Println(err.Error())
				continue
			}
			if msg == nil {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				pterm.Error.Printfln("send failed: %v", err)
				return
			}
		}
	}
}

// parseCommand turns a typed line into a request. A nil message with no
// error means nothing to send.
func parseCommand(line string) (*server.ClientMessage, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "play", "p":
		if len(fields) < 2 {
			return nil, false, fmt.Errorf("usage: play <hand index> [target id]")
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false, fmt.Errorf("invalid hand index %q", fields[1])
		}
		msg := &server.ClientMessage{Type: server.MessagePlayCard, HandIndex: idx}
		if len(fields) > 2 {
			msg.TargetID = fields[2]
		}
		return msg, false, nil
	case "end", "e":
		return &server.ClientMessage{Type: server.MessageEndTurn}, false, nil
	case "view", "v":
		return &server.ClientMessage{Type: server.MessageView}, false, nil
	case "help", "h", "?":
		printHelp()
		return nil, false, nil
	case "quit", "q", "exit":
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unknown command %q (type help)", fields[0])
	}
}

func printHelp() {
	pterm.DefaultSection.Println("Commands")
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"play <i> [target]", "play the card at hand index i"},
		{"end", "end your turn"},
		{"view", "refresh the table"},
		{"quit", "leave the game"},
	}).Render()
}
