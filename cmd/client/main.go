// Command client is a terminal client for the table server's TCP protocol.
package main

import (
	"bufio"
	"crypto/md5"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tricktable/internal/game/card"
	"tricktable/internal/network"
)

const usage = `commands:
  register <user> <password>   create an account and log in
  login <user> <password>
  list                         games and lobbies
  new <hearts|euchre> [seat]   open a lobby, optionally taking a seat
  join <id> <seat>             seats are 0 north, 1 east, 2 south, 3 west
  leave <id>
  lobby <id>
  status <id>
  play <id> <n>                play the n-th card of your hand
  bid <id> <n>                 make the n-th offered bid
  quit`

// client keeps the latest table views so play and bid can refer to cards
// by position.
type client struct {
	conn    net.Conn
	framing network.Framing
	log     *zap.Logger

	mu     sync.Mutex
	user   string
	tables map[int]*network.GameStatus
}

func main() {
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	addr := envOr("TABLE_ADDR", "localhost:7000")
	framing, err := network.ParseFraming(os.Getenv("TABLE_FRAMING"))
	if err != nil {
		logger.Fatal("bad TABLE_FRAMING", zap.Error(err))
	}
	conn, err := dial(addr)
	if err != nil {
		logger.Fatal("cannot connect", zap.String("addr", addr), zap.Error(err))
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n%s\n", addr, usage)

	c := &client{conn: conn, framing: framing, log: logger, tables: make(map[int]*network.GameStatus)}
	done := make(chan struct{})
	go c.readLoop(done)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")
		select {
		case <-done:
			fmt.Println("disconnected")
			return
		case <-interrupt:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := c.handleInput(strings.Fields(line)); quit {
				return
			}
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func dial(addr string) (net.Conn, error) {
	if os.Getenv("TABLE_TLS") != "true" {
		return net.Dial("tcp", addr)
	}
	return tls.Dial("tcp", addr, &tls.Config{
		InsecureSkipVerify: os.Getenv("TABLE_TLS_INSECURE") == "true",
		MinVersion:         tls.VersionTLS12,
	})
}

func (c *client) send(m network.Message) {
	frame, err := network.Encode(m)
	if err != nil {
		c.log.Error("encode", zap.Error(err))
		return
	}
	if err := network.WriteFrame(c.conn, c.framing, frame); err != nil {
		c.log.Error("send failed", zap.Error(err))
	}
}

func (c *client) readLoop(done chan<- struct{}) {
	defer close(done)
	framer := network.NewFramer(c.conn, c.framing, 0)
	for {
		frame, err := framer.ReadFrame()
		if err != nil {
			c.log.Warn("read failed", zap.Error(err))
			return
		}
		m, err := network.Decode(frame)
		if err != nil {
			c.log.Warn("bad envelope from server", zap.Error(err))
			continue
		}
		c.show(m)
	}
}

func (c *client) show(m network.Message) {
	fmt.Println()
	switch msg := m.(type) {
	case *network.ServerResponse:
		fmt.Println(renderResponse(msg))
	case *network.GameList:
		fmt.Println(renderList(msg))
	case *network.LobbyStatus:
		fmt.Println(renderLobby(msg))
	case *network.GameStatus:
		c.mu.Lock()
		c.tables[msg.GameID] = msg
		c.mu.Unlock()
		fmt.Println(renderStatus(msg))
	}
	fmt.Print("> ")
}

func (c *client) handleInput(args []string) bool {
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Println(usage)
	case "register", "login":
		if len(args) != 2 {
			fmt.Println("usage:", cmd, "<user> <password>")
			return false
		}
		action := network.LoginUser
		if cmd == "register" {
			action = network.NewUser
		}
		sum := md5.Sum([]byte(args[1]))
		c.mu.Lock()
		c.user = strings.ToLower(args[0])
		c.mu.Unlock()
		c.send(&network.UserLogin{Action: action, Username: args[0], PasswordHashHex: hex.EncodeToString(sum[:])})
	case "list":
		c.send(&network.ClientRequest{Request: network.RequestAvailableGames})
	case "new":
		if len(args) < 1 {
			fmt.Println("usage: new <hearts|euchre> [seat]")
			return false
		}
		data := map[string]any{"GameType": args[0]}
		if len(args) > 1 {
			data["Seat"] = args[1]
		}
		c.send(&network.ClientRequest{Request: network.RequestNewLobby, Data: data})
	case "join":
		id, ok := intArgs(args, 2)
		if !ok {
			fmt.Println("usage: join <id> <seat>")
			return false
		}
		c.send(&network.ClientRequest{Request: network.RequestJoinLobby, GameID: id[0], Data: map[string]any{"Seat": id[1]}})
	case "leave", "lobby", "status":
		id, ok := intArgs(args, 1)
		if !ok {
			fmt.Println("usage:", cmd, "<id>")
			return false
		}
		kind := map[string]network.RequestKind{
			"leave":  network.RequestLeaveLobby,
			"lobby":  network.RequestLobbyStatus,
			"status": network.RequestGameStatus,
		}[cmd]
		c.send(&network.ClientRequest{Request: kind, GameID: id[0]})
	case "play", "bid":
		n, ok := intArgs(args, 2)
		if !ok {
			fmt.Println("usage:", cmd, "<id> <n>")
			return false
		}
		chosen, err := c.pick(cmd, n[0], n[1])
		if err != nil {
			fmt.Println(err)
			return false
		}
		c.mu.Lock()
		user := c.user
		c.mu.Unlock()
		c.send(&network.GamePlay{GameID: n[0], Player: user, Card: chosen})
	default:
		fmt.Println("unknown command; try help")
	}
	return false
}

// pick resolves a position in the last seen hand or bid list.
func (c *client) pick(cmd string, id, n int) (card.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.tables[id]
	if !ok {
		return card.Card{}, fmt.Errorf("no status for game %d yet; try status %d", id, id)
	}
	var options []card.Card
	if cmd == "bid" {
		options = bids(st)
	} else {
		options = ownHand(st)
	}
	if n < 0 || n >= len(options) {
		return card.Card{}, fmt.Errorf("choose 0-%d", len(options)-1)
	}
	return options[n], nil
}

func intArgs(args []string, n int) ([]int, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
