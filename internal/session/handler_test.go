package session

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math/rand/v2"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
	"tricktable/internal/lobby"
	"tricktable/internal/network"
	"tricktable/internal/services/events"
	"tricktable/internal/store"
)

type testClient struct {
	t      *testing.T
	name   string
	conn   net.Conn
	framer *network.Framer
}

func passwordDigest(pw string) string {
	sum := md5.Sum([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func dial(t *testing.T, addr, name string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	c := &testClient{t: t, name: name, conn: conn, framer: network.NewFramer(conn, network.FramingJSON, 0)}
	c.send(&network.UserLogin{Action: network.NewUser, Username: name, PasswordHashHex: passwordDigest("secret")})
	if resp := c.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseOK {
		t.Fatalf("%s login: %+v", name, resp)
	}
	return c
}

func (c *testClient) send(m network.Message) {
	c.t.Helper()
	frame, err := network.Encode(m)
	if err != nil {
		c.t.Fatal(err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.t.Fatalf("%s write: %v", c.name, err)
	}
}

// await skips envelopes until one of the wanted type arrives.
func (c *testClient) await(want network.MessageType) network.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		frame, err := c.framer.ReadFrame()
		if err != nil {
			c.t.Fatalf("%s waiting for %s: %v", c.name, want, err)
		}
		m, err := network.Decode(frame)
		if err != nil {
			c.t.Fatalf("%s decode %s: %v", c.name, frame, err)
		}
		if m.Type() == want {
			return m
		}
	}
}

func (c *testClient) request(kind network.RequestKind, id int, data map[string]any) {
	c.send(&network.ClientRequest{Request: kind, GameID: id, Data: data})
}

func startServer(t *testing.T) (string, *GameHandler) {
	t.Helper()
	log := zap.NewNop()
	h := NewGameHandler(Config{LobbyTTL: time.Minute, HouseRules: lobby.DefaultHouseRules()}, log,
		WithRand(rand.New(rand.NewPCG(5, 6))))
	hub := network.NewHub(h, network.HubConfig{Tick: 5 * time.Millisecond, FramesPerTick: 4}, log)
	srv := network.NewServer(hub, NewAuthenticator(store.NewMemory(), log), network.ServerConfig{Framing: network.FramingJSON}, log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	go srv.Serve(ctx, ln)
	return ln.Addr().String(), h
}

func TestLobbyToGame(t *testing.T) {
	addr, h := startServer(t)
	ann := dial(t, addr, "Ann")
	bob := dial(t, addr, "Bob")
	cy := dial(t, addr, "Cy")
	dee := dial(t, addr, "Dee")

	ann.request(network.RequestNewLobby, 0, map[string]any{"GameType": "hearts", "Seat": 0})
	ls := ann.await(network.TypeLobbyStatus).(*network.LobbyStatus)
	if ls.Players[0] == nil || *ls.Players[0] != "Ann" || ls.LobbyReady {
		t.Fatalf("lobby status %+v", ls)
	}
	id := ls.GameID

	bob.request(network.RequestAvailableGames, 0, nil)
	list := bob.await(network.TypeGameList).(*network.GameList)
	if len(list.Lobbies) != 1 || list.Lobbies[0].ID != id || list.Lobbies[0].GameType != engine.Hearts {
		t.Fatalf("game list %+v", list)
	}

	bob.request(network.RequestJoinLobby, id, map[string]any{"Seat": 0})
	if resp := bob.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseFail {
		t.Fatalf("joining a taken seat: %+v", resp)
	}

	bob.request(network.RequestJoinLobby, id, map[string]any{"Seat": 1})
	bob.await(network.TypeLobbyStatus)
	cy.request(network.RequestJoinLobby, id, map[string]any{"Seat": 2})
	cy.await(network.TypeLobbyStatus)
	dee.request(network.RequestJoinLobby, id, map[string]any{"Seat": 3})

	statuses := map[int]*network.GameStatus{}
	for seat, c := range []*testClient{ann, bob, cy, dee} {
		st := c.await(network.TypeGameStatus).(*network.GameStatus)
		if st.GameID != id {
			t.Fatalf("game id %d, want the lobby's %d", st.GameID, id)
		}
		for other := 0; other < engine.NumSeats; other++ {
			if st.HandSizes[other] != 13 {
				t.Fatalf("hand size %d", st.HandSizes[other])
			}
			if other != seat && len(st.Hands[other]) != 0 {
				t.Fatalf("seat %d sees seat %d's hand", seat, other)
			}
		}
		if len(st.Hands[seat]) != 13 {
			t.Fatalf("seat %d hand has %d cards", seat, len(st.Hands[seat]))
		}
		statuses[seat] = st
	}
	if statuses[0].CurrentPlayer != engine.East {
		t.Fatalf("current player %d", statuses[0].CurrentPlayer)
	}

	ann.send(&network.GamePlay{GameID: id, Player: "ann", Card: statuses[0].Hands[0][0]})
	if resp := ann.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseFail {
		t.Fatalf("out of turn play: %+v", resp)
	}

	bob.send(&network.GamePlay{GameID: id, Player: "ann", Card: statuses[1].Hands[1][0]})
	if resp := bob.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseUnauthorized {
		t.Fatalf("playing for another player: %+v", resp)
	}

	played := statuses[1].Hands[1][0]
	bob.send(&network.GamePlay{GameID: id, Player: "Bob", Card: played})
	st := cy.await(network.TypeGameStatus).(*network.GameStatus)
	if got := st.PlayedCardsBySeat[engine.East]; got == nil || !got.Equal(played) {
		t.Fatalf("played cards %v, want %s from East", st.PlayedCardsBySeat, played)
	}
	if st.CurrentPlayer != engine.South || st.HandSizes[engine.East] != 12 {
		t.Fatalf("after one play: current %d, east holds %d", st.CurrentPlayer, st.HandSizes[engine.East])
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		l := h.Directory().Snapshot()
		if len(l.Games) == 1 && len(l.Lobbies) == 0 && l.Sessions == 4 {
			if view, ok := l.View(id); !ok || len(view.Hands[0]) != 0 {
				t.Fatalf("directory should hold a spectator view")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("directory never caught up: %+v", l)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestIllegalBidReturnsAdvisory(t *testing.T) {
	addr, _ := startServer(t)
	clients := []*testClient{dial(t, addr, "n"), dial(t, addr, "e"), dial(t, addr, "s"), dial(t, addr, "w")}
	clients[0].request(network.RequestNewLobby, 0, map[string]any{"GameType": 2})
	id := clients[0].await(network.TypeLobbyStatus).(*network.LobbyStatus).GameID
	for seat, c := range clients {
		c.request(network.RequestJoinLobby, id, map[string]any{"Seat": seat})
		if seat < 3 {
			c.await(network.TypeLobbyStatus)
		}
	}
	east := clients[engine.East]
	st := east.await(network.TypeGameStatus).(*network.GameStatus)
	if len(st.CenterActionCards) != 4 {
		t.Fatalf("east should see the kitty and three bids, got %v", st.CenterActionCards)
	}

	east.send(&network.GamePlay{GameID: id, Player: "e", Card: card.NewAction(card.ActionNameTrump, card.Club)})
	st = east.await(network.TypeGameStatus).(*network.GameStatus)
	if st.CurrentPlayer != engine.East || !strings.Contains(st.CurrentGameStatus, "illegal play") {
		t.Fatalf("rejected bid should keep the turn and advise: %+v", st)
	}
}

type recorder struct{ kinds []events.Kind }

func (r *recorder) Publish(e events.Event) { r.kinds = append(r.kinds, e.Kind) }
func (r *recorder) Close() error           { return nil }

func TestReaping(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := &recorder{}
	h := NewGameHandler(Config{LobbyTTL: 15 * time.Minute}, zap.NewNop(),
		WithEvents(rec), WithClock(func() time.Time { return start }))

	l, err := lobby.New(h.allocID(), engine.Hearts, lobby.DefaultHouseRules(), start)
	if err != nil {
		t.Fatal(err)
	}
	h.lobbies[l.ID] = l

	players := [engine.NumSeats]engine.Player{
		engine.NewPlayer("a"), engine.NewPlayer("b"), engine.NewPlayer("c"), engine.NewPlayer("d"),
	}
	table, err := lobby.NewTable(h.allocID(), engine.Euchre, players, lobby.DefaultHouseRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	h.games[table.ID()] = &game{table: table, started: start, finished: start.Add(time.Minute)}
	running, err := lobby.NewTable(h.allocID(), engine.Hearts, players, lobby.DefaultHouseRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	h.games[running.ID()] = &game{table: running, started: start}
	h.dirty = true

	h.OnTick(start.Add(10 * time.Minute))
	if l := h.Directory().Snapshot(); len(l.Lobbies) != 1 || len(l.Games) != 2 {
		t.Fatalf("nothing should be reaped yet: %+v", l)
	}

	h.OnTick(start.Add(16 * time.Minute))
	snap := h.Directory().Snapshot()
	if len(snap.Lobbies) != 0 || len(snap.Games) != 1 || snap.Games[0].ID != running.ID() {
		t.Fatalf("after ttl: %+v", snap)
	}
	if len(rec.kinds) != 2 {
		t.Fatalf("events %v", rec.kinds)
	}
}

func TestLeaveLobby(t *testing.T) {
	addr, _ := startServer(t)
	ann := dial(t, addr, "Ann")
	bob := dial(t, addr, "Bob")

	ann.request(network.RequestNewLobby, 0, map[string]any{"GameType": "euchre", "Seat": 0})
	id := ann.await(network.TypeLobbyStatus).(*network.LobbyStatus).GameID
	bob.request(network.RequestJoinLobby, id, map[string]any{"Seat": 1})
	bob.await(network.TypeLobbyStatus)

	bob.request(network.RequestLeaveLobby, id, nil)
	if resp := bob.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseOK {
		t.Fatalf("leave: %+v", resp)
	}
	for {
		ls := ann.await(network.TypeLobbyStatus).(*network.LobbyStatus)
		if ls.Players[1] == nil {
			if ls.Players[0] == nil || ls.LobbyReady {
				t.Fatalf("lobby after leave: %+v", ls)
			}
			break
		}
	}

	bob.request(network.RequestLeaveLobby, id, nil)
	if resp := bob.await(network.TypeServerResponse).(*network.ServerResponse); resp.ResponseCode != network.ResponseFail {
		t.Fatalf("leaving twice: %+v", resp)
	}
}
