package lobby

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/command"
	"github.com/lu-zhengda/aliases/internal/domain"
	"github.com/lu-zhengda/aliases/internal/logging"
	"github.com/lu-zhengda/aliases/internal/metrics"
)

type stubPermissions map[string]bool

func (p stubPermissions) Permission(_ context.Context, player, node string) (bool, bool, error) {
	if player == "broken" {
		return false, false, errors.New("database is locked")
	}
	v, ok := p[strings.ToLower(player)+"/"+node]
	return v, ok, nil
}

type stubResolver struct{}

func (stubResolver) ResolveAsync(_ context.Context, username string, done func(domain.LookupResult)) {
	go done(domain.LookupResult{Username: username, Outcome: domain.OutcomeInvalidUsername})
}

type testLobby struct {
	server *Server
	addr   string
	reg    *prometheus.Registry
	cancel context.CancelFunc
	done   chan error
}

func startLobby(t *testing.T, perms PermissionSource) *testLobby {
	t.Helper()
	return startLobbyWith(t, Options{Permissions: perms})
}

func startLobbyWith(t *testing.T, opts Options) *testLobby {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	d := command.NewDispatcher(m)
	opts.Logger = logging.Discard()
	opts.Metrics = m
	srv, err := New(d, opts)
	require.NoError(t, err)
	require.NoError(t, d.Register(command.NewAliasesCommand(stubResolver{}, command.AliasesOptions{
		Permission:        command.DefaultPermission,
		PermissionDefault: true,
	})))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	tl := &testLobby{server: srv, addr: ln.Addr().String(), reg: reg, cancel: cancel, done: make(chan error, 1)}
	go func() { tl.done <- srv.Serve(ctx, ln) }()
	t.Cleanup(tl.stop)
	return tl
}

func (tl *testLobby) stop() {
	tl.cancel()
	select {
	case <-tl.done:
	case <-time.After(5 * time.Second):
	}
}

type client struct {
	t       *testing.T
	conn    net.Conn
	r       *bufio.Reader
	pending string
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) send(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(c.t, err)
}

// expect reads until want has been seen and returns the output up to and
// including it. Anything after want is kept for the next call.
func (c *client) expect(want string) string {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	buf := make([]byte, 256)
	for !strings.Contains(c.pending, want) {
		n, err := c.r.Read(buf)
		c.pending += string(buf[:n])
		if err != nil {
			c.t.Fatalf("waiting for %q: %v (read %q)", want, err, c.pending)
		}
	}
	i := strings.Index(c.pending, want) + len(want)
	out := c.pending[:i]
	c.pending = c.pending[i:]
	return out
}

func (c *client) join(name string) {
	c.t.Helper()
	c.expect(namePrompt)
	c.send(name)
	c.expect(name + " joined the lobby")
}

func assertPlayersGauge(t *testing.T, reg *prometheus.Registry, n string) {
	t.Helper()
	expected := `
# HELP aliases_players_online Players currently connected to the lobby.
# TYPE aliases_players_online gauge
aliases_players_online ` + n + `
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "aliases_players_online"))
}

func waitForPlayers(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Players()) == n }, 3*time.Second, 10*time.Millisecond)
}

func TestLobby_JoinAndChat(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	bob := dial(t, tl.addr)
	bob.join("bob_2")
	alice.expect("bob_2 joined the lobby")

	bob.send("hello there")
	alice.expect("<bob_2> hello there")

	assert.Equal(t, []string{"Alice", "bob_2"}, tl.server.Players())
	assertPlayersGauge(t, tl.reg, "2")
}

func TestLobby_RejectsBadNames(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")

	c := dial(t, tl.addr)
	c.expect(namePrompt)
	c.send("ab")
	c.expect(msgBadName)
	c.send("no spaces")
	c.expect(msgBadName)
	c.send("ALICE")
	c.expect(msgNameTaken)
	c.send("Carol")
	c.expect("Carol joined the lobby")
}

func TestLobby_Who(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	bob := dial(t, tl.addr)
	bob.join("Bob")

	bob.send("/who")
	bob.expect("Online: Alice, Bob")
}

func TestLobby_Complete(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	notch := dial(t, tl.addr)
	notch.join("Notch")

	alice.send("/complete aliases n")
	alice.expect("Notch")

	alice.send("/complete wh")
	alice.expect("who")
}

func TestLobby_UnknownCommand(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	alice.send("/dance")
	alice.expect("Unknown command")
}

func TestLobby_AliasesDeliversReport(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	alice.send("/aliases nobody")
	alice.expect(chat.MsgInvalidUsername)

	alice.send("/aliases")
	alice.expect("Usage: /aliases <username>")
}

func TestLobby_PermissionDenied(t *testing.T) {
	tl := startLobby(t, stubPermissions{"alice/" + command.DefaultPermission: false})

	alice := dial(t, tl.addr)
	alice.join("Alice")
	alice.send("/aliases Notch")
	alice.expect("Unknown command")
}

func TestLobby_PermissionStoreErrorFallsBackToDefault(t *testing.T) {
	tl := startLobby(t, stubPermissions{})

	c := dial(t, tl.addr)
	c.join("broken")
	c.send("/aliases nobody")
	c.expect(chat.MsgInvalidUsername)
}

func TestLobby_Quit(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	waitForPlayers(t, tl.server, 1)

	alice.send("/quit")
	alice.expect("Bye!")
	waitForPlayers(t, tl.server, 0)
	assertPlayersGauge(t, tl.reg, "0")
}

func TestLobby_ShutdownClosesSessions(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	pending := dial(t, tl.addr)
	pending.expect(namePrompt)

	tl.cancel()
	select {
	case err := <-tl.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Empty(t, tl.server.Players())
}

func TestLobby_PlainOutputHasNoEscapes(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	alice.send("/who")
	out := alice.expect("Online:")
	assert.NotContains(t, out, "\x1b[")
}

func TestLobby_LongLineKeepsSession(t *testing.T) {
	tl := startLobby(t, nil)

	alice := dial(t, tl.addr)
	alice.join("Alice")
	alice.send(strings.Repeat("y", 3*maxLineLength))
	alice.expect(msgLineTooLong)

	alice.send("/who")
	alice.expect("Online: Alice")
	assert.Equal(t, []string{"Alice"}, tl.server.Players())
}

func TestLobby_LongNameLineRepromptsName(t *testing.T) {
	tl := startLobby(t, nil)

	c := dial(t, tl.addr)
	c.expect(namePrompt)
	c.send(strings.Repeat("n", 2*maxLineLength))
	c.expect(msgLineTooLong)
	c.expect(namePrompt)
	c.send("Carol")
	c.expect("Carol joined the lobby")
}

func TestReadLine(t *testing.T) {
	long := strings.Repeat("x", 64)
	r := bufio.NewReaderSize(strings.NewReader("hi\r\n"+long+"\nafter\n"), 16)

	line, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "hi", line)

	_, err = readLine(r)
	assert.ErrorIs(t, err, errLineTooLong)

	line, err = readLine(r)
	require.NoError(t, err)
	assert.Equal(t, "after", line)

	_, err = readLine(r)
	assert.ErrorIs(t, err, io.EOF)
}

func newPipeSession(t *testing.T, s *Server, name string) (*session, net.Conn) {
	t.Helper()
	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	return &session{name: name, server: s, conn: local}, remote
}

func TestSession_WriteTimesOutAndDisconnects(t *testing.T) {
	srv, err := New(command.NewDispatcher(nil), Options{Logger: logging.Discard(), WriteTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	sess, _ := newPipeSession(t, srv, "Stuck")

	start := time.Now()
	sess.writeLine("nobody is reading")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, sess.dead.Load())

	// Later writes return straight away.
	start = time.Now()
	sess.writeLine("still nobody")
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestServer_BroadcastDoesNotBlockJoin(t *testing.T) {
	srv, err := New(command.NewDispatcher(nil), Options{Logger: logging.Discard(), WriteTimeout: 5 * time.Second})
	require.NoError(t, err)
	stuck, _ := newPipeSession(t, srv, "Stuck")
	srv.sessions["stuck"] = stuck

	go srv.broadcast(chat.Text("hello"))
	require.Eventually(t, func() bool {
		if stuck.writeMu.TryLock() {
			stuck.writeMu.Unlock()
			return false
		}
		return true
	}, time.Second, time.Millisecond, "broadcast never started writing")

	carol, _ := newPipeSession(t, srv, "")
	joined := make(chan string, 1)
	go func() { joined <- srv.join(carol, "Carol") }()
	select {
	case reason := <-joined:
		assert.Empty(t, reason)
	case <-time.After(time.Second):
		t.Fatal("join blocked behind a broadcast to a stalled player")
	}
	assert.Equal(t, []string{"Carol", "Stuck"}, srv.Players())
}

func TestLobby_StalledReaderIsDisconnected(t *testing.T) {
	tl := startLobbyWith(t, Options{WriteTimeout: 200 * time.Millisecond})

	stuck := dial(t, tl.addr)
	stuck.join("Stuck")
	bob := dial(t, tl.addr)
	bob.join("Bob")

	// Bob drains his own output; Stuck never reads again.
	go io.Copy(io.Discard, bob.conn)
	stop := make(chan struct{})
	flooded := make(chan struct{})
	go func() {
		defer close(flooded)
		line := []byte(strings.Repeat("z", 200) + "\n")
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := bob.conn.Write(line); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		for _, p := range tl.server.Players() {
			if p == "Stuck" {
				return false
			}
		}
		return true
	}, 15*time.Second, 20*time.Millisecond, "stalled player was never dropped")
	close(stop)
	<-flooded

	carol := dial(t, tl.addr)
	carol.join("Carol")
	assert.Equal(t, []string{"Bob", "Carol"}, tl.server.Players())
}
