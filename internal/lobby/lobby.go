// Package lobby hosts players over a plain TCP line protocol. Each connected
// session is a command.Source, so registered commands run against real
// players.
package lobby

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/command"
	"github.com/lu-zhengda/aliases/internal/metrics"
)

const (
	namePrompt    = "Name: "
	commandPrefix = "/"
	maxLineLength = 256

	defaultWriteTimeout = 10 * time.Second

	msgBadName     = "Names must be 3-16 letters, digits or underscores."
	msgNameTaken   = "That name is already online."
	msgLineTooLong = "Line too long."
)

var (
	validName = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

	errLineTooLong = errors.New("line too long")
)

// PermissionSource looks up stored permission grants. store.PermissionStore
// satisfies it.
type PermissionSource interface {
	Permission(ctx context.Context, player, node string) (allowed, found bool, err error)
}

// Options configures a Server.
type Options struct {
	// Color renders chat components with ANSI escapes; otherwise plain text.
	Color       bool
	Permissions PermissionSource
	// WriteTimeout bounds each write to a player. A player whose write
	// times out is disconnected. Zero means 10s.
	WriteTimeout time.Duration
	Logger      log.FieldLogger
	Metrics     *metrics.Metrics
}

// Server is a lobby of connected players.
type Server struct {
	dispatcher *command.Dispatcher
	opts       Options
	log        log.FieldLogger
	renderer   *lipgloss.Renderer

	mu       sync.RWMutex
	sessions map[string]*session // keyed by lower-cased name
	conns    map[net.Conn]struct{}
	closed   bool

	wg sync.WaitGroup
}

// New creates a lobby and registers its built-in commands on d.
func New(d *command.Dispatcher, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)

	s := &Server{
		dispatcher: d,
		opts:       opts,
		log:        logger.WithField("component", "lobby"),
		renderer:   r,
		sessions:   make(map[string]*session),
		conns:      make(map[net.Conn]struct{}),
	}
	for _, cmd := range s.builtins() {
		if err := d.Register(cmd); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", cmd.Name, err)
		}
	}
	return s, nil
}

// Players returns the names of everyone online, sorted case-insensitively.
func (s *Server) Players() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.sessions))
	for _, sess := range s.sessions {
		names = append(names, sess.name)
	}
	s.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Serve accepts connections on ln until ctx is done, then closes the listener
// and every session and waits for their goroutines.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("lobby listening")

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
		s.closeAll()
	}()
	defer close(stop)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
}

// track registers conn so shutdown can close it. It reports false once the
// server is shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// handle runs one connection: the name prompt, then the read loop.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	sess := &session{
		id:     uuid.New(),
		server: s,
		conn:   conn,
	}
	entry := s.log.WithFields(log.Fields{"session": sess.id, "remote": conn.RemoteAddr().String()})

	reader := bufio.NewReaderSize(conn, maxLineLength)

	for {
		sess.writeRaw(namePrompt)
		line, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			sess.writeLine(msgLineTooLong)
			continue
		}
		if err != nil {
			entry.Debug("connection closed before joining")
			return
		}
		name := strings.TrimSpace(line)
		if reason := s.join(sess, name); reason != "" {
			sess.writeLine(reason)
			continue
		}
		break
	}
	defer s.leave(sess)

	entry = entry.WithField("player", sess.name)
	entry.Info("player joined")
	s.broadcast(chat.Text(sess.name + " joined the lobby").WithColor(chat.Yellow))

	for {
		line, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			sess.SendFeedback(chat.Text(msgLineTooLong).WithColor(chat.Red))
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				entry.WithError(err).Warn("read failed")
			}
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, commandPrefix) {
			s.runCommand(ctx, sess, entry, strings.TrimPrefix(line, commandPrefix))
		} else {
			s.broadcast(chat.Text("<" + sess.name + "> " + line))
		}
		if sess.quitting() {
			break
		}
	}
	entry.Info("player left")
}

// readLine returns the next line from r without its line ending. A line that
// does not fit in r's buffer is discarded up to its newline and reported as
// errLineTooLong, leaving r positioned at the following line.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errLineTooLong
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

func (s *Server) runCommand(ctx context.Context, sess *session, entry log.FieldLogger, line string) {
	_, err := s.dispatcher.Dispatch(ctx, sess, line)
	var unknown *command.UnknownCommandError
	switch {
	case errors.As(err, &unknown):
		sess.SendFeedback(chat.Text("Unknown command. Type /help for a list.").WithColor(chat.Red))
	case err != nil:
		entry.WithError(err).Error("command failed")
	}
}

// join claims name for sess. It returns the reason shown to the player when
// the name is rejected.
func (s *Server) join(sess *session, name string) string {
	if !validName.MatchString(name) {
		return msgBadName
	}
	key := strings.ToLower(name)

	s.mu.Lock()
	if _, taken := s.sessions[key]; taken {
		s.mu.Unlock()
		return msgNameTaken
	}
	sess.name = name
	s.sessions[key] = sess
	s.opts.Metrics.SetPlayersOnline(len(s.sessions))
	s.mu.Unlock()
	return ""
}

func (s *Server) leave(sess *session) {
	s.mu.Lock()
	delete(s.sessions, strings.ToLower(sess.name))
	s.opts.Metrics.SetPlayersOnline(len(s.sessions))
	s.mu.Unlock()

	s.broadcast(chat.Text(sess.name + " left the lobby").WithColor(chat.Yellow))
}

// broadcast sends msg to everyone online. Writes happen outside the lock so
// a slow player cannot stall joins, leaves or /who.
func (s *Server) broadcast(msg chat.Component) {
	s.mu.RLock()
	targets := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.RUnlock()

	for _, sess := range targets {
		sess.SendFeedback(msg)
	}
}

func (s *Server) render(msg chat.Component) string {
	if s.opts.Color {
		return chat.ANSI(msg, s.renderer)
	}
	return chat.Plain(msg)
}
