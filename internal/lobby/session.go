package lobby

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lu-zhengda/aliases/internal/chat"
)

// session is one connected player.
type session struct {
	id     uuid.UUID
	name   string
	server *Server
	conn   net.Conn

	writeMu sync.Mutex
	quit    atomic.Bool
	dead    atomic.Bool
}

func (s *session) Name() string { return s.name }

// HasPermission consults the permission store, falling back to def when the
// player has no entry or the store fails.
func (s *session) HasPermission(node string, def bool) bool {
	perms := s.server.opts.Permissions
	if perms == nil {
		return def
	}
	allowed, found, err := perms.Permission(context.Background(), s.name, node)
	if err != nil {
		s.server.log.WithError(err).WithField("player", s.name).Warn("permission lookup failed")
		return def
	}
	if !found {
		return def
	}
	return allowed
}

func (s *session) PlayerNames() []string {
	return s.server.Players()
}

// SendFeedback may be called from any goroutine, including after the
// session has gone. A failed write disconnects the player.
func (s *session) SendFeedback(msg chat.Component) {
	s.writeLine(s.server.render(msg))
}

func (s *session) writeLine(text string) {
	text = strings.ReplaceAll(text, "\n", "\r\n")
	s.writeRaw(text + "\r\n")
}

func (s *session) writeRaw(text string) {
	if s.dead.Load() {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.dead.Load() {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.server.opts.WriteTimeout))
	if _, err := s.conn.Write([]byte(text)); err != nil {
		s.dead.Store(true)
		s.server.log.WithError(err).WithFields(log.Fields{
			"session": s.id,
			"player":  s.name,
		}).Debug("write failed, disconnecting")
		// Unblocks the read loop, which then leaves the lobby.
		s.conn.Close()
	}
}

func (s *session) requestQuit() { s.quit.Store(true) }

func (s *session) quitting() bool { return s.quit.Load() }
