package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/b/tabline/pkg/logging"
)

// maxLine bounds one message; alert snapshots are small.
const maxLine = 1024 * 1024

// ClientInfo tracks a subscribed bar
type ClientInfo struct {
	Conn  net.Conn
	Since time.Time
}

// Server relays pipe messages between the processes of one session
type Server struct {
	socketPath string
	pidPath    string
	lock       *flock.Flock
	listener   net.Listener
	clients    map[string]*ClientInfo
	conns      map[net.Conn]struct{}
	clientsMu  sync.RWMutex
	done       chan struct{}
	wg         sync.WaitGroup

	// OnPipe, when set, is called for every relayed message with the number
	// of subscribers it was delivered to.
	OnPipe func(sender string, p PipePayload, delivered int)
}

// NewServer creates a bus for a tmux session
func NewServer(session string) *Server {
	return NewServerAt(SocketPath(session), PidPath(session))
}

// NewServerAt creates a bus on explicit socket and pidfile paths
func NewServerAt(socketPath, pidPath string) *Server {
	return &Server{
		socketPath: socketPath,
		pidPath:    pidPath,
		clients:    make(map[string]*ClientInfo),
		conns:      make(map[net.Conn]struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening for client connections
func (s *Server) Start() error {
	if err := s.claimPidfile(); err != nil {
		return err
	}

	// Remove stale socket if exists (safe now that we own the pidfile)
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		s.releasePidfile()
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	s.listener = listener
	logging.Info(logging.CatDaemon, "bus listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// claimPidfile takes an exclusive lock on the pidfile and records our pid in
// it. The lock is released by the kernel when the process dies, so a file
// left behind by a crashed bus never blocks a new one.
func (s *Server) claimPidfile() error {
	lock := flock.New(s.pidPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock pidfile: %w", err)
	}
	if !ok {
		data, _ := os.ReadFile(s.pidPath)
		return fmt.Errorf("bus already running with pid %s", strings.TrimSpace(string(data)))
	}
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		lock.Unlock()
		return fmt.Errorf("write pidfile: %w", err)
	}
	s.lock = lock
	return nil
}

func (s *Server) releasePidfile() {
	os.Remove(s.pidPath)
	if s.lock != nil {
		s.lock.Unlock()
	}
}

// Stop shuts down the server
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.clientsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	clear(s.clients)
	s.clientsMu.Unlock()
	s.wg.Wait()
	os.Remove(s.socketPath)
	s.releasePidfile()
}

// ClientCount returns the number of subscribed clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// SocketPath returns the socket path
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			logging.Warn(logging.CatDaemon, "accept failed", "error", err)
			continue
		}
		s.clientsMu.Lock()
		select {
		case <-s.done:
			s.clientsMu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.clientsMu.Unlock()
		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

// handleClient processes messages from a client
func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.clientsMu.Lock()
		delete(s.conns, conn)
		s.clientsMu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	var clientID string

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			logging.Warn(logging.CatDaemon, "malformed bus message", "error", err)
			continue
		}

		switch msg.Type {
		case MsgSubscribe:
			if msg.ClientID == "" {
				logging.Warn(logging.CatDaemon, "subscribe without client id")
				continue
			}
			clientID = msg.ClientID
			s.clientsMu.Lock()
			s.clients[clientID] = &ClientInfo{Conn: conn, Since: time.Now()}
			s.clientsMu.Unlock()
			logging.Debug(logging.CatDaemon, "client subscribed", "client", clientID)

		case MsgUnsubscribe:
			s.remove(clientID, conn)
			return

		case MsgPipe:
			if msg.Pipe == nil {
				logging.Warn(logging.CatDaemon, "pipe message without payload", "client", msg.ClientID)
				continue
			}
			sender := msg.ClientID
			if sender == "" {
				sender = clientID
			}
			n := s.relay(sender, msg)
			if s.OnPipe != nil {
				s.OnPipe(sender, *msg.Pipe, n)
			}

		case MsgPing:
			s.sendMessage(conn, Message{Type: MsgPong})
		}
	}

	s.remove(clientID, conn)
}

func (s *Server) remove(clientID string, conn net.Conn) {
	if clientID == "" {
		return
	}
	s.clientsMu.Lock()
	if c, ok := s.clients[clientID]; ok && c.Conn == conn {
		delete(s.clients, clientID)
	}
	s.clientsMu.Unlock()
}

// relay forwards msg to every subscriber except sender and returns how many
// it reached.
func (s *Server) relay(sender string, msg Message) int {
	msg.ClientID = sender
	s.clientsMu.RLock()
	targets := make([]net.Conn, 0, len(s.clients))
	for id, c := range s.clients {
		if id != sender {
			targets = append(targets, c.Conn)
		}
	}
	s.clientsMu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := s.sendMessage(conn, msg); err != nil {
			logging.Warn(logging.CatDaemon, "relay failed", "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// sendMessage sends a message to a client
func (s *Server) sendMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
