package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/ledge/internal/dock"
	"github.com/1broseidon/ledge/internal/runtimepath"
)

// Server handles IPC requests from clients and pushes dock events to
// subscribed connections. It implements dock.Notifier, so it is created
// before the dock and attached to it afterwards.
type Server struct {
	socketPath   string
	listener     net.Listener
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex

	dockMu sync.RWMutex
	dock   *dock.Dock

	subMu       sync.Mutex
	subscribers map[net.Conn]*subscriber
}

// subscriber serializes writes to one subscribed connection: pushed events
// and command replies share the wire.
type subscriber struct {
	conn net.Conn
	mu   sync.Mutex
}

func (s *subscriber) writeLine(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(data)
	return err
}

var _ dock.Notifier = (*Server)(nil)

// NewServer creates a new IPC server
func NewServer() (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		startTime:   time.Now(),
		subscribers: make(map[net.Conn]*subscriber),
	}, nil
}

// AttachDock installs the dock the server reports on. Commands received
// before attachment are rejected.
func (s *Server) AttachDock(d *dock.Dock) {
	s.dockMu.Lock()
	defer s.dockMu.Unlock()
	s.dock = d
}

func (s *Server) attachedDock() *dock.Dock {
	s.dockMu.RLock()
	defer s.dockMu.RUnlock()
	return s.dock
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection. Most commands are
// request/response; SUBSCRIBE turns the connection into an event sink that
// stays open until the peer disconnects.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	for {
		// Read the request (expect JSON on a single line)
		data, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("IPC read error: %v", err)
			}
			return
		}

		// Parse request
		req, err := ParseRequest(data)
		if err != nil {
			s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
			return
		}

		if req.Command == CommandSubscribe {
			s.handleSubscribe(conn, reader)
			return
		}

		// Handle command
		resp := s.handleCommand(req)

		// Send response
		respData, err := resp.Marshal()
		if err != nil {
			log.Printf("Failed to marshal response: %v", err)
			return
		}

		respData = append(respData, '\n')
		if _, err := conn.Write(respData); err != nil {
			log.Printf("Failed to send response: %v", err)
			return
		}
	}
}

// handleSubscribe acknowledges the subscription, registers the connection
// as an event sink, and blocks until the peer disconnects.
func (s *Server) handleSubscribe(conn net.Conn, reader *bufio.Reader) {
	resp, _ := NewOKResponse(nil)
	respData, _ := resp.Marshal()
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to acknowledge subscription: %v", err)
		return
	}

	sub := &subscriber{conn: conn}
	s.subMu.Lock()
	s.subscribers[conn] = sub
	s.subMu.Unlock()
	log.Printf("IPC: subscriber connected (%d active)", s.subscriberCount())

	defer func() {
		s.subMu.Lock()
		delete(s.subscribers, conn)
		s.subMu.Unlock()
		log.Printf("IPC: subscriber disconnected (%d active)", s.subscriberCount())
	}()

	// Subscribers may still issue requests on the same connection; replies
	// are interleaved with pushed events.
	for {
		data, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		req, err := ParseRequest(data)
		if err != nil {
			errResp := NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
			if errData, merr := errResp.Marshal(); merr == nil {
				sub.writeLine(append(errData, '\n'))
			}
			continue
		}
		resp := s.handleCommand(req)
		respData, err := resp.Marshal()
		if err != nil {
			log.Printf("Failed to marshal response: %v", err)
			continue
		}
		respData = append(respData, '\n')
		if err := sub.writeLine(respData); err != nil {
			return
		}
	}
}

func (s *Server) subscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers)
}

// Emit pushes an event to every subscribed connection. A connection that
// fails a write is dropped. The first delivery failure is returned so the
// emitting side can log it.
func (s *Server) Emit(event string, payload any) error {
	payloadData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	data, err := json.Marshal(Event{Event: event, Payload: payloadData})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	s.subMu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	var firstErr error
	for _, sub := range subs {
		if err := sub.writeLine(data); err != nil {
			s.subMu.Lock()
			delete(s.subscribers, sub.conn)
			s.subMu.Unlock()
			sub.conn.Close()
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to deliver %s: %w", event, err)
			}
		}
	}
	return firstErr
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	d := s.attachedDock()
	if d == nil {
		return NewErrorResponse("daemon is still starting up")
	}

	switch req.Command {
	case CommandRequestAllOpenApps:
		return s.handleRequestAllOpenApps(d)
	case CommandGetStatus:
		return s.handleGetStatus(d)
	case CommandRestoreTaskbar:
		return s.handleRestoreTaskbar(d)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleRequestAllOpenApps replays the full registry to subscribers as a
// single add-multiple-open-apps event.
func (s *Server) handleRequestAllOpenApps(d *dock.Dock) *Response {
	if err := d.EmitAllOpenApps(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to publish open apps: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(d *dock.Dock) *Response {
	status := StatusData{
		TrackedWindows: d.Registry().Len(),
		Overlapped:     d.Overlap().Overlapped(),
		DockHidden:     d.Hidden(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleRestoreTaskbar puts the native taskbars back without stopping the
// daemon. Manual recovery for when the shell and the dock disagree.
func (s *Server) handleRestoreTaskbar(d *dock.Dock) *Response {
	log.Println("IPC: Received RESTORE_TASKBAR command")

	if err := d.Suppressor().Restore(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to restore taskbar: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	s.subMu.Lock()
	for conn := range s.subscribers {
		conn.Close()
	}
	s.subscribers = make(map[net.Conn]*subscriber)
	s.subMu.Unlock()

	os.Remove(s.socketPath)
}
