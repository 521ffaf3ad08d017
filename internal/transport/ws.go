package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dunamismax/chat-relay/internal/chat"
	"github.com/dunamismax/chat-relay/pkg/logger"
)

// wsConn adapts one WebSocket connection to the line-oriented chat.Conn.
// Each text frame carries exactly one chat line.
type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeChan chan struct{}
}

func (w *wsConn) ReadLine() (string, error) {
	mt, data, err := w.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", io.EOF
		}
		return "", err
	}
	// Binary frames have no meaning in this protocol; treat as a fatal
	// decode failure rather than guessing at an encoding.
	if mt != websocket.TextMessage {
		return "", ErrNonTextMessage
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (w *wsConn) WriteLine(line string) error {
	return w.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (w *wsConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close()
		close(w.closeChan)
	})
	return err
}

func (w *wsConn) RemoteAddr() string { return w.conn.RemoteAddr().String() }

// WebSocketServer serves the chat over upgraded HTTP connections.
type WebSocketServer struct {
	Engine      *chat.Engine
	Path        string        // WebSocket endpoint path, defaults to "/chat"
	ReadTimeout time.Duration // idle deadline, refreshed by pongs and reads
}

func (ws *WebSocketServer) Name() string { return WebSocket }

func (ws *WebSocketServer) Start(ctx context.Context, addr string) error {
	if ws.Path == "" {
		ws.Path = "/chat"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(ws.Path, func(w http.ResponseWriter, r *http.Request) {
		ws.handleConnection(w, r)
	})

	logger.L().Sugar().Infow("websocket_listen", "addr", addr, "path", ws.Path)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *WebSocketServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(MaxLineBytes)

	readTimeout := ws.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	sess := &wsConn{conn: conn, closeChan: make(chan struct{})}

	// Periodic ping keeps half-open connections from lingering.
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
			case <-sess.closeChan:
				return
			}
		}
	}()

	ws.Engine.Serve(sess)
}
