package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dunamismax/chat-relay/internal/chat"
	"github.com/dunamismax/chat-relay/pkg/logger"
)

// TCPConn 把一条原始 TCP 连接适配成面向行的 chat.Conn
type TCPConn struct {
	conn net.Conn
	r    *bufio.Reader
}

func NewTCPConn(c net.Conn) *TCPConn {
	return &TCPConn{conn: c, r: bufio.NewReader(c)}
}

// ReadLine 逐段读到换行为止，累计超过 MaxLineBytes 立即报错，
// 不给无换行的超长输入无限占内存的机会
func (t *TCPConn) ReadLine() (string, error) {
	var line []byte
	for {
		chunk, err := t.r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxLineBytes {
			return "", ErrLineTooLong
		}
		if err == nil {
			return strings.TrimRight(string(line), "\r\n"), nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return "", err
		}
	}
}

func (t *TCPConn) WriteLine(s string) error {
	_, err := fmt.Fprintln(t.conn, s)
	return err
}

func (t *TCPConn) Close() error { return t.conn.Close() }

func (t *TCPConn) RemoteAddr() string { return t.conn.RemoteAddr().String() }

// TCPServer 每条连接一个协程，接入循环自身不碰任何共享聊天状态
type TCPServer struct {
	Engine *chat.Engine
}

func (s *TCPServer) Name() string { return Tcp }

func (s *TCPServer) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	logger.L().Sugar().Infow("tcp_listen", "addr", addr)
	go func() { <-ctx.Done(); _ = ln.Close() }()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.L().Sugar().Warnw("tcp_accept_error", "err", err)
			continue
		}
		go s.Engine.Serve(NewTCPConn(conn))
	}
}
