package transport

import (
	"context"
	"errors"
)

const (
	Tcp       = "tcp"
	WebSocket = "websocket"
)

// MaxLineBytes 单帧/单行的硬上限，纯粹的传输层防护。
// 业务层的 1024 字节软上限由会话循环负责（超限仅警告不断开）。
const MaxLineBytes = 64 * 1024

// 传输层错误定义
var (
	ErrLineTooLong    = errors.New("transport: line exceeds frame limit")
	ErrNonTextMessage = errors.New("transport: non-text websocket message")
)

// Transport 统一的传输层接口。
// 负责特定协议(TCP/WebSocket)的监听与连接适配，
// 把每条物理连接变成一个面向行的 chat.Conn 并交给引擎。
type Transport interface {
	Name() string
	Start(ctx context.Context, addr string) error
}
