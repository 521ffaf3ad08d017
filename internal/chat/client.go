package chat

import (
	"errors"
	"sync"
)

var (
	// ErrClientClosed 会话已经关闭，句柄不再接收消息
	ErrClientClosed = errors.New("client closed")
	// ErrSendBufferFull 对端消费太慢，输出缓冲已满
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Client 单个连接的投递句柄。
// 输出通道由所属会话的写协程独占消费，Send 可被任意多个广播方并发调用。
type Client struct {
	ID   string
	Name string
	Room string

	out       chan string
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient 允许指定发送缓冲区大小
func NewClient(id string, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		ID:     id,
		out:    make(chan string, bufferSize),
		closed: make(chan struct{}),
	}
}

// Send 非阻塞写入输出缓冲。
// 句柄已关闭或缓冲已满时返回错误，由调用方（广播引擎）决定如何处置。
func (c *Client) Send(line string) error {
	select {
	case <-c.closed:
		return ErrClientClosed
	default:
	}
	select {
	case c.out <- line:
		return nil
	case <-c.closed:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// Deliver 实现 registry.Handle
func (c *Client) Deliver(line string) error { return c.Send(line) }

// Outgoing 返回只读输出通道，写协程读取并写到网络
func (c *Client) Outgoing() <-chan string { return c.out }

// Close 关闭句柄。不关闭 out 通道，避免并发 Send 撞上已关闭通道。
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// IsClosed 非阻塞判断是否已关闭
func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Done 关闭信号，写协程据此退出
func (c *Client) Done() <-chan struct{} { return c.closed }
