package chat

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/dunamismax/chat-relay/internal/observe"
	"github.com/dunamismax/chat-relay/pkg/logger"
)

// Conn 面向行的传输抽象，TCP 和 WebSocket 适配器各自实现。
// 会话状态机只写一次，对着这个接口跑。
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

const (
	msgNamePrompt   = "Enter your desired username:"
	msgServerFull   = "Server is full, please try again later."
	msgInvalidRoom  = "Invalid choice, defaulting to '%s'."
	msgWelcome      = "Welcome to %s, %s! Type /help to list commands."
	msgTooLong      = "Message too long (limit %d bytes), not sent."
	msgRateLimited  = "You are sending messages too fast, message dropped."
	msgJoinedRoom   = "%s has joined %s."
	msgLeftChat     = "%s has left the chat."
	msgAssignedName = "Your username is: %s"
)

// session 一条连接的完整生命周期：
// 握手（取名、选房间）→ 收发循环 → 注销。
// teardown 无论从哪条路径退出都恰好执行一次。
// 注销可能由写协程在握手进行中触发，name/room 和 done 由 mu 保护：
// run 每次提交共享状态（占名、入房）后都要复查 done，输掉竞争就自行撤销。
type session struct {
	eng    *Engine
	conn   Conn
	client *Client

	mu   sync.Mutex
	name string
	room string
	done bool

	once sync.Once
}

// Deliver 实现 registry.Handle，广播引擎经它投递
func (s *session) Deliver(line string) error { return s.client.Send(line) }

// Kick 供广播引擎异步踢出投递失败的会话
func (s *session) Kick() { s.teardown() }

// Serve 在调用方协程里驱动一条连接走完整个生命周期。
// 超过会话上限的连接在进入握手前就被告知并关闭。
func (e *Engine) Serve(conn Conn) {
	if !e.slots.TryAcquire(1) {
		observe.IncRejectedSession()
		logger.L().Sugar().Warnw("session_rejected", "remote", conn.RemoteAddr(), "reason", "server full")
		_ = conn.WriteLine(msgServerFull)
		_ = conn.Close()
		return
	}

	s := &session{
		eng:    e,
		conn:   conn,
		client: NewClient(uuid.New().String(), e.limits.OutBuffer),
	}
	observe.AddOnline(1)
	go s.writePump()
	defer s.teardown()
	s.run()
}

// writePump 独占消费输出缓冲并写网络。
// 句柄是串行资源：所有发往同一连接的写都经过这里，不会交错。
func (s *session) writePump() {
	c := s.client
	for {
		select {
		case line := <-c.out:
			if err := s.conn.WriteLine(line); err != nil {
				logger.L().Sugar().Debugw("write_error", "client", c.ID, "err", err)
				s.teardown()
				return
			}
		case <-c.Done():
			// 关闭后尽力冲掉已排队的通知再退出
			for {
				select {
				case line := <-c.out:
					if s.conn.WriteLine(line) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *session) run() {
	e := s.eng
	c := s.client

	// NAMING
	_ = c.Send(msgNamePrompt)
	requested, err := s.conn.ReadLine()
	if err != nil {
		return
	}
	name := e.identities.Reserve(requested)
	s.mu.Lock()
	if s.done {
		// 注销已抢先执行，归还刚占下的昵称
		s.mu.Unlock()
		e.identities.Release(name)
		return
	}
	s.name = name
	s.mu.Unlock()
	c.Name = name
	_ = c.Send(fmt.Sprintf(msgAssignedName, name))

	// ROOM_SELECT
	_ = c.Send(e.rooms.Prompt())
	choice, err := s.conn.ReadLine()
	if err != nil {
		return
	}
	room, ok := e.rooms.ResolveSelection(choice)
	if !ok {
		_ = c.Send(fmt.Sprintf(msgInvalidRoom, room))
	}
	if err := e.rooms.Join(room, name, s); err != nil {
		logger.L().Sugar().Errorw("join_failed", "name", name, "room", room, "err", err)
		return
	}
	s.mu.Lock()
	if s.done {
		// 注销落在入房窗口里：它看到的还是未入房状态，这里撤销入房
		s.mu.Unlock()
		e.rooms.Leave(name)
		e.identities.Release(name)
		return
	}
	s.room = room
	s.mu.Unlock()
	c.Room = room
	_ = c.Send(fmt.Sprintf(msgWelcome, room, name))
	e.Broadcast(room, ServerName, fmt.Sprintf(msgJoinedRoom, name, room), name)
	logger.L().Sugar().Infow("session_joined", "name", name, "room", room, "remote", s.conn.RemoteAddr())

	// ACTIVE
	limiter := newSlidingWindow(e.limits.RateLimitCount, e.limits.RateLimitWindow)
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.L().Sugar().Debugw("read_error", "name", name, "err", err)
			}
			return
		}
		// 缓冲里的行可能在注销后才被读出，注销后一律不再处理
		if c.IsClosed() {
			return
		}
		line = strings.TrimSpace(stripControl(line))
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			return
		}
		if strings.HasPrefix(line, "/") && e.commands != nil {
			handled, err := e.commands.Run(c, line)
			if errors.Is(err, ErrSessionQuit) {
				return
			}
			if handled {
				if err != nil {
					_ = c.Send(err.Error())
				}
				continue
			}
		}
		if len(line) > e.limits.MaxMessageBytes {
			observe.IncOversized()
			_ = c.Send(fmt.Sprintf(msgTooLong, e.limits.MaxMessageBytes))
			continue
		}
		if !limiter.Allow() {
			observe.IncRateLimited()
			_ = c.Send(msgRateLimited)
			continue
		}
		e.Broadcast(room, name, line, name)
	}
}

// teardown 注销会话，所有退出路径共用且只执行一次。
// 先把句柄从共享状态移除，再关底层连接，最后向原房间广播离开通知。
func (s *session) teardown() {
	s.once.Do(func() {
		e := s.eng
		s.mu.Lock()
		s.done = true
		name := s.name
		s.mu.Unlock()
		room := ""
		joined := false
		if name != "" {
			room, joined = e.rooms.Leave(name)
			e.identities.Release(name)
		}
		s.client.Close()
		_ = s.conn.Close()
		if joined {
			e.Broadcast(room, ServerName, fmt.Sprintf(msgLeftChat, name), "")
			logger.L().Sugar().Infow("session_left", "name", name, "room", room)
		}
		observe.AddOnline(-1)
		e.slots.Release(1)
	})
}

// stripControl 去掉不可打印控制字符，防终端控制序列注入
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
