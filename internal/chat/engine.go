package chat

import (
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dunamismax/chat-relay/internal/observe"
	"github.com/dunamismax/chat-relay/internal/registry"
	"github.com/dunamismax/chat-relay/pkg/logger"
)

// ServerName 系统通知的保留发送者标签
const ServerName = "SERVER"

// ErrSessionQuit 命令处理器用它通知会话循环正常退出
var ErrSessionQuit = errors.New("session quit")

// CommandRunner 斜杠命令的执行入口，由 internal/command 实现。
// handled=false 表示这行不是命令，走普通广播路径。
type CommandRunner interface {
	Run(c *Client, raw string) (handled bool, err error)
}

// Limits 单会话与进程级的资源上限
type Limits struct {
	MaxMessageBytes int
	RateLimitCount  int
	RateLimitWindow time.Duration
	MaxSessions     int64
	OutBuffer       int
}

func (l Limits) withDefaults() Limits {
	if l.MaxMessageBytes <= 0 {
		l.MaxMessageBytes = 1024
	}
	if l.RateLimitCount <= 0 {
		l.RateLimitCount = 5
	}
	if l.RateLimitWindow <= 0 {
		l.RateLimitWindow = 10 * time.Second
	}
	if l.MaxSessions <= 0 {
		l.MaxSessions = 100
	}
	if l.OutBuffer <= 0 {
		l.OutBuffer = 256
	}
	return l
}

// Engine 把昵称注册表、房间目录和广播扇出粘在一起。
// 每个连接由独立协程驱动 Serve；Engine 自身只持有共享注册表。
type Engine struct {
	identities *registry.Identities
	rooms      *registry.Rooms
	limits     Limits
	commands   CommandRunner
	slots      *semaphore.Weighted
}

func NewEngine(identities *registry.Identities, rooms *registry.Rooms, limits Limits) *Engine {
	limits = limits.withDefaults()
	return &Engine{
		identities: identities,
		rooms:      rooms,
		limits:     limits,
		slots:      semaphore.NewWeighted(limits.MaxSessions),
	}
}

// SetCommands 注入命令注册表；internal/command 依赖本包，只能在 main 里接线
func (e *Engine) SetCommands(cr CommandRunner) { e.commands = cr }

// Rooms 暴露房间目录给外部协作者（命令、测试）
func (e *Engine) Rooms() *registry.Rooms { return e.rooms }

// Identities 暴露昵称注册表给健康检查接口
func (e *Engine) Identities() *registry.Identities { return e.identities }

// Broadcast 把一条消息扇出给 room 的全部成员，exclude 指定的昵称除外。
// 对单个成员投递失败不会中断其余投递，也不会上抛给发送方；
// 失败的成员被视为已死连接，异步踢出，绝不在发送方调用栈里同步清理。
func (e *Engine) Broadcast(room, sender, text, exclude string) {
	line := "[" + sender + "]: " + text
	members := e.rooms.Members(room)

	var failed []registry.Member
	for _, m := range members {
		if exclude != "" && m.Identity == exclude {
			continue
		}
		if err := m.Handle.Deliver(line); err != nil {
			logger.L().Sugar().Warnw("deliver_failed", "room", room, "to", m.Identity, "err", err)
			observe.IncDeliveryFailure()
			failed = append(failed, m)
		}
	}
	observe.IncMessage(room)

	for _, m := range failed {
		go e.evict(m)
	}
}

// evict 踢出一个投递失败的成员。
// 真实会话的句柄实现 Kick，走完整的注销流程；
// 其它句柄（测试桩等）直接从共享状态移除。
func (e *Engine) evict(m registry.Member) {
	if k, ok := m.Handle.(interface{ Kick() }); ok {
		k.Kick()
		return
	}
	room, ok := e.rooms.Leave(m.Identity)
	e.identities.Release(m.Identity)
	if ok {
		e.Broadcast(room, ServerName, m.Identity+" has left the chat.", "")
	}
}
