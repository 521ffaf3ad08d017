package command

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dunamismax/chat-relay/internal/chat"
	"github.com/dunamismax/chat-relay/internal/observe"
	"github.com/dunamismax/chat-relay/internal/registry"
)

type Context struct {
	Client *chat.Client
	Rooms  *registry.Rooms
	Args   []string
	Raw    string
}

type HandlerFunc func(ctx *Context) error

type Command struct {
	Name    string
	Aliases []string
	Help    string
	Handler HandlerFunc
}

// Registry 斜杠命令注册表。命令只回给请求者，永不广播。
type Registry struct {
	mu     sync.RWMutex
	rooms  *registry.Rooms
	byName map[string]*Command
	list   []*Command
}

func NewRegistry(rooms *registry.Rooms) *Registry {
	return &Registry{
		rooms:  rooms,
		byName: make(map[string]*Command),
		list:   make([]*Command, 0),
	}
}

func (r *Registry) Register(cmd *Command) (err error) {
	if cmd == nil {
		return errors.New("command is nil")
	}
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" {
		return errors.New("command name is empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("command name must not contain '/':%s", name)
	}
	keys := []string{name}
	for _, item := range cmd.Aliases {
		alias := strings.ToLower(strings.TrimSpace(item))
		if alias == "" {
			continue
		}
		keys = append(keys, alias)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// 先整体查重再写入，任何冲突都不会留下半注册的命令
	for _, k := range keys {
		if _, exists := r.byName[k]; exists {
			if k == name {
				return fmt.Errorf("command %s already registered", name)
			}
			return fmt.Errorf("command alias %s already registered", k)
		}
	}
	for _, k := range keys {
		r.byName[k] = cmd
	}
	r.list = append(r.list, cmd)
	return nil
}

func (r *Registry) Get(name string) (*Command, bool) {
	k := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[k]
	return cmd, ok
}

func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, len(r.list))
	copy(out, r.list)
	return out
}

// Run 实现 chat.CommandRunner，由会话循环调用
func (r *Registry) Run(c *chat.Client, raw string) (handled bool, err error) {
	return r.Execute(raw, &Context{Client: c, Rooms: r.rooms})
}

func (r *Registry) Execute(raw string, ctx *Context) (handled bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return false, nil
	}
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return true, nil
	}
	cmdName := strings.TrimPrefix(parts[0], "/")
	cmd, ok := r.Get(cmdName)
	if !ok {
		observe.IncCommandError("not_found")
		return true, fmt.Errorf("Unknown command: /%s (type /help for the list)", cmdName)
	}
	ctx.Args = parts[1:]
	ctx.Raw = raw
	observe.IncCommand(cmd.Name)
	if err := cmd.Handler(ctx); err != nil {
		if !errors.Is(err, chat.ErrSessionQuit) {
			observe.IncCommandError("handler")
		}
		return true, err
	}
	return true, nil
}
