package command

import (
	"testing"

	"github.com/dunamismax/chat-relay/internal/chat"
	"github.com/dunamismax/chat-relay/internal/registry"
)

func TestRegistryExecute_Basic(t *testing.T) {
	rooms := registry.NewRooms(nil)
	reg := NewRegistry(rooms)
	// 注册一个简单命令
	err := reg.Register(&Command{
		Name: "echo",
		Help: "echo text",
		Handler: func(ctx *Context) error {
			return ctx.Client.Send("ok:" + ctx.Raw)
		},
	})
	if err != nil {
		t.Fatalf("register err: %v", err)
	}

	c := chat.NewClient("c1", 4)

	handled, err := reg.Run(c, "/echo hi")
	if !handled || err != nil {
		t.Fatalf("execute failed: handled=%v err=%v", handled, err)
	}
	select {
	case s := <-c.Outgoing():
		if s != "ok:/echo hi" {
			t.Fatalf("unexpected resp: %q", s)
		}
	default:
		t.Fatalf("no output queued")
	}
}

func TestRegistryExecute_NotACommand(t *testing.T) {
	reg := NewRegistry(registry.NewRooms(nil))
	handled, err := reg.Run(chat.NewClient("c1", 4), "plain text")
	if handled || err != nil {
		t.Fatalf("plain text should not be handled: handled=%v err=%v", handled, err)
	}
}

func TestRegistryExecute_Unknown(t *testing.T) {
	reg := NewRegistry(registry.NewRooms(nil))
	handled, err := reg.Run(chat.NewClient("c1", 4), "/nope")
	if !handled || err == nil {
		t.Fatalf("unknown command should be handled with error: handled=%v err=%v", handled, err)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := NewRegistry(registry.NewRooms(nil))
	cmd := &Command{Name: "dup", Help: "x", Handler: func(*Context) error { return nil }}
	if err := reg.Register(cmd); err != nil {
		t.Fatalf("first register err: %v", err)
	}
	if err := reg.Register(&Command{Name: "dup", Help: "y", Handler: func(*Context) error { return nil }}); err == nil {
		t.Fatalf("duplicate register should fail")
	}
}

func TestRegistry_AliasConflictLeavesRegistryUntouched(t *testing.T) {
	reg := NewRegistry(registry.NewRooms(nil))
	if err := reg.Register(&Command{Name: "first", Aliases: []string{"f"}, Help: "x", Handler: func(*Context) error { return nil }}); err != nil {
		t.Fatalf("first register err: %v", err)
	}

	// 第二条命令的别名撞车，整条注册都要回绝
	err := reg.Register(&Command{Name: "second", Aliases: []string{"s", "f"}, Help: "y", Handler: func(*Context) error { return nil }})
	if err == nil {
		t.Fatalf("alias conflict should fail")
	}
	if _, ok := reg.Get("second"); ok {
		t.Fatalf("conflicting command name must not be registered")
	}
	if _, ok := reg.Get("s"); ok {
		t.Fatalf("conflicting command aliases must not be registered")
	}
	if cmd, ok := reg.Get("f"); !ok || cmd.Name != "first" {
		t.Fatalf("existing alias should still resolve to first, got %v ok=%v", cmd, ok)
	}
	if n := len(reg.List()); n != 1 {
		t.Fatalf("list should keep one command, got %d", n)
	}
}

func TestBuiltinQuitReturnsSentinel(t *testing.T) {
	reg := NewRegistry(registry.NewRooms(nil))
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("builtins err: %v", err)
	}
	_, err := reg.Run(chat.NewClient("c1", 4), "/quit")
	if err != chat.ErrSessionQuit {
		t.Fatalf("expect ErrSessionQuit, got %v", err)
	}
	// 别名同样生效
	_, err = reg.Run(chat.NewClient("c2", 4), "/exit")
	if err != chat.ErrSessionQuit {
		t.Fatalf("expect ErrSessionQuit via alias, got %v", err)
	}
}

func TestBuiltinWhoListsRoomMembers(t *testing.T) {
	rooms := registry.NewRooms(nil)
	reg := NewRegistry(rooms)
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("builtins err: %v", err)
	}

	me := chat.NewClient("c1", 4)
	me.Name, me.Room = "alice", "General"
	if err := rooms.Join("General", "alice", me); err != nil {
		t.Fatalf("join err: %v", err)
	}

	handled, err := reg.Run(me, "/who")
	if !handled || err != nil {
		t.Fatalf("who failed: handled=%v err=%v", handled, err)
	}
	select {
	case s := <-me.Outgoing():
		if s != "Online in General: alice" {
			t.Fatalf("unexpected who output: %q", s)
		}
	default:
		t.Fatalf("no output queued")
	}
}
