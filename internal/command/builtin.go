package command

import (
	"fmt"
	"strings"

	"github.com/dunamismax/chat-relay/internal/chat"
)

// RegisterBuiltins 注册内置命令
func RegisterBuiltins(r *Registry) (err error) {
	if err := r.Register(&Command{
		Name: "help",
		Help: "list available commands",
		Handler: func(ctx *Context) error {
			list := r.List()
			lines := make([]string, 0, len(list))
			for _, c := range list {
				aliases := ""
				if len(c.Aliases) > 0 {
					aliases = " (aliases: " + strings.Join(c.Aliases, ", ") + ")"
				}
				lines = append(lines, fmt.Sprintf("/%s - %s%s", c.Name, c.Help, aliases))
			}
			return ctx.Client.Send(strings.Join(lines, "\n"))
		},
	}); err != nil {
		return err
	}

	if err := r.Register(&Command{
		Name:    "quit",
		Aliases: []string{"exit"},
		Help:    "leave the chat",
		Handler: func(ctx *Context) error {
			return chat.ErrSessionQuit
		},
	}); err != nil {
		return err
	}

	if err := r.Register(&Command{
		Name: "who",
		Help: "list users in your room",
		Handler: func(ctx *Context) error {
			names := ctx.Rooms.MemberNames(ctx.Client.Room)
			return ctx.Client.Send("Online in " + ctx.Client.Room + ": " + strings.Join(names, ", "))
		},
	}); err != nil {
		return err
	}
	return nil
}
