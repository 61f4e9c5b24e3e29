package lobby

import (
	"context"
	"strings"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/command"
)

func (s *Server) builtins() []command.Command {
	return []command.Command{
		{
			Name:  "who",
			Usage: "/who",
			Execute: func(_ context.Context, src command.Source, _ []string) int {
				players := src.PlayerNames()
				src.SendFeedback(chat.Text("Online: ").WithColor(chat.Gold).Append(
					chat.Text(strings.Join(players, ", ")).WithColor(chat.White),
				))
				return len(players)
			},
		},
		{
			Name:  "help",
			Usage: "/help",
			Execute: func(_ context.Context, src command.Source, _ []string) int {
				cmds := s.dispatcher.Commands(src)
				msg := chat.Text("Commands:").WithColor(chat.Gold)
				for _, cmd := range cmds {
					msg = msg.Append(chat.Text("\n  " + cmd.Usage).WithColor(chat.Gray))
				}
				src.SendFeedback(msg)
				return len(cmds)
			},
		},
		{
			Name:  "complete",
			Usage: "/complete <partial command>",
			Args:  -1,
			Execute: func(_ context.Context, src command.Source, args []string) int {
				suggestions := s.dispatcher.Complete(src, strings.Join(args, " "))
				if len(suggestions) == 0 {
					src.SendFeedback(chat.Text("No suggestions").WithColor(chat.DarkGray))
					return 0
				}
				src.SendFeedback(chat.Text(strings.Join(suggestions, " ")).WithColor(chat.Aqua))
				return len(suggestions)
			},
		},
		{
			Name:  "quit",
			Usage: "/quit",
			Execute: func(_ context.Context, src command.Source, _ []string) int {
				if sess, ok := src.(*session); ok {
					sess.requestQuit()
				}
				src.SendFeedback(chat.Text("Bye!").WithColor(chat.Gray))
				return 1
			},
		},
	}
}
