package command

import (
	"github.com/spf13/cobra"

	"github.com/huddlechat/huddle/internal/chat"
)

// NewChatCmd opens the chat UI.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the workspace chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			return chat.Run(chat.Options{
				Service:   s.Service,
				Member:    s.Member,
				Workspace: s.Workspace,
				Notify:    s.Config.Notify,
				Log:       s.Log,
			})
		},
	}
}
