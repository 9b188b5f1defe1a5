package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/db"
	"github.com/huddlechat/huddle/internal/types"
)

// NewInitCmd creates a workspace database with a default channel and
// records it in the user config.
func NewInitCmd() *cobra.Command {
	var name string
	var channel string

	cmd := &cobra.Command{
		Use:   "init <workspace.db>",
		Short: "Create a new workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			conn, err := db.OpenDatabase(path)
			if err != nil {
				return err
			}
			defer conn.Close()

			existing, err := db.GetWorkspace(conn)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("workspace already initialized: %s", existing.Name)
			}

			now := time.Now().UnixMilli()
			workspace := types.Workspace{
				ID:        core.MustGUID("wks"),
				Name:      name,
				JoinCode:  core.MustGUID("join")[5:],
				CreatedAt: now,
			}
			if err := db.InsertWorkspace(conn, workspace); err != nil {
				return err
			}
			if err := db.InsertChannel(conn, types.Channel{
				ID:        core.MustGUID("chn"),
				Name:      channel,
				CreatedAt: now,
			}); err != nil {
				return err
			}

			cfg, err := core.LoadConfig()
			if err != nil {
				return err
			}
			cfg.Workspace = path
			if err := core.SaveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created workspace %q with #%s (join code %s)\n",
				workspace.Name, channel, workspace.JoinCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "workspace", "workspace name")
	cmd.Flags().StringVar(&channel, "channel", "general", "default channel name")
	return cmd
}

// NewChannelsCmd lists and adds channels.
func NewChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			channels, err := s.Service.ListChannels(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range channels {
				fmt.Fprintf(cmd.OutOrStdout(), "#%s\t%s\n", c.Name, c.ID)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			conn, err := db.OpenDatabase(s.Config.Workspace)
			if err != nil {
				return err
			}
			defer conn.Close()

			channel := types.Channel{
				ID:        core.MustGUID("chn"),
				Name:      args[0],
				CreatedAt: time.Now().UnixMilli(),
			}
			if err := db.InsertChannel(conn, channel); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%s\n", channel.Name)
			return nil
		},
	}
	cmd.AddCommand(add)
	return cmd
}
