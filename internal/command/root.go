// Package command wires the huddle CLI: workspace setup, the chat UI,
// and one-shot posting.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "huddle"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}

// NewRootCmd builds the CLI tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Huddle - terminal team chat",
		Long:          "Huddle is a terminal client for workspace chat: channels, direct conversations, threads, and reactions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("workspace", "", "workspace database path (overrides config)")
	cmd.PersistentFlags().String("as", "", "member display name (overrides config)")

	cmd.AddCommand(
		NewInitCmd(),
		NewChatCmd(),
		NewPostCmd(),
		NewChannelsCmd(),
	)

	return cmd
}
