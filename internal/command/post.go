package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huddlechat/huddle/internal/dispatch"
	"github.com/huddlechat/huddle/internal/types"
	"github.com/huddlechat/huddle/internal/upload"
)

// printNotifier reports dispatcher outcomes on the terminal.
type printNotifier struct {
	out *cobra.Command
}

func (p *printNotifier) Success(text string) {
	fmt.Fprintln(p.out.OutOrStdout(), text)
}

func (p *printNotifier) Failure(text string) {
	fmt.Fprintln(p.out.ErrOrStderr(), text)
}

// promptConfirm is the yes/no gate used by destructive commands.
func promptConfirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// NewPostCmd sends one message from the command line.
func NewPostCmd() *cobra.Command {
	var channelName string
	var imagePath string

	cmd := &cobra.Command{
		Use:   "post <body>...",
		Short: "Post a message to a channel",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			channel, err := resolveChannel(s, channelName)
			if err != nil {
				return err
			}

			var image *dispatch.Image
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return err
				}
				image = &dispatch.Image{Data: data}
			}

			d := dispatch.New(s.Service, upload.NewTransport(), &printNotifier{out: cmd}, nil, promptConfirm, s.Log)
			return d.Send(cmd.Context(), types.ChannelScope(channel.ID), strings.Join(args, " "), image)
		},
	}

	cmd.Flags().StringVar(&channelName, "channel", "", "channel name (defaults to the first channel)")
	cmd.Flags().StringVar(&imagePath, "image", "", "attach an image file")
	return cmd
}

func resolveChannel(s *session, name string) (types.Channel, error) {
	if name == "" {
		return firstChannel(s)
	}
	channels, err := s.Service.ListChannels(context.Background())
	if err != nil {
		return types.Channel{}, err
	}
	name = strings.TrimPrefix(name, "#")
	for _, c := range channels {
		if c.Name == name {
			return c, nil
		}
	}
	return types.Channel{}, fmt.Errorf("no channel named %s", name)
}
