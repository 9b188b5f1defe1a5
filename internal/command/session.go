package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/db"
	"github.com/huddlechat/huddle/internal/service"
	"github.com/huddlechat/huddle/internal/types"
)

// session is an open workspace bound to a signed-in member.
type session struct {
	Service   *service.Local
	Member    types.Member
	Workspace types.Workspace
	Config    core.Config
	Log       *logrus.Logger

	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession loads config, opens the workspace database, and joins
// the member named in config (or --as) if not yet present.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := core.LoadConfig()
	if err != nil {
		return nil, err
	}
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.Workspace = ws
	}
	if name, _ := cmd.Flags().GetString("as"); name != "" {
		cfg.Name = name
	}
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("no workspace configured; pass --workspace or run `huddle init`")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("no member name configured; pass --as or set name in config")
	}

	log := newLogger(cfg)

	conn, err := db.OpenDatabase(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	s := &session{Config: cfg, Log: log}
	s.closers = append(s.closers, func() { _ = conn.Close() })

	workspace, err := db.GetWorkspace(conn)
	if err != nil {
		s.Close()
		return nil, err
	}
	if workspace == nil {
		s.Close()
		return nil, fmt.Errorf("workspace %s is not initialized; run `huddle init`", cfg.Workspace)
	}
	s.Workspace = *workspace

	member, err := db.GetMemberByName(conn, cfg.Name)
	if err != nil {
		s.Close()
		return nil, err
	}
	if member == nil {
		joined := types.Member{
			ID:       core.MustGUID("mbr"),
			Name:     cfg.Name,
			Role:     "member",
			JoinedAt: time.Now().UnixMilli(),
		}
		if err := db.InsertMember(conn, joined); err != nil {
			s.Close()
			return nil, err
		}
		member = &joined
		log.WithField("member", joined.ID).Info("joined workspace")
	}
	s.Member = *member

	svc := service.NewLocal(conn, cfg.Workspace, member.ID, log)
	s.Service = svc
	s.closers = append(s.closers, func() { _ = svc.Close() })
	return s, nil
}

func newLogger(cfg core.Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	path := cfg.LogFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.SetOutput(io.Discard)
			return log
		}
		path = filepath.Join(home, ".local", "state", "huddle", "huddle.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	log.SetOutput(f)
	return log
}

// firstChannel returns the workspace's first channel.
func firstChannel(s *session) (types.Channel, error) {
	channels, err := s.Service.ListChannels(context.Background())
	if err != nil {
		return types.Channel{}, err
	}
	if len(channels) == 0 {
		return types.Channel{}, fmt.Errorf("workspace has no channels")
	}
	return channels[0], nil
}
