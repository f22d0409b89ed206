package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/daemon"
)

type DebugCmd struct {
	Paths *DebugPathsCmd `cmd:"" help:"Show storage, lockfile and export locations."`
	Dump  *DebugDumpCmd  `cmd:"" help:"Dump a stored blob as JSON."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"backend":  ctx.Config.Storage.Backend,
		"storage":  ctx.Store.Location(),
		"data_dir": ctx.Config.DataDir,
		"lockfile": daemon.LockfilePath(ctx.Config.DataDir),
		"exports":  ctx.Config.ExportDir,
	})
}

type DebugDumpCmd struct {
	What string `arg:"" enum:"schedule,archive" help:"Blob to dump (schedule|archive)."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	key := constants.ScheduleStorageKey
	if cmd.What == "archive" {
		key = constants.ArchiveStorageKey
	}

	raw, ok, err := ctx.Store.Get(context.Background(), key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not stored", key)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Show what is there even when it no longer parses.
		ctx.Println(string(raw))
		return fmt.Errorf("%s is not valid JSON: %w", key, err)
	}
	return printJSON(ctx, v)
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}
