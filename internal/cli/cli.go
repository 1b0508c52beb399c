package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/yiblet/clipsync/internal/backup"
	"github.com/yiblet/clipsync/internal/blob/blobfs"
	"github.com/yiblet/clipsync/internal/clipboard"
	"github.com/yiblet/clipsync/internal/clipboard/sysboard"
	"github.com/yiblet/clipsync/internal/clips"
	"github.com/yiblet/clipsync/internal/codec"
	"github.com/yiblet/clipsync/internal/config"
	"github.com/yiblet/clipsync/internal/logging"
	"github.com/yiblet/clipsync/internal/notify"
	"github.com/yiblet/clipsync/internal/retention"
	"github.com/yiblet/clipsync/internal/settings"
	"github.com/yiblet/clipsync/internal/store"
	"github.com/yiblet/clipsync/internal/store/dbstore"
	"golang.org/x/sync/errgroup"
)

// CLI handles the command-line interface
type CLI struct {
	configManager *config.ConfigManager
	config        *config.Config
	logger        *slog.Logger

	store     store.Store
	bus       *notify.Bus
	settings  *settings.Settings
	clips     *clips.Manager
	sweeper   *retention.Sweeper
	backups   *backup.Orchestrator
	codec     *codec.Zstd
	clipboard clipboard.Clipboard

	in  io.Reader
	out io.Writer
}

// New creates a new CLI instance with default paths
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a new CLI instance. Flags take precedence over the
// config file.
func NewWithArgs(args *Args) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}

	var cm *config.ConfigManager
	if args.ConfigFile != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigFile)
	} else {
		var err error
		if cm, err = config.NewConfigManager(); err != nil {
			return nil, err
		}
	}
	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(os.Stderr, cfg.LogLevel, verbosity(args), args.Quiet)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.ResolvedDatabasePath()
	if err != nil {
		return nil, err
	}
	if args.DBPath != nil {
		dbPath = *args.DBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	bus := notify.NewBus(logger)
	st, err := dbstore.NewSQLiteStore(dbPath,
		dbstore.WithMaxItems(cfg.MaxItems),
		dbstore.WithMaxPages(cfg.MaxPages),
		dbstore.WithNotifier(bus),
		dbstore.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	c, err := newCLI(cm, cfg, logger, st, bus)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

func verbosity(args *Args) int {
	if args.Verbose {
		return 1
	}
	return 0
}

// newCLI wires the services on top of an open store.
func newCLI(cm *config.ConfigManager, cfg *config.Config, logger *slog.Logger, st store.Store, bus *notify.Bus) (*CLI, error) {
	blobDir, err := cfg.ResolvedBlobDir()
	if err != nil {
		return nil, err
	}
	blobs, err := blobfs.New(blobDir)
	if err != nil {
		return nil, err
	}
	z, err := codec.NewZstd()
	if err != nil {
		return nil, err
	}

	s := settings.New(st.Config())
	device := cfg.DeviceNickname
	if device == "" {
		device, _ = os.Hostname()
	}

	return &CLI{
		configManager: cm,
		config:        cfg,
		logger:        logger,
		store:         st,
		bus:           bus,
		settings:      s,
		clips:         clips.NewManager(st, clips.WithDevice(device)),
		sweeper:       retention.NewSweeper(st.Clips(), s, retention.WithLogger(logger)),
		backups: backup.New(st, blobs, z, s,
			backup.WithDevice(backup.Device{Model: "cli", OS: runtime.GOOS, Nickname: device}),
			backup.WithLogger(logger)),
		codec:     z,
		clipboard: sysboard.New(),
		in:        os.Stdin,
		out:       os.Stdout,
	}, nil
}

// Close releases the store and codec.
func (c *CLI) Close() error {
	c.codec.Close()
	return c.store.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Copy != nil:
		return c.executeCopy(args.Copy)
	case args.Receive != nil:
		return c.executeReceive(args.Receive)
	case args.List != nil:
		return c.executeList(args.List)
	case args.Get != nil:
		return c.executeGet(args.Get)
	case args.Fav != nil:
		return c.executeFav(args.Fav)
	case args.Delete != nil:
		return c.executeDelete(args.Delete)
	case args.Label != nil:
		return c.executeLabel(args.Label)
	case args.Sweep != nil:
		return c.executeSweep()
	case args.Backup != nil:
		return c.executeBackup(ctx)
	case args.Restore != nil:
		return c.executeRestore(ctx, args.Restore)
	case args.Sync != nil:
		return c.executeSync(ctx, args.Sync)
	case args.Backups != nil:
		return c.executeBackups(ctx)
	case args.Settings != nil:
		return c.executeSettings(args.Settings)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Watch != nil:
		return c.executeWatch(ctx, args.Watch)
	default:
		return c.executeList(&ListCmd{Limit: 20})
	}
}

// executeCopy handles the 'clipsync copy' command
func (c *CLI) executeCopy(cmd *CopyCmd) error {
	var text string
	switch {
	case cmd.Text != nil:
		text = *cmd.Text
	case cmd.Clipboard:
		data, err := c.clipboard.Read()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(c.in)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		text = string(data)
	}

	item, err := c.clips.Copy(text)
	if err != nil {
		return fmt.Errorf("failed to store content: %w", err)
	}
	fmt.Fprintf(c.out, "Stored: %s\n", clips.Preview(item.Text))
	return nil
}

// executeReceive handles the 'clipsync receive' command
func (c *CLI) executeReceive(cmd *ReceiveCmd) error {
	var payload []byte
	if cmd.Payload != nil {
		payload = []byte(*cmd.Payload)
	} else {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return fmt.Errorf("failed to read push message: %w", err)
		}
		payload = data
	}

	item, err := c.clips.Receive(payload)
	if err != nil {
		return fmt.Errorf("failed to store push message: %w", err)
	}
	fmt.Fprintf(c.out, "Received from %s: %s\n", item.Device, clips.Preview(item.Text))
	return nil
}

// executeList handles the 'clipsync list' command
func (c *CLI) executeList(cmd *ListCmd) error {
	opts := store.ListOptions{
		Limit:         cmd.Limit,
		FavoritesOnly: cmd.Favorites,
		Query:         cmd.Query,
	}
	if cmd.Label != "" {
		label, err := c.store.Labels().GetByName(cmd.Label)
		if err != nil {
			return fmt.Errorf("failed to find label: %w", err)
		}
		opts.LabelID = label.ID
	}

	// Indices always refer to the unfiltered history.
	all, err := c.clips.List(store.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	items, err := c.clips.List(opts)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(c.out, "History is empty.")
		return nil
	}

	index := make(map[string]int, len(all))
	for i, item := range all {
		index[item.Text] = i
	}
	for _, item := range items {
		fmt.Fprintln(c.out, renderItem(index[item.Text], item))
	}
	return nil
}

// executeGet handles the 'clipsync get' command
func (c *CLI) executeGet(cmd *GetCmd) error {
	item, err := c.clips.Get(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get item at index %d: %w", cmd.Index, err)
	}

	if cmd.Clipboard {
		if err := c.clipboard.Write([]byte(item.Text)); err != nil {
			return fmt.Errorf("failed to write to clipboard: %w", err)
		}
		fmt.Fprintf(c.out, "Copied to clipboard: %s\n", clips.Preview(item.Text))
		return nil
	}

	_, err = io.WriteString(c.out, item.Text)
	return err
}

// executeFav handles the 'clipsync fav' command
func (c *CLI) executeFav(cmd *FavCmd) error {
	item, err := c.clips.SetFavorite(cmd.Index, !cmd.Off)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	fmt.Fprintln(c.out, renderItem(cmd.Index, item))
	return nil
}

// executeDelete handles the 'clipsync delete' command
func (c *CLI) executeDelete(cmd *DeleteCmd) error {
	if err := c.clips.Delete(cmd.Indices...); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	fmt.Fprintf(c.out, "Deleted %d item(s).\n", len(cmd.Indices))
	return nil
}

// executeLabel handles the 'clipsync label' command
func (c *CLI) executeLabel(cmd *LabelCmd) error {
	labels := c.store.Labels()

	switch {
	case cmd.Add != nil:
		label, err := labels.Add(cmd.Add.Name)
		if err != nil {
			return fmt.Errorf("failed to add label: %w", err)
		}
		fmt.Fprintf(c.out, "Added label %s\n", renderLabel(*label))
		return nil

	case cmd.Rename != nil:
		label, err := labels.GetByName(cmd.Rename.Name)
		if err != nil {
			return fmt.Errorf("failed to find label: %w", err)
		}
		renamed, err := labels.Rename(*label, cmd.Rename.NewName)
		if err != nil {
			return fmt.Errorf("failed to rename label: %w", err)
		}
		fmt.Fprintf(c.out, "Renamed label %s to %s\n", cmd.Rename.Name, renderLabel(*renamed))
		return nil

	case cmd.Delete != nil:
		label, err := labels.GetByName(cmd.Delete.Name)
		if err != nil {
			return fmt.Errorf("failed to find label: %w", err)
		}
		if err := labels.Delete(*label); err != nil {
			return fmt.Errorf("failed to delete label: %w", err)
		}
		fmt.Fprintf(c.out, "Deleted label %s\n", cmd.Delete.Name)
		return nil

	case cmd.Tag != nil:
		item, err := c.clips.Tag(cmd.Tag.Index, cmd.Tag.Name)
		if err != nil {
			return fmt.Errorf("failed to tag item: %w", err)
		}
		fmt.Fprintln(c.out, renderItem(cmd.Tag.Index, item))
		return nil

	case cmd.Untag != nil:
		item, err := c.clips.Untag(cmd.Untag.Index, cmd.Untag.Name)
		if err != nil {
			return fmt.Errorf("failed to untag item: %w", err)
		}
		fmt.Fprintln(c.out, renderItem(cmd.Untag.Index, item))
		return nil

	default:
		all, err := labels.List()
		if err != nil {
			return fmt.Errorf("failed to list labels: %w", err)
		}
		if len(all) == 0 {
			fmt.Fprintln(c.out, "No labels.")
			return nil
		}
		for _, l := range all {
			fmt.Fprintln(c.out, renderLabel(l))
		}
		return nil
	}
}

// executeSweep handles the 'clipsync sweep' command
func (c *CLI) executeSweep() error {
	deleted, err := c.sweeper.Sweep()
	if err != nil {
		return err
	}
	if deleted {
		fmt.Fprintln(c.out, "Removed expired items.")
	} else {
		fmt.Fprintln(c.out, "Nothing to remove.")
	}
	return nil
}

// executeBackup handles the 'clipsync backup' command
func (c *CLI) executeBackup(ctx context.Context) error {
	id, err := c.backups.Backup(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Backed up as %s\n", id)
	return nil
}

// executeRestore handles the 'clipsync restore' command
func (c *CLI) executeRestore(ctx context.Context, cmd *RestoreCmd) error {
	if err := c.backups.Restore(ctx, deref(cmd.ID)); err != nil {
		return err
	}
	n, err := c.clips.Size()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Restored %d item(s).\n", n)
	return nil
}

// executeSync handles the 'clipsync sync' command
func (c *CLI) executeSync(ctx context.Context, cmd *SyncCmd) error {
	id, err := c.backups.Sync(ctx, deref(cmd.ID))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Synced and backed up as %s\n", id)
	return nil
}

// executeBackups handles the 'clipsync backups' command
func (c *CLI) executeBackups(ctx context.Context) error {
	infos, err := c.backups.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(c.out, "No backups.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintln(c.out, renderBackup(info))
	}
	return nil
}

// executeSettings handles the 'clipsync settings' command
func (c *CLI) executeSettings(cmd *SettingsCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.settings.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get setting: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.settings.Set(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set setting: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	default:
		values, err := c.settings.List()
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}
		c.printValues("Current settings:", values)
		return nil
	}
}

// executeConfig handles the 'clipsync config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	default:
		values, err := c.configManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		c.printValues("Current configuration:", values)
		return nil
	}
}

func (c *CLI) printValues(title string, values map[string]string) {
	fmt.Fprintln(c.out, headerStyle.Render(title))
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(c.out, "  %s = %s\n", keyStyle.Render(key), values[key])
	}
}

// executeWatch handles the 'clipsync watch' command. It records clipboard
// changes, sweeps on an interval and, when configured, backs up on an
// interval, until ctx is cancelled.
func (c *CLI) executeWatch(ctx context.Context, cmd *WatchCmd) error {
	unsubscribe := c.bus.Subscribe(func(e store.Event) {
		c.logger.Debug("Store changed", "entity", e.Entity, "change", e.Change)
	})
	defer unsubscribe()

	sweeper := retention.NewSweeper(c.store.Clips(), c.settings,
		retention.WithInterval(cmd.SweepInterval),
		retention.WithLogger(c.logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	if cmd.BackupInterval > 0 {
		g.Go(func() error {
			c.autoBackupLoop(gctx, cmd.BackupInterval)
			return nil
		})
	}
	g.Go(func() error {
		return clipboard.Follow(gctx, c.clipboard, c.logger, func(text string) error {
			_, err := c.clips.Copy(text)
			return err
		})
	})

	c.logger.Info("Watching clipboard", "sweep_interval", cmd.SweepInterval, "backup_interval", cmd.BackupInterval)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// autoBackupLoop runs AutoBackup on every tick. Failures are logged; a
// disabled auto_backup setting is not a failure.
func (c *CLI) autoBackupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := c.backups.AutoBackup(ctx)
			switch {
			case err == nil:
			case errors.Is(err, backup.ErrBackupDisabled), errors.Is(err, backup.ErrNotSignedIn), errors.Is(err, backup.ErrNoData):
				c.logger.Debug("Skipped automatic backup", "reason", err)
			default:
				c.logger.Warn("Automatic backup failed", "error", err)
			}
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
