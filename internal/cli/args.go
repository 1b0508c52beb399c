package cli

import (
	"fmt"
	"time"
)

// Args represents the top-level command structure
type Args struct {
	ConfigFile *string `arg:"--config-file" help:"Config file (default ~/.config/clipsync/config.yaml)"`
	DBPath     *string `arg:"--db" help:"Database file (overrides config)"`
	Verbose    bool    `arg:"-v,--verbose" help:"Log debug output"`
	Quiet      bool    `arg:"--quiet" help:"Only log errors"`

	Copy     *CopyCmd     `arg:"subcommand:copy" help:"Record text as a local copy"`
	Receive  *ReceiveCmd  `arg:"subcommand:receive" help:"Record a push message from another device"`
	List     *ListCmd     `arg:"subcommand:list" help:"List clip history"`
	Get      *GetCmd      `arg:"subcommand:get" help:"Print a clip by index"`
	Fav      *FavCmd      `arg:"subcommand:fav" help:"Mark a clip as favorite"`
	Delete   *DeleteCmd   `arg:"subcommand:delete" help:"Delete clips by index"`
	Label    *LabelCmd    `arg:"subcommand:label" help:"Manage labels"`
	Sweep    *SweepCmd    `arg:"subcommand:sweep" help:"Apply the retention policy now"`
	Backup   *BackupCmd   `arg:"subcommand:backup" help:"Upload a backup"`
	Restore  *RestoreCmd  `arg:"subcommand:restore" help:"Replace local data with a backup"`
	Sync     *SyncCmd     `arg:"subcommand:sync" help:"Merge a backup into local data and upload the result"`
	Backups  *BackupsCmd  `arg:"subcommand:backups" help:"List backups"`
	Settings *SettingsCmd `arg:"subcommand:settings" help:"Manage stored settings"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage the config file"`
	Watch    *WatchCmd    `arg:"subcommand:watch" help:"Record clipboard changes until interrupted"`
}

// CopyCmd represents 'clipsync copy'. Text comes from the argument, the
// clipboard or stdin, in that order.
type CopyCmd struct {
	Text      *string `arg:"positional" help:"Text to record (optional)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Read from clipboard"`
}

// ReceiveCmd represents 'clipsync receive'
type ReceiveCmd struct {
	Payload *string `arg:"positional" help:"Push message JSON (default stdin)"`
}

// ListCmd represents 'clipsync list'
type ListCmd struct {
	Limit     int    `arg:"-n,--limit" help:"Maximum number of items"`
	Favorites bool   `arg:"-f,--favorites" help:"Only favorites"`
	Label     string `arg:"-l,--label" help:"Only items with this label"`
	Query     string `arg:"-s,--search" help:"Case-insensitive text search"`
}

// GetCmd represents 'clipsync get'
type GetCmd struct {
	Index     int  `arg:"positional,required" help:"History index (0=newest)"`
	Clipboard bool `arg:"-c,--clipboard" help:"Copy to clipboard instead of printing"`
}

// FavCmd represents 'clipsync fav'
type FavCmd struct {
	Index int  `arg:"positional,required" help:"History index"`
	Off   bool `arg:"--off" help:"Remove the favorite mark"`
}

// DeleteCmd represents 'clipsync delete'
type DeleteCmd struct {
	Indices []int `arg:"positional,required" help:"History indices"`
}

// LabelCmd represents 'clipsync label'
type LabelCmd struct {
	Add    *LabelAddCmd    `arg:"subcommand:add" help:"Create a label"`
	Rename *LabelRenameCmd `arg:"subcommand:rename" help:"Rename a label"`
	Delete *LabelDeleteCmd `arg:"subcommand:delete" help:"Delete a label"`
	List   *LabelListCmd   `arg:"subcommand:list" help:"List labels"`
	Tag    *LabelTagCmd    `arg:"subcommand:tag" help:"Attach a label to a clip"`
	Untag  *LabelTagCmd    `arg:"subcommand:untag" help:"Detach a label from a clip"`
}

type LabelAddCmd struct {
	Name string `arg:"positional,required"`
}

type LabelRenameCmd struct {
	Name    string `arg:"positional,required"`
	NewName string `arg:"positional,required"`
}

type LabelDeleteCmd struct {
	Name string `arg:"positional,required"`
}

type LabelListCmd struct{}

type LabelTagCmd struct {
	Index int    `arg:"positional,required" help:"History index"`
	Name  string `arg:"positional,required" help:"Label name"`
}

type SweepCmd struct{}

type BackupCmd struct{}

// RestoreCmd represents 'clipsync restore'. Without an id the latest
// recorded backup is used.
type RestoreCmd struct {
	ID *string `arg:"positional" help:"Backup id (optional)"`
}

// SyncCmd represents 'clipsync sync'
type SyncCmd struct {
	ID *string `arg:"positional" help:"Backup id (optional)"`
}

type BackupsCmd struct{}

// SettingsCmd represents 'clipsync settings'
type SettingsCmd struct {
	Get  *KeyCmd      `arg:"subcommand:get" help:"Get a setting"`
	Set  *KeyValueCmd `arg:"subcommand:set" help:"Set a setting"`
	List *ListKeysCmd `arg:"subcommand:list" help:"List settings"`
}

// ConfigCmd represents 'clipsync config'
type ConfigCmd struct {
	Get  *KeyCmd      `arg:"subcommand:get" help:"Get a config value"`
	Set  *KeyValueCmd `arg:"subcommand:set" help:"Set a config value"`
	List *ListKeysCmd `arg:"subcommand:list" help:"List config values"`
}

type KeyCmd struct {
	Key string `arg:"positional,required"`
}

type KeyValueCmd struct {
	Key   string `arg:"positional,required"`
	Value string `arg:"positional,required"`
}

type ListKeysCmd struct{}

// WatchCmd represents 'clipsync watch'
type WatchCmd struct {
	SweepInterval  time.Duration `arg:"--sweep-interval" default:"24h" help:"Period between retention sweeps"`
	BackupInterval time.Duration `arg:"--backup-interval" help:"Period between automatic backups (0 disables)"`
}

// Description returns the program description
func (Args) Description() string {
	return "clipsync - clipboard history with labels, retention and backup sync"
}

// Version returns the program version
func (Args) Version() string {
	return "clipsync 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  echo "hello" | clipsync copy     # Record from stdin
  clipsync copy -c                 # Record the clipboard
  clipsync list -n 10              # Ten newest clips
  clipsync get -c 1                # Copy second clip to clipboard
  clipsync label tag 0 work        # Label the newest clip
  clipsync settings set storage_duration week
  clipsync watch --backup-interval 1h`
}

// HasCommand reports whether a subcommand was given.
func (args *Args) HasCommand() bool {
	return args.Copy != nil || args.Receive != nil || args.List != nil || args.Get != nil ||
		args.Fav != nil || args.Delete != nil || args.Label != nil || args.Sweep != nil ||
		args.Backup != nil || args.Restore != nil || args.Sync != nil || args.Backups != nil ||
		args.Settings != nil || args.Config != nil || args.Watch != nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Verbose && args.Quiet {
		return fmt.Errorf("cannot specify both --verbose and --quiet")
	}
	switch {
	case args.Copy != nil:
		return args.Copy.Validate()
	case args.Get != nil:
		return validateIndex(args.Get.Index)
	case args.Fav != nil:
		return validateIndex(args.Fav.Index)
	case args.Delete != nil:
		for _, i := range args.Delete.Indices {
			if err := validateIndex(i); err != nil {
				return err
			}
		}
	case args.List != nil:
		if args.List.Limit < 0 {
			return fmt.Errorf("limit must be non-negative")
		}
	case args.Watch != nil:
		if args.Watch.SweepInterval <= 0 {
			return fmt.Errorf("sweep interval must be positive")
		}
		if args.Watch.BackupInterval < 0 {
			return fmt.Errorf("backup interval must be non-negative")
		}
	}
	return nil
}

// Validate validates copy command arguments
func (c *CopyCmd) Validate() error {
	if c.Text != nil && c.Clipboard {
		return fmt.Errorf("cannot specify both text and clipboard input")
	}
	return nil
}

func validateIndex(i int) error {
	if i < 0 {
		return fmt.Errorf("index must be non-negative")
	}
	return nil
}
