// Command sentinelfs mounts a FUSE filesystem that passes operations
// through to an underlying storage directory, rejecting writes that look
// like ransomware output and opportunistically backing up files before
// their first overwrite.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinelfs/cmd"
	"github.com/sentinelfs/sentinelfs/pkg/logging"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel"
	"github.com/sentinelfs/sentinelfs/pkg/sentinel/fusefs"
)

var rootConfiguration struct {
	// debug enables go-fuse's request tracing and Debug-level log output
	// ("-d").
	debug bool
	// allowOther corresponds to "-o allow_other".
	allowOther bool
	// fsName corresponds to "--fsname".
	fsName string
}

var rootCommand = &cobra.Command{
	Use:   "sentinelfs <storage_path> <mount_point> [additional transport flags...]",
	Short: "SentinelFS mounts a write-path ransomware detection filesystem",
	Args:  cobra.MinimumNArgs(2),
	Run:   cmd.Mainify(rootMain),
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.debug, "debug", "d", false, "Enable verbose diagnostics")
	flags.BoolVar(&rootConfiguration.allowOther, "allow-other", false, "Allow other users to access the mount (-o allow_other)")
	flags.StringVar(&rootConfiguration.fsName, "fsname", "", "Filesystem name reported to the OS")

	// Flag parsing stops at the first positional argument, so everything
	// after the mount point is left as arguments and forwarded verbatim to
	// the transport. An unrecognized flag placed before storage_path is
	// rejected.
	flags.SetInterspersed(false)
}

// rootMain is the real entry point, wrapped by cmd.Mainify so that it can
// report a startup failure by returning an error. The shutdown summary runs
// only after a successful mount, once the server has stopped serving.
func rootMain(command *cobra.Command, arguments []string) error {
	storagePath := arguments[0]
	mountPoint := arguments[1]
	transportFlags := arguments[2:]

	level := logging.LevelInfo
	if rootConfiguration.debug {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(level)

	if _, err := os.Stat(storagePath); err != nil {
		return fmt.Errorf("unable to access storage path: %w", err)
	}

	ctx, err := sentinel.New(storagePath, logger)
	if err != nil {
		return fmt.Errorf("unable to initialize SentinelFS: %w", err)
	}

	server, err := fusefs.Mount(ctx, mountPoint, fusefs.MountOptions{
		AllowOther: rootConfiguration.allowOther,
		Debug:      rootConfiguration.debug,
		FsName:     rootConfiguration.fsName,
		RawOptions: transportFlags,
	})
	if err != nil {
		return fmt.Errorf("unable to mount: %w", err)
	}

	logger.Printf("mounted %s at %s", ctx.StorageRoot, mountPoint)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Printf("received shutdown signal, unmounting")
		if err := server.Unmount(); err != nil {
			logger.Warnf("unable to unmount cleanly: %s", err.Error())
		}
	}()

	server.Wait()
	ctx.Shutdown()

	return nil
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
}
