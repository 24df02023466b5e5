// brickscene converts LDraw brick models into glTF scenes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/brickscene/internal/config"
	"github.com/Faultbox/brickscene/internal/logger"
	"github.com/Faultbox/brickscene/pkg/ldraw"
)

var (
	configPath  string
	libraryPath string
	logFilePath string
	debugMode   bool

	// cfg is the merged configuration, set before any subcommand runs.
	cfg *config.Config
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brickscene",
		Short: "LDraw model converter",
		Long: `brickscene converts LDraw models (.ldr, .mpd, .dat and Studio .io
archives) into glTF 2.0 scenes.

Settings load from brickscene.yaml in the working directory, falling
back to the user config directory. Flags override both.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath, config.Overrides{
				Debug:        debugMode,
				LibraryPath:  libraryPath,
				LogFile:      logFilePath,
				InstanceMode: instanceMode,
				StudType:     studType,
				Resolution:   resolution,
				SceneScale:   sceneScale,
				Format:       outputFormat,
				NoGap:        noGap,
				NoWeld:       noWeld,
			})
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return err
			}
			ldraw.SetLogger(logger.Log)
			logger.Sugar.Debugf("Config: %+v", cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: brickscene.yaml, then the user config)")
	root.PersistentFlags().StringVar(&libraryPath, "library", "", "LDraw library root (default: auto-discover)")
	root.PersistentFlags().StringVar(&logFilePath, "log-file", "", "Also log to this file, with rotation")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newColorsCmd())
	return root
}

// resolveLibrary returns the configured library root, discovering the
// standard install locations when none is set.
func resolveLibrary() (string, error) {
	if cfg.Library.Path != "" {
		return cfg.Library.Path, nil
	}
	if path := ldraw.FindLibrary(); path != "" {
		logger.Info("using LDraw library", zap.String("path", path))
		return path, nil
	}
	return "", fmt.Errorf("no LDraw library found, pass --library or set library.path in the config")
}
