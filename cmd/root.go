package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilemark/internal/batch"
	"github.com/kiesman99/tilemark/internal/config"
	"github.com/kiesman99/tilemark/internal/logging"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=..."
var version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilemark [flags] image...",
	Short: "Tile a rotated text watermark across images",
	Long: `tilemark covers images with a repeating, semi-transparent, rotated text
watermark. The watermark is rendered once and tiled in a staggered brick
pattern, so it cannot be cropped out of any part of the picture.

Results are always written as PNG. EXIF orientation is applied first.

Examples:
  # Watermark one photo
  tilemark -t "© Example Shop" photo.jpg -o photo.png

  # Write to stdout
  tilemark -t DRAFT scan.png > marked.png

  # Watermark many photos into a directory, four at a time
  tilemark -t "CONFIDENTIAL" --opacity 0.35 --angle 45 -j 4 -o out/ *.jpg

  # Start HTTP server and Telegram webhook
  tilemark serve --port 8080`,
	Args: cobra.ArbitraryArgs,
	// If no subcommand is specified and we have args, mark the files
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runMark(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tilemark.yaml)")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-format", "text", "log format (text|json)")

	// Style options, also the defaults for the server
	pf.String("font", "", "TrueType/OpenType font file (default: embedded Go Regular)")
	pf.Float64("size", 40, "font size in points")
	pf.String("color", "#9C9C9C", "text colour as #RGB, #RRGGBB or #RRGGBBAA")
	pf.Float64("opacity", 0.20, "watermark opacity from 0 to 1")
	pf.Int("spacing", 70, "gap between tiles in pixels")
	pf.Float64("angle", 30, "rotation in degrees, counter-clockwise")
	pf.Float64("row-height", 1.2, "tile canvas height as a multiple of the font size")

	// Marking options
	rootCmd.Flags().StringP("text", "t", "", "watermark text")
	rootCmd.Flags().StringP("output", "o", "", "output file, or directory for several inputs (default: stdout)")
	rootCmd.Flags().IntP("workers", "j", 0, "images marked in parallel (default: number of CPUs)")

	// Bind flags to viper
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("style.font", pf.Lookup("font"))
	viper.BindPFlag("style.size", pf.Lookup("size"))
	viper.BindPFlag("style.color", pf.Lookup("color"))
	viper.BindPFlag("style.opacity", pf.Lookup("opacity"))
	viper.BindPFlag("style.spacing", pf.Lookup("spacing"))
	viper.BindPFlag("style.angle", pf.Lookup("angle"))
	viper.BindPFlag("style.row_height", pf.Lookup("row-height"))
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	cobra.CheckErr(config.LoadDotEnv(".env"))

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tilemark" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tilemark")
	}

	cobra.CheckErr(config.BindEnv(viper.GetViper()))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}
}

// loadConfig returns the validated configuration and a logger built from it
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()), nil
}

func runMark(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	if !cmd.Flags().Changed("text") {
		return fmt.Errorf("watermark text is required (use --text)")
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	style, err := cfg.TileStyle()
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}
	output, _ := cmd.Flags().GetString("output")

	marker, err := batch.NewMarker(text, style, &batch.Options{
		Output:  output,
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"files":   len(args),
		"workers": workers,
		"tile":    fmt.Sprintf("%dx%d", marker.Tile().Width(), marker.Tile().Height()),
	}).Debug("marking files")

	return marker.MarkFiles(args)
}
