// Package main is the entry point for the pianosteps CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/james-see/pianosteps/pkg/api"
	"github.com/james-see/pianosteps/pkg/config"
	"github.com/james-see/pianosteps/pkg/input"
	"github.com/james-see/pianosteps/pkg/logging"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/song"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
	handFlag   string
	splitPitch int
	byTrack    bool
	outputFile string
	serverPort int
	modeFlag   string
	tempoFlag  int
	inPort     string
	outPort    string
	logFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pianosteps",
	Short: "Learn piano pieces step by step from MIDI files",
	Long: `pianosteps turns a MIDI file into a sequence of practice steps with
hand assignment and suggested fingering, then walks you through them one
step at a time from a MIDI keyboard or your computer keyboard.

Examples:
  pianosteps inspect etude.mid
  pianosteps steps etude.mid --hand left
  pianosteps export etude.mid --hand right -o right.mid
  pianosteps practice etude.mid --in "Digital Piano"
  pianosteps serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Show tempo, meter and hand split of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var stepsCmd = &cobra.Command{
	Use:   "steps <file.mid>",
	Short: "List practice steps with suggested fingering",
	Args:  cobra.ExactArgs(1),
	RunE:  runSteps,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.mid>",
	Short: "Write the selected hands to a new MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var practiceCmd = &cobra.Command{
	Use:   "practice [file.mid]",
	Short: "Practice a song in the terminal",
	Long: `Opens the practice screen. Without a file, a file picker is shown.
Notes can be played on a MIDI keyboard (--in) or on the computer keyboard,
where the home row starts at middle C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPractice,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&handFlag, "hand", "", "Hands to use (left, right, both)")
	rootCmd.PersistentFlags().IntVar(&splitPitch, "split", 0, "Lowest pitch played by the right hand (default 60)")
	rootCmd.PersistentFlags().BoolVar(&byTrack, "by-track", false, "Assign hands by track when the file has several")

	// export command
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// practice command
	practiceCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Learn mode (practice, watch)")
	practiceCmd.Flags().IntVarP(&tempoFlag, "tempo", "t", 0, "Watch mode tempo percent (25-200)")
	practiceCmd.Flags().StringVar(&inPort, "in", "", "MIDI input port")
	practiceCmd.Flags().StringVar(&outPort, "out", "", "MIDI output port for audio cues")
	practiceCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of discarding them")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file, if any, and applies flags set on cmd
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("hand") {
		cfg.Hand = handFlag
	}
	if flags.Changed("split") {
		cfg.SplitPitch = splitPitch
	}
	if flags.Changed("by-track") {
		cfg.HandPolicy = config.PolicyPitch
		if byTrack {
			cfg.HandPolicy = config.PolicyTrack
		}
	}
	if flags.Changed("mode") {
		cfg.Mode = modeFlag
	}
	if flags.Changed("tempo") {
		cfg.TempoPercent = tempoFlag
	}
	if flags.Changed("in") {
		cfg.InputPort = inPort
	}
	if flags.Changed("out") {
		cfg.OutputPort = outPort
	}
	return cfg, cfg.Validate()
}

func loadSong(cfg config.Config, path string) (*song.Song, error) {
	s, err := song.Load(path, cfg.SongOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return s, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSong(cfg, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Song:\t%s\n", s.Name)
	fmt.Fprintf(w, "Tempo:\t%.1f BPM\n", s.Tempo)
	fmt.Fprintf(w, "Time signature:\t%s\n", s.TimeSignature)
	fmt.Fprintf(w, "Duration:\t%.2fs\n", s.TotalDuration)
	fmt.Fprintf(w, "Measures:\t%d\n", s.MeasureCount)
	fmt.Fprintf(w, "Notes:\t%d (left %d, right %d)\n", len(s.Tracks.All), len(s.Tracks.Left), len(s.Tracks.Right))
	for _, mode := range []model.HandMode{model.Both, model.LeftOnly, model.RightOnly} {
		fmt.Fprintf(w, "Steps (%s):\t%d\n", mode, len(s.Steps(mode)))
	}
	return w.Flush()
}

func runSteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSong(cfg, args[0])
	if err != nil {
		return err
	}
	mode, _ := model.ParseHandMode(cfg.Hand)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTIME\tMEASURE\tNOTES")
	for i, step := range s.Steps(mode) {
		notes := make([]string, len(step.Notes))
		for j, n := range step.Notes {
			hand := "R"
			if n.Hand == model.Left {
				hand = "L"
			}
			notes[j] = fmt.Sprintf("%s(%s%d)", model.NoteName(n.Pitch), hand, n.Finger)
		}
		fmt.Fprintf(w, "%d\t%.3f\t%d\t%s\n", i+1, step.Time, step.Notes[0].Measure+1, strings.Join(notes, " "))
	}
	return w.Flush()
}

func getOutputPath(in string, mode model.HandMode) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(in, filepath.Ext(in))
	return fmt.Sprintf("%s-%s.mid", base, mode)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSong(cfg, args[0])
	if err != nil {
		return err
	}
	mode, _ := model.ParseHandMode(cfg.Hand)

	data, err := s.Export(mode)
	if err != nil {
		return err
	}
	output := getOutputPath(args[0], mode)
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s hands of %s -> %s\n", mode, args[0], output)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ins, outs := input.Ports()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Inputs:")
	for _, p := range ins {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintln(out, "Outputs:")
	for _, p := range outs {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fmt.Printf("Starting API server on port %d...\n", serverPort)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", serverPort)
	if err := api.StartServer(serverPort, api.WithLogger(log)); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
