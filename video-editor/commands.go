package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"storyreel/elevenlabs"
	"storyreel/video-editor/captions"
	"storyreel/video-editor/engine"
	"storyreel/video-editor/models"
	"storyreel/video-editor/utils"
)

const OutputDir = "./output"

// cli carries the state every subcommand shares.
type cli struct {
	configPath string
	logLevel   string
	env        models.ServiceEnv
	config     *models.ProjectConfig
}

func NewRootCommand() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "video-editor",
		Short:         "Caption story narration and burn the captions onto footage",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "project config file (.json or .yaml); defaults to CONFIG_PATH")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error; defaults to LOG_LEVEL")

	cmd.AddCommand(
		c.phrasesCommand(),
		c.srtCommand(),
		c.filterCommand(),
		c.probeCommand(),
		c.renderCommand(),
		c.voicesCommand(),
	)
	return cmd
}

func (c *cli) setup() error {
	env, err := models.LoadServiceEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	if c.logLevel != "" {
		env.LogLevel = c.logLevel
	}
	if c.configPath != "" {
		env.ConfigPath = c.configPath
	}
	utils.SetupLogger(env.LogLevel)

	config, err := env.ProjectConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.env = env
	c.config = config
	return nil
}

func (c *cli) phrasesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "phrases <passage>",
		Short: "Print the display phrases of a passage file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := utils.ReadPassage(args[0])
			if err != nil {
				return err
			}
			sentences, err := captions.Segment(text, c.config.Captions.Segment)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sentences)
			}
			for _, s := range sentences {
				for _, p := range s.Phrases {
					fmt.Fprintf(out, "%d\t%d\t%s\n", p.Index+1, s.Index+1, p.Content)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print sentences and phrases as JSON")
	return cmd
}

// timingFlags are shared by the commands that need a narration duration.
type timingFlags struct {
	duration float64
	audio    string
}

func (t *timingFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t.duration, "duration", 0, "narration length in seconds")
	cmd.Flags().StringVar(&t.audio, "audio", "", "narration file to probe for the duration")
	cmd.MarkFlagsMutuallyExclusive("duration", "audio")
	cmd.MarkFlagsOneRequired("duration", "audio")
}

func (t *timingFlags) resolve() float64 {
	if t.audio == "" {
		return t.duration
	}
	d, _ := utils.DurationOrDefault(t.audio)
	return d
}

func (c *cli) buildTrack(path string, timing *timingFlags) (*captions.Track, error) {
	text, err := utils.ReadPassage(path)
	if err != nil {
		return nil, err
	}
	return captions.BuildTrack(text, timing.resolve(), c.config.CaptionConfig())
}

func (c *cli) srtCommand() *cobra.Command {
	var (
		timing timingFlags
		out    string
	)
	cmd := &cobra.Command{
		Use:   "srt <passage>",
		Short: "Write an SRT file for a passage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := c.buildTrack(args[0], &timing)
			if err != nil {
				return err
			}
			if out == "" {
				return track.WriteSRT(cmd.OutOrStdout(), c.config.Captions.SRT)
			}
			if err := os.WriteFile(out, []byte(track.SRT(c.config.Captions.SRT)), 0644); err != nil {
				return err
			}
			log.Info().Str("file", out).Int("cues", len(track.Cues)).Msg("SRT written")
			return nil
		},
	}
	timing.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	return cmd
}

func (c *cli) filterCommand() *cobra.Command {
	var (
		timing timingFlags
		wrap   bool
	)
	cmd := &cobra.Command{
		Use:   "filter <passage>",
		Short: "Print the drawtext filter chain for a passage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := c.buildTrack(args[0], &timing)
			if err != nil {
				return err
			}
			style := c.config.Captions.Style
			filter := captions.FilterChain(track, style)
			if wrap {
				filter = captions.FilterComplex(track, style, "0:v", "v")
			}
			fmt.Fprintln(cmd.OutOrStdout(), filter)
			return nil
		},
	}
	timing.register(cmd)
	cmd.Flags().BoolVar(&wrap, "complex", false, "wrap the chain in [0:v]...[v] for -filter_complex")
	return cmd
}

func (c *cli) probeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <media>",
		Short: "Print the duration of a media file in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := utils.GetMediaDuration(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", d)
			return nil
		},
	}
}

type renderFlags struct {
	video   string
	audio   string
	text    string
	out     string
	burn    string
	preset  string
	narrate bool
	loop    bool
}

func (c *cli) renderCommand() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Burn captions for a passage onto footage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.render(ctx, f)
		},
	}
	cmd.Flags().StringVar(&f.video, "video", "", "background footage")
	cmd.Flags().StringVar(&f.audio, "audio", "", "narration audio")
	cmd.Flags().StringVar(&f.text, "text", "", "passage file (plain text or JSON with story/description)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output video (defaults to ./output/<passage>.mp4)")
	cmd.Flags().StringVar(&f.burn, "burn", "", "drawtext or subtitles; defaults to the config burn_mode")
	cmd.Flags().StringVar(&f.preset, "preset", "", "animation preset override")
	cmd.Flags().BoolVar(&f.narrate, "narrate", false, "synthesize narration with ElevenLabs when --audio is not given")
	cmd.Flags().BoolVar(&f.loop, "loop", false, "loop the footage under the narration")
	cmd.MarkFlagRequired("video")
	cmd.MarkFlagRequired("text")
	return cmd
}

func (c *cli) render(ctx context.Context, f renderFlags) error {
	if err := utils.ValidateFFmpegInstalled(); err != nil {
		return err
	}
	text, err := utils.ReadPassage(f.text)
	if err != nil {
		return err
	}

	capCfg, err := c.config.CaptionConfigWithPreset(f.preset)
	if err != nil {
		return err
	}

	out := f.out
	if out == "" {
		name := strings.TrimSuffix(filepath.Base(f.text), filepath.Ext(f.text))
		out = filepath.Join(OutputDir, utils.SanitizeFilename(name)+".mp4")
	}
	if err := utils.EnsureDirectoryExists(filepath.Dir(out)); err != nil {
		return err
	}
	editor := engine.NewVideoEditor(filepath.Dir(out), c.config)

	audio := f.audio
	if audio == "" && f.narrate {
		audio, err = c.narrate(ctx, editor, text, out)
		if err != nil {
			return err
		}
	}

	timed := audio
	if timed == "" {
		timed = f.video
	}
	duration, fallback := utils.DurationOrDefault(timed)
	if fallback {
		log.Warn().Float64("duration", duration).Msg("captions timed against the default duration")
	}

	track, err := captions.BuildTrack(text, duration, capCfg)
	if err != nil {
		return err
	}
	srtPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".srt"
	if err := os.WriteFile(srtPath, []byte(track.SRT(capCfg.SRT)), 0644); err != nil {
		return err
	}

	return editor.Render(ctx, engine.RenderRequest{
		VideoPath:  f.video,
		AudioPath:  audio,
		OutputPath: out,
		Track:      track,
		Burn:       f.burn,
		SRTPath:    srtPath,
		LoopVideo:  f.loop,
	})
}

// narrate synthesizes text next to out and returns the merged narration path.
func (c *cli) narrate(ctx context.Context, editor *engine.VideoEditor, text, out string) (string, error) {
	el := elevenlabs.ConfigFromEnv()
	if !el.Enabled() {
		return "", errors.New("--narrate needs ELEVENLABS_API_KEY")
	}
	dir, err := os.MkdirTemp("", "narration-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	files, err := el.NewNarrator(c.env.MaxConcurrentJobs).Synthesize(ctx, text, dir)
	if err != nil {
		return "", err
	}
	audio := strings.TrimSuffix(out, filepath.Ext(out)) + "_narration.mp3"
	if _, err := editor.MergeNarration(ctx, files, audio); err != nil {
		return "", err
	}
	return audio, nil
}

func (c *cli) voicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the ElevenLabs voices available to ELEVENLABS_API_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			el := elevenlabs.ConfigFromEnv()
			if !el.Enabled() {
				return errors.New("ELEVENLABS_API_KEY is not set")
			}
			voices, err := elevenlabs.NewClient(el.APIKey, el.Proxy).GetVoices(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range voices {
				fmt.Fprintf(out, "%s\t%s\n", v.VoiceID, v.Name)
			}
			return nil
		},
	}
}
