package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/vodservice/video-pipeline/config"
	"gitlab.com/vodservice/video-pipeline/pkg/logger"
	"gitlab.com/vodservice/video-pipeline/tools/transcoder"
)

// thumbSize matches the thumbnail dimensions the player grid expects.
const thumbSize = "320x240"

// FFmpeg shells out to ffmpeg/ffprobe and implements transcoder.Backend.
type FFmpeg struct {
	cfg *config.Config
	log logger.Logger
}

// New returns the ffmpeg/ffprobe backed media backend.
func New(cfg *config.Config, log logger.Logger) transcoder.Backend {
	return &FFmpeg{
		cfg: cfg,
		log: log,
	}
}

// Probe runs a single ffprobe JSON call against input and returns the
// parsed result.
func (f *FFmpeg) Probe(ctx context.Context, input string) (*transcoder.ProbeResult, error) {
	f.log.Debug("probing source", logger.String("input", input))

	cmd := exec.CommandContext(ctx, f.cfg.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		input,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", input, err)
	}

	return ParseProbeJSON(out)
}

// ParseProbeJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseProbeJSON(data []byte) (*transcoder.ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	res := &transcoder.ProbeResult{
		Format: raw.Format.FormatName,
	}
	res.Duration, _ = strconv.ParseFloat(raw.Format.Duration, 64)
	res.Size, _ = strconv.ParseInt(raw.Format.Size, 10, 64)

	for _, s := range raw.Streams {
		res.Streams = append(res.Streams, transcoder.Stream{
			Index:     s.Index,
			CodecType: s.CodecType,
			CodecName: s.CodecName,
			Width:     s.Width,
			Height:    s.Height,
		})
	}

	return res, nil
}

// ffprobe JSON wire types

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ExtractFrames pulls count stills spread evenly across the source and
// verifies each expected file exists afterwards: on very short inputs
// ffmpeg can exit zero without writing a frame.
func (f *FFmpeg) ExtractFrames(ctx context.Context, input, outputDir string, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}

	probe, err := f.Probe(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("probe for frame positions: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	paths := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		position := probe.Duration * float64(i) / float64(count+1)
		output := filepath.Join(outputDir, fmt.Sprintf("%s_thumb_%d.png", base, i))

		cmd := exec.CommandContext(ctx, f.cfg.FFmpeg,
			"-ss", strconv.FormatFloat(position, 'f', 3, 64),
			"-i", input,
			"-frames:v", "1",
			"-s", thumbSize,
			"-y",
			output,
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("ffmpeg frame %d: %w: %s", i, err, tailOf(out))
		}

		if _, err := os.Stat(output); err != nil {
			return nil, fmt.Errorf("frame %d not produced at %s", i, output)
		}
		paths = append(paths, output)
	}

	return paths, nil
}

// Encode converts input into one H.264/AAC rendition with a
// streaming-friendly layout, streaming percent updates parsed from
// ffmpeg's machine-readable progress pipe.
func (f *FFmpeg) Encode(ctx context.Context, req transcoder.EncodeRequest, onProgress transcoder.ProgressFunc) error {
	args := buildEncodeArgs(req)
	f.log.Debug("encode command", logger.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, f.cfg.FFmpeg, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	parser := newProgressParser(req.Duration)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if percent, ok := parser.parseLine(scanner.Text()); ok && onProgress != nil {
			onProgress(percent)
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", req.Profile.Name, err, tailOf(stderr.Bytes()))
	}

	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

func buildEncodeArgs(req transcoder.EncodeRequest) []string {
	return []string{
		"-y",
		"-i", req.Input,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:v", req.Profile.VideoBitRate,
		"-s", fmt.Sprintf("%dx%d", req.Profile.Width, req.Profile.Height),
		"-preset", "fast",
		"-movflags", "+faststart",
		"-profile:v", "high",
		"-level", "4.2",
		"-progress", "pipe:1",
		"-nostats",
		req.Output,
	}
}

// tailOf keeps the last part of tool output for error messages; ffmpeg
// prints the actual reason at the end of a long banner.
func tailOf(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 400 {
		s = s[len(s)-400:]
	}
	return s
}
