package ffmpeg

import (
	"strings"
	"testing"

	"gitlab.com/vodservice/video-pipeline/tools/transcoder"
)

const sampleProbeJSON = `{
	"streams": [
		{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
		{"index": 1, "codec_name": "aac", "codec_type": "audio"}
	],
	"format": {
		"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
		"duration": "10.000000",
		"size": "1048576"
	}
}`

func TestParseProbeJSON(t *testing.T) {
	res, err := ParseProbeJSON([]byte(sampleProbeJSON))
	if err != nil {
		t.Fatalf("ParseProbeJSON: %v", err)
	}

	if res.Duration != 10.0 {
		t.Errorf("Duration = %v, want 10.0", res.Duration)
	}
	if res.Size != 1048576 {
		t.Errorf("Size = %v, want 1048576", res.Size)
	}
	if res.Format != "mov,mp4,m4a,3gp,3g2,mj2" {
		t.Errorf("Format = %q", res.Format)
	}
	if len(res.Streams) != 2 {
		t.Fatalf("Streams = %d, want 2", len(res.Streams))
	}

	video := res.PrimaryVideo()
	if video == nil {
		t.Fatal("no primary video stream")
	}
	if video.Width != 1280 || video.Height != 720 || video.CodecName != "h264" {
		t.Errorf("primary video = %+v", video)
	}
}

func TestParseProbeJSONIdempotent(t *testing.T) {
	first, err := ParseProbeJSON([]byte(sampleProbeJSON))
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseProbeJSON([]byte(sampleProbeJSON))
	if err != nil {
		t.Fatal(err)
	}
	if first.Duration != second.Duration || first.Size != second.Size ||
		first.Format != second.Format || len(first.Streams) != len(second.Streams) {
		t.Errorf("parsing the same data twice differed: %+v vs %+v", first, second)
	}
}

func TestParseProbeJSONInvalid(t *testing.T) {
	if _, err := ParseProbeJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestProgressParser(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantPercent float64
		wantOK      bool
	}{
		{"out_time_us halfway", "out_time_us=5000000", 50, true},
		{"out_time_ms is microseconds too", "out_time_ms=2500000", 25, true},
		{"out_time clock", "out_time=00:00:07.500000", 75, true},
		{"overshoot clamps to 100", "out_time_us=12000000", 100, true},
		{"negative ignored", "out_time_us=-1", 0, false},
		{"progress end", "progress=end", 100, true},
		{"progress continue ignored", "progress=continue", 0, false},
		{"unrelated key ignored", "frame=120", 0, false},
		{"garbage ignored", "no separator here", 0, false},
		{"not-a-number ignored", "out_time_us=N/A", 0, false},
		{"bad clock ignored", "out_time=N/A", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProgressParser(10.0)
			got, ok := p.parseLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.wantPercent {
				t.Errorf("parseLine(%q) = %v, want %v", tt.line, got, tt.wantPercent)
			}
		})
	}
}

func TestProgressParserZeroDuration(t *testing.T) {
	p := newProgressParser(0)
	got, ok := p.parseLine("out_time_us=5000000")
	if !ok || got != 0 {
		t.Errorf("zero-duration parse = (%v, %v), want (0, true)", got, ok)
	}
}

func TestBuildEncodeArgs(t *testing.T) {
	profile, _ := transcoder.FindProfile("720p")
	args := buildEncodeArgs(transcoder.EncodeRequest{
		Input:    "in.mp4",
		Output:   "out/720p.mp4",
		Profile:  profile,
		Duration: 10,
	})

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i in.mp4",
		"-c:v libx264",
		"-c:a aac",
		"-b:v 2500k",
		"-s 1280x720",
		"-preset fast",
		"-movflags +faststart",
		"-profile:v high",
		"-level 4.2",
		"-progress pipe:1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("encode args missing %q in %q", want, joined)
		}
	}

	if args[len(args)-1] != "out/720p.mp4" {
		t.Errorf("output path must be last, got %q", args[len(args)-1])
	}
}
