package transcoder

import "context"

const (
	// Resolution4K - 3840x2160
	Resolution4K = "4k"
	// Resolution2K - 2560x1440
	Resolution2K = "1440p"
	// ResolutionFullHD - 1920x1080
	ResolutionFullHD = "1080p"
	// ResolutionHD - 1280x720
	ResolutionHD = "720p"
	// ResolutionSD - 854x480
	ResolutionSD = "480p"
	// ResolutionLD - 640x360
	ResolutionLD = "360p"
)

// Profile is one rendition tier: a named resolution mapped to fixed
// dimensions and a target video bitrate.
type Profile struct {
	Name         string
	Width        int
	Height       int
	VideoBitRate string
}

// Profiles is the static rendition table, ordered ascending by tier.
// Order matters: the ladder planner scans it in place and the catalog
// presents renditions in this order.
var Profiles = []Profile{
	{Name: ResolutionLD, Width: 640, Height: 360, VideoBitRate: "500k"},
	{Name: ResolutionSD, Width: 854, Height: 480, VideoBitRate: "1000k"},
	{Name: ResolutionHD, Width: 1280, Height: 720, VideoBitRate: "2500k"},
	{Name: ResolutionFullHD, Width: 1920, Height: 1080, VideoBitRate: "5000k"},
	{Name: Resolution2K, Width: 2560, Height: 1440, VideoBitRate: "8000k"},
	{Name: Resolution4K, Width: 3840, Height: 2160, VideoBitRate: "15000k"},
}

// Plan selects the rendition ladder for a source of the given height:
// every tier whose height does not exceed the source, ascending. A source
// shorter than the smallest tier still gets that tier, so every asset
// has at least one playable rendition.
func Plan(sourceHeight int) []Profile {
	ladder := make([]Profile, 0, len(Profiles))
	for _, p := range Profiles {
		if p.Height <= sourceHeight {
			ladder = append(ladder, p)
		}
	}

	if len(ladder) == 0 {
		ladder = append(ladder, Profiles[0])
	}

	return ladder
}

// FindProfile returns the profile registered under the given tier name.
func FindProfile(name string) (Profile, bool) {
	for _, p := range Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// ProbeResult is the container/stream metadata of a source file.
type ProbeResult struct {
	Duration float64
	Size     int64
	Format   string
	Streams  []Stream
}

// Stream is one elementary stream descriptor.
type Stream struct {
	Index     int
	CodecType string
	CodecName string
	Width     int
	Height    int
}

// PrimaryVideo returns the first stream with codec type "video", the one
// ladder planning is based on. Nil when the file has no video stream.
func (p *ProbeResult) PrimaryVideo() *Stream {
	for i := range p.Streams {
		if p.Streams[i].CodecType == "video" {
			return &p.Streams[i]
		}
	}
	return nil
}

// EncodeRequest describes one (source, profile) rendition job.
type EncodeRequest struct {
	Input    string
	Output   string
	Profile  Profile
	Duration float64
}

// ProgressFunc receives best-effort percent-complete updates during an
// encode. Values are clamped to [0,100]; only the encoder's terminal
// return is authoritative for completion.
type ProgressFunc func(percent float64)

// Backend is the media capability interface the orchestrator runs against.
// The production implementation shells out to ffmpeg/ffprobe; tests use a
// fake returning canned results.
type Backend interface {
	// Probe extracts container and stream metadata. Read-only.
	Probe(ctx context.Context, input string) (*ProbeResult, error)

	// ExtractFrames writes count still images under outputDir, named
	// {basename}_thumb_{i}.png, and returns their paths. The directory
	// must exist. Implementations verify every expected file was
	// produced rather than trusting the tool's exit status.
	ExtractFrames(ctx context.Context, input, outputDir string, count int) ([]string, error)

	// Encode converts the source into one rendition, reporting progress
	// through onProgress. One invocation handles exactly one profile.
	Encode(ctx context.Context, req EncodeRequest, onProgress ProgressFunc) error
}
