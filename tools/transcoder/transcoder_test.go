package transcoder

import (
	"reflect"
	"testing"
)

func ladderNames(ladder []Profile) []string {
	names := make([]string, len(ladder))
	for i, p := range ladder {
		names[i] = p.Name
	}
	return names
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name         string
		sourceHeight int
		want         []string
	}{
		{"720p source", 720, []string{"360p", "480p", "720p"}},
		{"4k source gets all tiers", 2160, []string{"360p", "480p", "720p", "1080p", "1440p", "4k"}},
		{"tiny source falls back to smallest tier", 144, []string{"360p"}},
		{"zero height falls back to smallest tier", 0, []string{"360p"}},
		{"1080p source", 1080, []string{"360p", "480p", "720p", "1080p"}},
		{"between tiers rounds down", 900, []string{"360p", "480p", "720p"}},
		{"taller than 4k still capped at table", 4320, []string{"360p", "480p", "720p", "1080p", "1440p", "4k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ladderNames(Plan(tt.sourceHeight))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan(%d) = %v, want %v", tt.sourceHeight, got, tt.want)
			}
		})
	}
}

func TestPlanNeverEmptyAndAscending(t *testing.T) {
	for h := 0; h <= 4320; h += 36 {
		ladder := Plan(h)
		if len(ladder) == 0 {
			t.Fatalf("Plan(%d) returned an empty ladder", h)
		}
		for i, p := range ladder {
			if i > 0 && p.Height <= ladder[i-1].Height {
				t.Fatalf("Plan(%d) not strictly ascending: %v", h, ladderNames(ladder))
			}
			// Only the fallback case may exceed the source height.
			if p.Height > h && !(len(ladder) == 1 && p.Name == ResolutionLD) {
				t.Fatalf("Plan(%d) includes %s above source height", h, p.Name)
			}
		}
	}
}

func TestProfilesTableOrder(t *testing.T) {
	want := []string{"360p", "480p", "720p", "1080p", "1440p", "4k"}
	if got := ladderNames(Profiles); !reflect.DeepEqual(got, want) {
		t.Fatalf("Profiles order = %v, want %v", got, want)
	}
}

func TestFindProfile(t *testing.T) {
	p, ok := FindProfile("720p")
	if !ok {
		t.Fatal("FindProfile(720p) not found")
	}
	if p.Width != 1280 || p.Height != 720 || p.VideoBitRate != "2500k" {
		t.Errorf("FindProfile(720p) = %+v", p)
	}

	if _, ok := FindProfile("8k"); ok {
		t.Error("FindProfile(8k) should not be found")
	}
}

func TestPrimaryVideo(t *testing.T) {
	tests := []struct {
		name      string
		streams   []Stream
		wantIndex int
		wantNil   bool
	}{
		{
			name: "first video stream wins",
			streams: []Stream{
				{Index: 0, CodecType: "audio"},
				{Index: 1, CodecType: "video", Height: 720},
				{Index: 2, CodecType: "video", Height: 1080},
			},
			wantIndex: 1,
		},
		{
			name:    "no video stream",
			streams: []Stream{{Index: 0, CodecType: "audio"}},
			wantNil: true,
		},
		{
			name:    "empty",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := &ProbeResult{Streams: tt.streams}
			got := pr.PrimaryVideo()
			if tt.wantNil {
				if got != nil {
					t.Fatalf("PrimaryVideo() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Index != tt.wantIndex {
				t.Fatalf("PrimaryVideo() = %+v, want index %d", got, tt.wantIndex)
			}
		})
	}
}
