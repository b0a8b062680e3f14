package catalog

import (
	"errors"
	"sync"

	"gitlab.com/vodservice/video-pipeline/models"
)

var (
	// ErrNotFound is returned when no record exists for an asset id.
	ErrNotFound = errors.New("video not found")
	// ErrTerminal is returned on an attempt to transition an asset that
	// is already completed or failed. Terminal states are immutable.
	ErrTerminal = errors.New("video already in a terminal state")
)

// Store is the Asset State Tracker: the in-memory catalog of video
// records plus the ephemeral per-asset progress snapshot. It is the only
// writer to its records; pipeline runs submit updates through it and
// never mutate records they hold.
type Store struct {
	mu       sync.RWMutex
	videos   map[string]*models.Video
	progress map[string]models.ProcessingProgress
}

func NewStore() *Store {
	return &Store{
		videos:   make(map[string]*models.Video),
		progress: make(map[string]models.ProcessingProgress),
	}
}

// Put registers a record under its id, replacing any previous one.
func (s *Store) Put(video *models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = clone(video)
}

// Get returns a copy of the record, or ErrNotFound.
func (s *Store) Get(assetID string) (*models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.videos[assetID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(video), nil
}

// List returns copies of all records.
func (s *Store) List() []models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	videos := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		videos = append(videos, *clone(v))
	}
	return videos
}

// clone copies a record including its slice, map and pointer fields so
// neither side can reach the other's data.
func clone(video *models.Video) *models.Video {
	c := *video
	if video.Thumbnails != nil {
		c.Thumbnails = append([]string(nil), video.Thumbnails...)
	}
	if video.Resolutions != nil {
		c.Resolutions = make(map[string]string, len(video.Resolutions))
		for k, v := range video.Resolutions {
			c.Resolutions[k] = v
		}
	}
	if video.Metadata != nil {
		metadata := *video.Metadata
		c.Metadata = &metadata
	}
	return &c
}

// Delete removes the record and its progress snapshot. On-disk output
// files are not touched.
func (s *Store) Delete(assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[assetID]; !ok {
		return ErrNotFound
	}
	delete(s.videos, assetID)
	delete(s.progress, assetID)
	return nil
}

// Complete moves the asset to its terminal completed state, attaching the
// pipeline result, and drops the progress snapshot.
func (s *Store) Complete(assetID string, result *models.ProcessResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[assetID]
	if !ok {
		return ErrNotFound
	}
	if video.Status != models.StatusProcessing {
		return ErrTerminal
	}

	video.Status = models.StatusCompleted
	video.Thumbnails = result.Thumbnails
	video.Resolutions = result.Resolutions
	metadata := result.Metadata
	video.Metadata = &metadata
	video.Error = ""
	delete(s.progress, assetID)
	return nil
}

// Fail moves the asset to its terminal failed state with a description
// and drops all partial progress.
func (s *Store) Fail(assetID string, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[assetID]
	if !ok {
		return ErrNotFound
	}
	if video.Status != models.StatusProcessing {
		return ErrTerminal
	}

	video.Status = models.StatusFailed
	video.Error = description
	delete(s.progress, assetID)
	return nil
}

// SetProgress overwrites the asset's progress snapshot.
func (s *Store) SetProgress(assetID string, progress models.ProcessingProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[assetID] = progress
}

// Progress returns the latest snapshot, if any.
func (s *Store) Progress(assetID string) (models.ProcessingProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.progress[assetID]
	return progress, ok
}
