package drive

import (
	"context"
	"fmt"
	"sync"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
)

const bytesPerMB = 1024 * 1024

// FormatMB renders a byte count as two-decimal megabytes, e.g. "476.84MB"
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2fMB", float64(bytes)/bytesPerMB)
}

// StorageView holds the account's usage against its limit
type StorageView struct {
	remote remote.Collaborator
	banner *Banner

	mu      sync.Mutex
	info    types.StorageInfo
	loaded  bool
	loading bool
}

func NewStorageView(c remote.Collaborator, banner *Banner) *StorageView {
	return &StorageView{remote: c, banner: banner}
}

// Load fetches the current usage
func (s *StorageView) Load(ctx context.Context) error {
	return s.refresh(ctx, "Failed to load storage", s.remote.StorageInfo)
}

// Recalculate asks the service to recompute usage and keeps its answer
func (s *StorageView) Recalculate(ctx context.Context) error {
	return s.refresh(ctx, "Failed to recalculate storage", s.remote.RecalculateStorage)
}

// refresh replaces the values with fetch's answer. On failure the last
// known values stay.
func (s *StorageView) refresh(ctx context.Context, action string, fetch func(context.Context) (*types.StorageInfo, error)) error {
	s.setLoading(true)
	defer s.setLoading(false)

	info, err := fetch(ctx)
	if err != nil {
		s.banner.Report(action, err)
		return fmt.Errorf("failed to fetch storage info: %w", err)
	}

	s.mu.Lock()
	s.info = *info
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *StorageView) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Info returns the last known usage and whether any load has succeeded
func (s *StorageView) Info() (types.StorageInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info, s.loaded
}

// Loading reports whether a storage request is in flight
func (s *StorageView) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Percent is used/limit*100. It is not clamped: the service keeps used
// within the limit. A zero limit reads as 0.
func (s *StorageView) Percent() float64 {
	info, _ := s.Info()
	if info.Limit <= 0 {
		return 0
	}
	return float64(info.Used) / float64(info.Limit) * 100
}

// FillRatio is the progress bar fill, clamped to [0, 1]
func (s *StorageView) FillRatio() float64 {
	r := s.Percent() / 100
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Display renders "<used>MB / <limit>MB"
func (s *StorageView) Display() string {
	info, _ := s.Info()
	return FormatMB(info.Used) + " / " + FormatMB(info.Limit)
}
