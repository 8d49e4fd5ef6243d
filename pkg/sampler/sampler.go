package sampler

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Sampler reads the current capacity of a path.
type Sampler interface {
	Sample(ctx context.Context, path string) (model.MetricSample, error)
}

// DiskSampler reads filesystem usage through gopsutil.
type DiskSampler struct{}

// NewDiskSampler creates a filesystem sampler.
func NewDiskSampler() *DiskSampler {
	return &DiskSampler{}
}

// Sample returns the usage of the filesystem holding path. Used excludes
// reserved blocks and Free is what unprivileged users can still allocate.
func (s *DiskSampler) Sample(ctx context.Context, path string) (model.MetricSample, error) {
	if path == "" {
		path = "/"
	}

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return model.MetricSample{}, &model.SamplingError{Path: path, Err: err}
	}

	return model.NewMetricSample(path, usage.Total, usage.Used, usage.Free)
}

// StaticSampler returns preset samples. It is used for dry runs and tests.
type StaticSampler struct {
	mu      sync.RWMutex
	samples map[string]model.MetricSample
}

// NewStaticSampler creates a sampler over the given readings, keyed by path.
func NewStaticSampler(samples ...model.MetricSample) *StaticSampler {
	s := &StaticSampler{samples: make(map[string]model.MetricSample)}
	for _, sample := range samples {
		s.samples[sample.Path] = sample
	}
	return s
}

// Set replaces the reading for a path.
func (s *StaticSampler) Set(sample model.MetricSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[sample.Path] = sample
}

func (s *StaticSampler) Sample(_ context.Context, path string) (model.MetricSample, error) {
	s.mu.RLock()
	sample, ok := s.samples[path]
	s.mu.RUnlock()

	if !ok {
		return model.MetricSample{}, &model.SamplingError{Path: path, Err: fmt.Errorf("no reading configured")}
	}
	return model.NewMetricSample(sample.Path, sample.TotalBytes, sample.UsedBytes, sample.FreeBytes)
}
