package source

import (
	"context"
	"errors"
)

// FakeSource is a test double that returns scripted samples. Each call
// to Sample consumes the next entry; when exhausted it repeats the last
// one, so a steady state is easy to script.
type FakeSource struct {
	// SourceName is returned by Name.
	SourceName string

	// Samples contains the scripted samples to return in order.
	Samples []Sample

	// SampleError, if set, is returned by every Sample call.
	SampleError error

	index int
}

func NewFakeSource(name string, samples ...Sample) *FakeSource {
	return &FakeSource{SourceName: name, Samples: samples}
}

func (f *FakeSource) Name() string {
	return f.SourceName
}

func (f *FakeSource) Sample(ctx context.Context) (Sample, error) {
	if f.SampleError != nil {
		return Sample{}, f.SampleError
	}
	if len(f.Samples) == 0 {
		return Sample{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Reset rewinds the script to the beginning.
func (f *FakeSource) Reset() {
	f.index = 0
}
