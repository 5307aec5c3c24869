// Package audio handles ingestion of uploaded audio: conversion to the
// pipeline's canonical format, WAV decode/encode and sample buffers.
package audio

import "time"

// Sample is a decoded mono PCM buffer at a fixed sample rate.
type Sample struct {
	Samples []float32
	Rate    int
}

// Empty reports whether the sample holds no audio.
func (s Sample) Empty() bool {
	return len(s.Samples) == 0 || s.Rate <= 0
}

// Duration returns the play length of the sample.
func (s Sample) Duration() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(int64(len(s.Samples)) * int64(time.Second) / int64(s.Rate))
}

// Leading returns the leading window of the sample. The whole sample is
// returned when the window is non-positive or not shorter than the sample.
func (s Sample) Leading(window time.Duration) Sample {
	if s.Rate <= 0 || window <= 0 {
		return s
	}
	n := int(int64(window) * int64(s.Rate) / int64(time.Second))
	if n <= 0 || n >= len(s.Samples) {
		return s
	}
	return Sample{Samples: s.Samples[:n], Rate: s.Rate}
}
