package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Afnanksalal/meditech-backend/internal/audio"
)

func TestRun_TrimsOutput(t *testing.T) {
	registry := NewRegistry(map[string]Model{
		ModelKeyEnglish: staticModel("  hello world \n"),
	})
	runner := NewRunner(registry, 2)

	result, err := runner.Run(context.Background(), ModelKeyEnglish, testSample(100, 16000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("expected trimmed text 'hello world', got %q", result.Text)
	}
	if result.ModelKey != ModelKeyEnglish {
		t.Errorf("expected model key %s, got %s", ModelKeyEnglish, result.ModelKey)
	}
}

func TestRun_ModelNotFound(t *testing.T) {
	runner := NewRunner(NewRegistry(nil), 2)

	result, err := runner.Run(context.Background(), ModelKeyMalayalam, testSample(100, 16000))
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
	if result.ModelKey != ModelKeyMalayalam {
		t.Errorf("expected result to carry the requested key, got %s", result.ModelKey)
	}
}

func TestRun_ModelErrorPropagates(t *testing.T) {
	wantErr := errors.New("decoder blew up")
	registry := NewRegistry(map[string]Model{
		ModelKeyEnglish: &fakeModel{
			transcribe: func(ctx context.Context, sample audio.Sample) (string, error) {
				return "", wantErr
			},
		},
	})
	runner := NewRunner(registry, 2)

	_, err := runner.Run(context.Background(), ModelKeyEnglish, testSample(100, 16000))
	if !errors.Is(err, wantErr) {
		t.Errorf("expected model error to propagate, got %v", err)
	}
}

func TestRun_PanicIsolated(t *testing.T) {
	registry := NewRegistry(map[string]Model{
		ModelKeyEnglish: &fakeModel{
			transcribe: func(ctx context.Context, sample audio.Sample) (string, error) {
				panic("inference crashed")
			},
		},
	})
	runner := NewRunner(registry, 2)

	_, err := runner.Run(context.Background(), ModelKeyEnglish, testSample(100, 16000))
	if err == nil {
		t.Fatal("expected error from panicking model")
	}
	if !strings.Contains(err.Error(), "model panic") {
		t.Errorf("expected panic to be reported as model panic, got %v", err)
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	const workers = 2
	const runs = 5

	var mu sync.Mutex
	active, peak := 0, 0
	release := make(chan struct{})

	registry := NewRegistry(map[string]Model{
		ModelKeyEnglish: &fakeModel{
			transcribe: func(ctx context.Context, sample audio.Sample) (string, error) {
				mu.Lock()
				active++
				if active > peak {
					peak = active
				}
				mu.Unlock()

				<-release

				mu.Lock()
				active--
				mu.Unlock()
				return "done", nil
			},
		},
	})
	runner := NewRunner(registry, workers)

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runner.Run(context.Background(), ModelKeyEnglish, testSample(10, 16000)); err != nil {
				t.Errorf("unexpected run error: %v", err)
			}
		}()
	}

	// Wait until the pool is saturated before releasing the models
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		saturated := active == workers
		mu.Unlock()
		if saturated {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pool never saturated")
		}
		time.Sleep(time.Millisecond)
	}

	close(release)
	wg.Wait()

	if peak > workers {
		t.Errorf("expected at most %d concurrent inferences, observed %d", workers, peak)
	}
}

func TestRun_CanceledWhileQueued(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	registry := NewRegistry(map[string]Model{
		ModelKeyEnglish: &fakeModel{
			transcribe: func(ctx context.Context, sample audio.Sample) (string, error) {
				close(entered)
				<-release
				return "done", nil
			},
		},
	})
	runner := NewRunner(registry, 1)

	go runner.Run(context.Background(), ModelKeyEnglish, testSample(10, 16000))
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.Run(ctx, ModelKeyEnglish, testSample(10, 16000))
	close(release)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled while queued for a slot, got %v", err)
	}
}
