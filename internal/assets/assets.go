// Package assets loads model files off the render thread.
//
// A Provider decodes each requested file on its own goroutine and hands the
// finished scene-graph root back through Poll, which the render loop calls
// once per frame. Each identifier is loaded at most once.
package assets

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/armview/internal/engine/scene"
	"github.com/Faultbox/armview/internal/logger"
)

var (
	// ErrAlreadyRequested is returned by Load for an identifier that was
	// requested before, whether or not that load succeeded.
	ErrAlreadyRequested = errors.New("asset already requested")

	// ErrNoScene is returned when a document has no nodes to instantiate.
	ErrNoScene = errors.New("document has no scene nodes")
)

// Result is one settled load. Root is nil when Err is set.
type Result struct {
	ID   string
	Path string
	Root *scene.Node
	Err  error
}

// DecodeFunc turns a file into a scene-graph root.
type DecodeFunc func(path string) (*scene.Node, error)

// Provider runs asynchronous, single-shot loads.
type Provider struct {
	decode DecodeFunc
	log    *zap.Logger

	mu        sync.Mutex
	requested map[string]string
	pending   int

	results chan Result
	wg      sync.WaitGroup
}

// NewProvider creates a provider that decodes glTF and GLB files.
func NewProvider() *Provider {
	return NewProviderWith(DecodeFile)
}

// NewProviderWith creates a provider with a custom decoder.
func NewProviderWith(decode DecodeFunc) *Provider {
	return &Provider{
		decode:    decode,
		log:       logger.Named("assets"),
		requested: make(map[string]string),
		results:   make(chan Result, 8),
	}
}

// Load starts decoding path in the background under id. It returns
// immediately; the outcome is delivered by a later Poll.
func (p *Provider) Load(id, path string) error {
	p.mu.Lock()
	if prev, ok := p.requested[id]; ok {
		p.mu.Unlock()
		return fmt.Errorf("%s (%s): %w", id, prev, ErrAlreadyRequested)
	}
	p.requested[id] = path
	p.pending++
	p.mu.Unlock()

	p.log.Debug("load requested", zap.String("id", id), zap.String("path", path))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		root, err := p.decode(path)
		if err != nil {
			err = fmt.Errorf("decode %s: %w", path, err)
			root = nil
			p.log.Warn("asset load failed", zap.String("id", id), zap.Error(err))
		} else if root == nil {
			err = fmt.Errorf("decode %s: %w", path, ErrNoScene)
			p.log.Warn("asset load failed", zap.String("id", id), zap.Error(err))
		}
		p.results <- Result{ID: id, Path: path, Root: root, Err: err}
	}()
	return nil
}

// Poll drains every settled load without blocking.
func (p *Provider) Poll() []Result {
	return p.settle(p.drain(nil))
}

// Pending returns the number of loads not yet returned by Poll.
func (p *Provider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Wait blocks until every started decode has finished and returns the
// results not yet polled. Used at shutdown and in tests.
func (p *Provider) Wait() []Result {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var out []Result
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		case <-done:
			return p.settle(p.drain(out))
		}
	}
}

func (p *Provider) drain(out []Result) []Result {
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

func (p *Provider) settle(out []Result) []Result {
	if len(out) > 0 {
		p.mu.Lock()
		p.pending -= len(out)
		p.mu.Unlock()
	}
	return out
}
