package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	variant Variant
	closed  atomic.Bool
	err     error
}

func (s *stubAgent) Execute(ctx context.Context, prompt string, useTools bool) (ExecutionResult, error) {
	return ExecutionResult{Success: true, Content: s.variant.String() + ":" + prompt}, nil
}

func (s *stubAgent) Capabilities() []string { return []string{s.variant.String()} }

func (s *stubAgent) Close() error {
	s.closed.Store(true)
	return s.err
}

func countingFactory(calls *atomic.Int32) Factory {
	return func(v Variant, cfg Config) (Agent, error) {
		calls.Add(1)
		return &stubAgent{variant: v}, nil
	}
}

func TestRegistryGetOrCreateCaches(t *testing.T) {
	var calls atomic.Int32
	var created []Variant
	reg := NewRegistry(testConfig(nil),
		WithFactory(countingFactory(&calls)),
		WithOnCreate(func(v Variant) { created = append(created, v) }),
	)

	assert.False(t, reg.Cached(Chat))
	a1, err := reg.GetOrCreate(Chat)
	require.NoError(t, err)
	a2, err := reg.GetOrCreate(Chat)
	require.NoError(t, err)
	assert.Same(t, a1, a2)
	assert.True(t, reg.Cached(Chat))
	assert.False(t, reg.Cached(Search))

	s, err := reg.GetOrCreate(Search)
	require.NoError(t, err)
	assert.NotSame(t, a1, s)

	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []Variant{Chat, Search}, created)
}

func TestRegistryConstructionFailureNotCached(t *testing.T) {
	fail := true
	reg := NewRegistry(testConfig(nil), WithFactory(func(v Variant, cfg Config) (Agent, error) {
		if fail {
			return nil, ErrNoProvider
		}
		return &stubAgent{variant: v}, nil
	}))

	_, err := reg.GetOrCreate(Chat)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Contains(t, err.Error(), "create chat agent")
	assert.False(t, reg.Cached(Chat))
	assert.Equal(t, 0, reg.Len())

	fail = false
	_, err = reg.GetOrCreate(Chat)
	require.NoError(t, err)
	assert.True(t, reg.Cached(Chat))
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(testConfig(nil), WithFactory(countingFactory(&calls)))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := reg.GetOrCreate(Search)
			assert.NoError(t, err)
			assert.NotNil(t, a)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	// once settled, every lookup sees the same instance
	a1, _ := reg.GetOrCreate(Search)
	a2, _ := reg.GetOrCreate(Search)
	assert.Same(t, a1, a2)
}

func TestRegistryClose(t *testing.T) {
	boom := errors.New("boom")
	agents := map[Variant]*stubAgent{
		Chat:   {variant: Chat},
		Search: {variant: Search, err: boom},
	}
	reg := NewRegistry(testConfig(nil), WithFactory(func(v Variant, cfg Config) (Agent, error) {
		return agents[v], nil
	}))

	for _, v := range Variants {
		_, err := reg.GetOrCreate(v)
		require.NoError(t, err)
	}

	err := reg.Close()
	assert.ErrorIs(t, err, boom)
	assert.True(t, agents[Chat].closed.Load())
	assert.True(t, agents[Search].closed.Load())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryDefaultFactory(t *testing.T) {
	reg := NewRegistry(testConfig(testRegistry(llm.EchoClient{})))

	a, err := reg.GetOrCreate(Chat)
	require.NoError(t, err)
	assert.IsType(t, &ChatAgent{}, a)

	res, err := a.Execute(context.Background(), "ping", false)
	require.NoError(t, err)
	assert.Equal(t, "ping", res.Content)

	s, err := reg.GetOrCreate(Search)
	require.NoError(t, err)
	assert.IsType(t, &SearchAgent{}, s)
	assert.NoError(t, reg.Close())
}
