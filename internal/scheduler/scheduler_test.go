package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

type fakeRefresher struct {
	calls chan struct{}
	err   error
}

func (f *fakeRefresher) RefreshRoster(_ context.Context) (weather.Batch, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return weather.Batch{ID: "batch"}, f.err
}

func TestSchedulerRunsImmediately(t *testing.T) {
	r := &fakeRefresher{calls: make(chan struct{}, 1)}
	s := New(time.Hour, r)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run on start")
	}
}

func TestSchedulerSurvivesRefreshError(t *testing.T) {
	r := &fakeRefresher{calls: make(chan struct{}, 1), err: errors.New("no roster")}
	s := New(time.Hour, r)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run on start")
	}
}
