package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/five82/finder/internal/finder"
	"github.com/five82/finder/internal/state"
)

type fakeService struct {
	finder.Service // unused operations panic

	healthErr  error
	objectsErr error
	calls      atomic.Int32
}

func (f *fakeService) CheckHealth(context.Context) (*finder.Health, error) {
	f.calls.Add(1)
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &finder.Health{Status: finder.HealthHealthy}, nil
}

func (f *fakeService) ListTrackedObjects(context.Context) ([]finder.TrackedObject, error) {
	if f.objectsErr != nil {
		return nil, f.objectsErr
	}
	return []finder.TrackedObject{{ID: "1", Name: "keys", Alias: "car keys"}}, nil
}

func (f *fakeService) GetSearchHistory(context.Context) (*finder.SearchHistory, error) {
	return &finder.SearchHistory{TotalFound: 1, TotalTracked: 1}, nil
}

func (f *fakeService) GetSearchSuggestions(context.Context) ([]string, error) {
	return []string{"Where are my keys?"}, nil
}

func (f *fakeService) GetCommonObjects(context.Context) ([]finder.ObjectTemplate, error) {
	return []finder.ObjectTemplate{{Name: "wallet", Alias: "billfold"}}, nil
}

func TestRefresh_PopulatesStore(t *testing.T) {
	store := &state.Store{}
	if err := Refresh(context.Background(), store, &fakeService{}, nil); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.APIStatus() != finder.HealthHealthy {
		t.Fatalf("APIStatus = %q, want healthy", snap.APIStatus())
	}
	if len(snap.Objects) != 1 || snap.Objects[0].Name != "keys" {
		t.Fatalf("Objects = %#v, want keys", snap.Objects)
	}
	if snap.History.TotalTracked != 1 {
		t.Fatalf("History = %#v, want 1 tracked", snap.History)
	}
	if len(snap.Suggestions) != 1 || len(snap.CommonObjects) != 1 {
		t.Fatalf("suggestions = %v common = %v", snap.Suggestions, snap.CommonObjects)
	}
}

func TestRefresh_OneFailureDoesNotBlockOthers(t *testing.T) {
	store := &state.Store{}
	healthErr := &finder.Error{Kind: finder.NetworkError, Message: "unable to connect to server"}
	svc := &fakeService{healthErr: healthErr}

	err := Refresh(context.Background(), store, svc, nil)
	if !errors.Is(err, finder.ErrNetwork) {
		t.Fatalf("Refresh err = %v, want network error", err)
	}

	snap := store.Snapshot()
	if snap.APIStatus() != finder.HealthError {
		t.Fatalf("APIStatus = %q, want error", snap.APIStatus())
	}
	if len(snap.Objects) != 1 {
		t.Fatalf("objects should still refresh; got %#v", snap.Objects)
	}
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &state.Store{}
	svc := &fakeService{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartPoller(ctx, store, svc, nil, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for svc.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("poller made %d refreshes, want at least 3", svc.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop after cancel")
	}
}
