package library

import (
	"reflect"
	"testing"

	"github.com/desertthunder/spdl/internal/models"
)

func TestPlan(t *testing.T) {
	t1 := track("Song1", "A")
	t2 := track("Song2", "B")
	remote := NewTrackIndex()
	remote.Put("A - Song1", t1)
	remote.Put("B - Song2", t2)

	t.Run("set difference", func(t *testing.T) {
		p := Plan(remote, IdentitySet{"A - Song1": {}})

		if p.Outcome != Download {
			t.Errorf("expected Download outcome, got %v", p.Outcome)
		}
		if !reflect.DeepEqual(p.Missing.Keys(), []string{"B - Song2"}) {
			t.Errorf("unexpected plan %v", p.Missing.Keys())
		}
		if p.Present != 1 {
			t.Errorf("expected 1 present, got %d", p.Present)
		}
		if got, _ := p.Missing.Get("B - Song2"); !reflect.DeepEqual(got, t2) {
			t.Errorf("expected T2 in plan, got %+v", got)
		}
	})

	t.Run("up to date", func(t *testing.T) {
		existing := IdentitySet{}
		for _, k := range remote.Keys() {
			existing.Add(k)
		}
		p := Plan(remote, existing)
		if p.Outcome != UpToDate || p.Len() != 0 {
			t.Errorf("expected empty UpToDate plan, got %v with %d", p.Outcome, p.Len())
		}
	})

	t.Run("extra local files are ignored", func(t *testing.T) {
		p := Plan(remote, IdentitySet{"Z - Other": {}})
		if p.Len() != 2 {
			t.Errorf("expected 2 missing, got %d", p.Len())
		}
	})

	t.Run("nil remote", func(t *testing.T) {
		if p := Plan(nil, IdentitySet{}); p.Outcome != UpToDate {
			t.Error("expected UpToDate for nil remote")
		}
	})

	t.Run("order preserved", func(t *testing.T) {
		big := NewTrackIndex()
		for _, k := range []string{"c", "a", "b", "d"} {
			big.Put(k, models.Track{Title: k})
		}
		p := Plan(big, IdentitySet{"a": {}})
		if !reflect.DeepEqual(p.Missing.Keys(), []string{"c", "b", "d"}) {
			t.Errorf("order not preserved: %v", p.Missing.Keys())
		}
	})
}

func TestSummary(t *testing.T) {
	remote := NewTrackIndex()
	remote.Put("x", track("x"))

	if got := Plan(remote, IdentitySet{"x": {}}).Summary("Mix", "/music"); got != "All tracks from Mix already exist in the directory (/music)." {
		t.Errorf("unexpected summary %q", got)
	}
	if got := Plan(remote, IdentitySet{}).Summary("Mix", "/music"); got != "Downloading 1 new track(s) from Mix to (/music)" {
		t.Errorf("unexpected summary %q", got)
	}
}
