package player

import (
	"context"
	"testing"
	"time"
)

func fastPlayer() *HeroPlayer {
	p := NewHeroPlayer()
	p.delay = 5 * time.Millisecond
	return p
}

func TestStateTransitions(t *testing.T) {
	p := NewHeroPlayer()
	if got := p.Status().State; got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}

	p.Load("https://www.youtube.com/embed/abc?autoplay=1")
	status := p.Status()
	if status.State != StateLoading || status.Src == "" || !status.Muted {
		t.Fatalf("expected muted loading player with src, got %+v", status)
	}

	if err := p.HandleEvent(EventReady); err != nil {
		t.Fatalf("ready event failed: %v", err)
	}
	if err := p.HandleEvent(EventPlaying); err != nil {
		t.Fatalf("playing event failed: %v", err)
	}
	if got := p.Status().State; got != StatePlaying {
		t.Fatalf("expected playing, got %s", got)
	}

	p.Load("")
	if got := p.Status().State; got != StateIdle {
		t.Fatalf("expected idle after clearing source, got %s", got)
	}
}

func TestPlayingIgnoredWhileIdle(t *testing.T) {
	p := NewHeroPlayer()
	if err := p.HandleEvent(EventPlaying); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Status().State; got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestLoadSameSourceIsNoOp(t *testing.T) {
	p := NewHeroPlayer()
	p.Load("https://example.test/embed")
	_ = p.HandleEvent(EventReady)
	_ = p.HandleEvent(EventPlaying)

	p.Load("https://example.test/embed")
	status := p.Status()
	if status.State != StatePlaying || !status.Ready {
		t.Fatalf("expected Load of the current source to keep state, got %+v", status)
	}
}

func TestReloadResetsReadiness(t *testing.T) {
	p := fastPlayer()
	p.Load("https://example.test/embed")
	_ = p.HandleEvent(EventReady)
	_ = p.HandleEvent(EventPlaying)
	if result := p.Unmute(context.Background()); !result.Unmuted {
		t.Fatalf("expected unmute before reload to succeed, got %+v", result)
	}

	p.Reload("https://example.test/embed")
	status := p.Status()
	if status.State != StateLoading || status.Ready || !status.Muted {
		t.Fatalf("expected a fresh muted loading player, got %+v", status)
	}

	start := time.Now()
	result := p.Unmute(context.Background())
	if result.Unmuted || result.Message != RefreshMessage {
		t.Fatalf("expected new element to need a ready event, got %+v", result)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("expected bounded retries before giving up, finished in %s", elapsed)
	}

	p.Reload("")
	if got := p.Status().State; got != StateIdle {
		t.Fatalf("expected idle after reloading without a source, got %s", got)
	}
}

func TestUnmuteWhenReady(t *testing.T) {
	p := fastPlayer()
	p.Load("https://example.test/embed")
	_ = p.HandleEvent(EventReady)

	result := p.Unmute(context.Background())
	if !result.Unmuted || result.Instruction == "" || result.Message != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if p.Status().Muted {
		t.Fatal("expected player to be unmuted")
	}
}

func TestUnmuteFallsBackToMessage(t *testing.T) {
	p := fastPlayer()
	p.Load("https://example.test/embed")

	start := time.Now()
	result := p.Unmute(context.Background())
	if result.Unmuted {
		t.Fatal("expected unmute to fail")
	}
	if result.Message != RefreshMessage {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("expected three delayed retries, finished in %s", elapsed)
	}
	if !p.Status().Muted {
		t.Fatal("expected player to stay muted")
	}
}

func TestUnmuteSucceedsWhenPlayerBecomesReady(t *testing.T) {
	p := NewHeroPlayer()
	p.delay = 20 * time.Millisecond
	p.Load("https://example.test/embed")

	go func() {
		time.Sleep(25 * time.Millisecond)
		_ = p.HandleEvent(EventReady)
	}()

	if result := p.Unmute(context.Background()); !result.Unmuted {
		t.Fatalf("expected unmute to succeed on retry, got %+v", result)
	}
}

func TestUnmuteAfterErrorEvent(t *testing.T) {
	p := fastPlayer()
	p.Load("https://example.test/embed")
	_ = p.HandleEvent(EventReady)
	_ = p.HandleEvent(EventError)

	if result := p.Unmute(context.Background()); result.Unmuted {
		t.Fatal("expected unmute to fail after player error")
	}
}

func TestUnmuteIdlePlayer(t *testing.T) {
	p := fastPlayer()
	if result := p.Unmute(context.Background()); result.Unmuted || result.Message != RefreshMessage {
		t.Fatalf("unexpected result for image-only hero: %+v", result)
	}
}

func TestParseEvent(t *testing.T) {
	for _, name := range []string{"ready", "ERROR", " playing "} {
		if _, err := ParseEvent(name); err != nil {
			t.Fatalf("ParseEvent(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseEvent("paused"); err != ErrUnknownEvent {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestRegistryReturnsSamePlayerPerVisitor(t *testing.T) {
	r := NewRegistry(10, time.Hour)
	a := r.For("a")
	if r.For("a") != a {
		t.Fatal("expected the same player for the same visitor")
	}
	if r.For("b") == a {
		t.Fatal("expected a different player for another visitor")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 players, got %d", r.Len())
	}
}

func TestRegistryAppliesUnmuteRetry(t *testing.T) {
	r := NewRegistry(10, time.Hour, WithUnmuteRetry(1, time.Millisecond))
	p := r.For("a")
	if p.retries != 1 || p.delay != time.Millisecond {
		t.Fatalf("expected retry options on new players, got retries=%d delay=%s", p.retries, p.delay)
	}
}
