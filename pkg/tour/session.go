// Package tour runs a guided walk: it turns position samples into POI
// highlights and narrations, and owns all the state of one session.
package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/logging"
	"voiceguide/pkg/messages"
	"voiceguide/pkg/model"
	"voiceguide/pkg/narration"
	"voiceguide/pkg/position"
	"voiceguide/pkg/proximity"
)

var (
	ErrNotSimulated = errors.New("poi selection requires simulated mode")
	ErrUnknownPOI   = errors.New("unknown poi")
)

// Map is the map view the session drives.
type Map interface {
	Highlight(id string)
	Unhighlight(id string)
	PlaceUserMarker(p geo.Point)
}

// GuideLoader loads a guide in one language.
type GuideLoader interface {
	Load(ctx context.Context, lang string) (*model.Guide, error)
}

// Options tune a session.
type Options struct {
	Threshold         float64 // trigger radius in metres
	BreadcrumbSpacing float64 // metres between kept trail points
	Composer          *narration.Composer
}

// Session is the tour state machine. Every mutation happens under one mutex,
// so each sample is processed to completion before the next.
type Session struct {
	mu       sync.Mutex
	resolver *proximity.Resolver
	narrator *narration.Controller
	composer *narration.Composer
	view     Map
	loader   GuideLoader

	live   *position.LiveSource
	sim    *position.SimulatedSource
	active position.Source
	mode   position.Mode

	guide         *model.Guide
	language      string
	lastTriggered string
	visited       map[string]bool
	visitedOrder  []string
	trail         *geo.Trail
	lastSample    *position.Sample
	status        string

	subs       map[int]func(model.TourEvent)
	nextSub    int
	guideHooks []func(*model.Guide)
}

// NewSession creates a session with no guide and no active source. watcher
// feeds live mode; nil means live mode is unsupported.
func NewSession(narrator *narration.Controller, view Map, loader GuideLoader, watcher position.Watcher, opts Options) *Session {
	composer := opts.Composer
	if composer == nil {
		composer = narration.NewComposer(true)
	}
	spacing := opts.BreadcrumbSpacing
	if spacing <= 0 {
		spacing = geo.DefaultTrailSpacing
	}
	s := &Session{
		resolver: proximity.NewResolver(opts.Threshold),
		narrator: narrator,
		composer: composer,
		view:     view,
		loader:   loader,
		live:     position.NewLive(watcher),
		sim:      position.NewSimulated(),
		visited:  make(map[string]bool),
		trail:    geo.NewTrail(spacing),
		subs:     make(map[int]func(model.TourEvent)),
		language: "en",
	}
	narrator.OnIdle(s.narrationFinished)
	return s
}

// Subscribe registers fn for every event. fn runs with the session locked:
// it must not block and must not call back into the session.
func (s *Session) Subscribe(fn func(model.TourEvent)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// OnGuideLoaded registers fn to run after every successful guide load,
// outside the session lock.
func (s *Session) OnGuideLoaded(fn func(*model.Guide)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guideHooks = append(s.guideHooks, fn)
}

// HandleSample implements position.Sink.
func (s *Session) HandleSample(src position.Source, sample position.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if src != s.active {
		slog.Debug("Tour: dropping sample from inactive source", "mode", src.Mode())
		return
	}
	if !sample.Valid() {
		slog.Warn("Tour: discarding invalid sample", "lat", sample.Lat, "lon", sample.Lon)
		return
	}

	s.lastSample = &sample
	s.view.PlaceUserMarker(sample.Point)
	if s.mode == position.Live {
		s.trail.Push(sample.Point)
	}
	s.emit(model.TourEvent{Type: model.EventPosition, Title: sample.Point.String(), Lat: sample.Lat, Lon: sample.Lon}, false)

	match, ok := s.resolver.Resolve(sample.Point, s.pois())
	switch {
	case !ok:
		if s.lastTriggered != "" {
			s.leaveLocked()
		}
	case match.POI.ID == s.lastTriggered:
		// still inside the active POI
	default:
		s.triggerLocked(match)
	}

	if s.narrator.State() == narration.Idle {
		s.showLocked(messages.Sprintf(s.language, messages.YourPosition, sample.Lat, sample.Lon))
	}
}

// HandleError implements position.Sink. The watch stays active.
func (s *Session) HandleError(src position.Source, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if src != s.active {
		return
	}
	slog.Warn("Tour: position error", "mode", src.Mode(), "error", err)
	s.showLocked(messages.Sprintf(s.language, position.MessageKey(err)))
}

func (s *Session) triggerLocked(m proximity.Match) {
	poi := m.POI
	if s.lastTriggered != "" {
		s.view.Unhighlight(s.lastTriggered)
	}
	s.view.Highlight(poi.ID)
	if !s.visited[poi.ID] {
		s.visited[poi.ID] = true
		s.visitedOrder = append(s.visitedOrder, poi.ID)
	}
	s.lastTriggered = poi.ID

	s.emit(model.TourEvent{
		Type:    model.EventEntered,
		POIID:   poi.ID,
		Title:   poi.DisplayName(),
		Summary: fmt.Sprintf("%.1f m", m.Distance),
		Lat:     poi.Lat,
		Lon:     poi.Lon,
	}, true)

	script := s.composer.Arrival(s.language, poi.DisplayName(), poi.Description)
	s.speakLocked(model.NarrationArrival, poi, script)
}

func (s *Session) leaveLocked() {
	id := s.lastTriggered
	s.view.Unhighlight(id)
	s.lastTriggered = ""
	s.emit(model.TourEvent{Type: model.EventExited, POIID: id, Title: s.titleOf(id)}, true)
}

func (s *Session) speakLocked(kind model.NarrationKind, poi *model.POI, script string) {
	locale := narration.Locale(s.language)
	if err := s.narrator.Speak(script, locale); err != nil {
		slog.Error("Tour: narration failed", "poi", poi.ID, "error", err)
		return
	}
	s.emit(model.TourEvent{
		Type:    model.EventNarration,
		POIID:   poi.ID,
		Title:   poi.DisplayName(),
		Summary: string(kind),
	}, true)
}

func (s *Session) showLocked(line string) {
	s.status = line
	s.narrator.Show(line)
	s.emit(model.TourEvent{Type: model.EventStatus, Title: line}, false)
}

func (s *Session) narrationFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(model.TourEvent{Type: model.EventControl, POIID: s.lastTriggered, Title: "narration finished"}, false)
}

// Play resumes paused speech, or replays the description of the active POI.
func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.narrator.Resume() {
		s.emit(model.TourEvent{Type: model.EventControl, Title: "resumed"}, false)
		return
	}
	poi := s.guide.Find(s.lastTriggered)
	if poi == nil {
		return
	}
	s.speakLocked(model.NarrationReplay, poi, poi.Description)
}

// Pause pauses speech if speaking.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.narrator.Pause() {
		s.emit(model.TourEvent{Type: model.EventControl, Title: "paused"}, false)
	}
}

// Stop cancels speech, closes the highlight and forgets the active POI.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.narrator.Stop()
	if s.lastTriggered != "" {
		s.view.Unhighlight(s.lastTriggered)
		s.lastTriggered = ""
	}
	s.emit(model.TourEvent{Type: model.EventControl, Title: "stopped"}, false)
}

// SelectPOI visits a POI in simulated mode.
func (s *Session) SelectPOI(id string) error {
	s.mu.Lock()
	if s.mode != position.Simulated {
		s.mu.Unlock()
		return ErrNotSimulated
	}
	poi := s.guide.Find(id)
	sim := s.sim
	s.mu.Unlock()

	if poi == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPOI, id)
	}
	// The sample comes back through HandleSample, which takes the lock.
	return sim.Select(poi)
}

// SetMode switches the position source. The previous source is stopped
// before the next one starts. If live mode cannot start, the session falls
// back to simulated mode and returns the error.
func (s *Session) SetMode(mode position.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.mode == mode {
		return nil
	}
	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}

	var next position.Source = s.sim
	if mode == position.Live {
		next = s.live
	} else {
		s.trail.Reset()
	}

	var startErr error
	if err := next.Start(s); err != nil {
		slog.Warn("Tour: cannot start position source", "mode", mode, "error", err)
		s.showLocked(messages.Sprintf(s.language, position.MessageKey(err)))
		startErr = fmt.Errorf("start %s source: %w", mode, err)
		next = s.sim
		mode = position.Simulated
		if err := next.Start(s); err != nil {
			return errors.Join(startErr, err)
		}
	}

	s.active = next
	s.mode = mode
	s.emit(model.TourEvent{Type: model.EventMode, Title: string(mode)}, true)
	return startErr
}

// LoadGuide reloads the guide in lang and starts the tour over: the visited
// set and the active POI are reset.
func (s *Session) LoadGuide(ctx context.Context, lang string) error {
	return s.load(ctx, lang, true)
}

// SetLanguage reloads names and descriptions in lang. Progress is kept.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	return s.load(ctx, lang, false)
}

func (s *Session) load(ctx context.Context, lang string, reset bool) error {
	// Loading may hit the network, keep the lock free meanwhile.
	g, err := s.loader.Load(ctx, lang)

	s.mu.Lock()
	if err != nil {
		s.showLocked(messages.Sprintf(s.language, messages.LoadFailed, languageName(lang)))
		s.emit(model.TourEvent{Type: model.EventGuide, Title: "load failed", Summary: err.Error()}, true)
		s.mu.Unlock()
		return fmt.Errorf("load guide %s: %w", lang, err)
	}

	s.guide = g
	s.language = lang
	if reset {
		s.visited = make(map[string]bool)
		s.visitedOrder = nil
	}
	if s.lastTriggered != "" && (reset || g.Find(s.lastTriggered) == nil) {
		s.view.Unhighlight(s.lastTriggered)
		s.lastTriggered = ""
	}
	s.emit(model.TourEvent{
		Type:    model.EventGuide,
		Title:   g.Name,
		Summary: fmt.Sprintf("%s, %d POIs", lang, len(g.POIs)),
	}, true)
	hooks := append([]func(*model.Guide){}, s.guideHooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(g)
	}
	return nil
}

// Close stops the active source and all speech.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}
	s.narrator.Stop()
}

func (s *Session) pois() []*model.POI {
	if s.guide == nil {
		return nil
	}
	return s.guide.POIs
}

func (s *Session) titleOf(id string) string {
	if poi := s.guide.Find(id); poi != nil {
		return poi.DisplayName()
	}
	return id
}

func (s *Session) emit(ev model.TourEvent, persist bool) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if persist {
		logging.LogEvent(&ev)
	}
	for _, fn := range s.subs {
		fn(ev)
	}
}

// languageName is the language's name in itself ("Español"), or the code.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}
