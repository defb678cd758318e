package chart

import "sync"

// MemorySurface keeps the committed markup in memory. The CLI writes it out as a report;
// tests inspect it.
type MemorySurface struct {
	width float64

	mu      sync.Mutex
	scene   *Scene
	markup  string
	note    string
	focus   Focus
	tooltip Tooltip
	commits int
	clears  int
}

func NewMemorySurface(width float64) *MemorySurface {
	return &MemorySurface{width: width}
}

func (s *MemorySurface) Width() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// SetWidth simulates the container being resized
func (s *MemorySurface) SetWidth(w float64) {
	s.mu.Lock()
	s.width = w
	s.mu.Unlock()
}

func (s *MemorySurface) Commit(scene *Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = scene
	if scene == nil {
		s.markup = ""
		s.clears++
		return
	}
	s.markup = scene.Markup()
	s.commits++
}

func (s *MemorySurface) SetNote(text string) {
	s.mu.Lock()
	s.note = text
	s.mu.Unlock()
}

// MoveFocus re-serialises the scene so Markup reflects the marker position
func (s *MemorySurface) MoveFocus(f Focus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = f
	if s.scene != nil {
		s.markup = s.scene.Markup()
	}
}

func (s *MemorySurface) ShowTooltip(t Tooltip) {
	s.mu.Lock()
	s.tooltip = t
	s.mu.Unlock()
}

func (s *MemorySurface) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

func (s *MemorySurface) Markup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup
}

func (s *MemorySurface) Note() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

func (s *MemorySurface) Focus() Focus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

func (s *MemorySurface) Tooltip() Tooltip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

// Commits counts non-empty commits, Clears counts empty ones
func (s *MemorySurface) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *MemorySurface) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
