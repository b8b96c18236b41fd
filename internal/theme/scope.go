package theme

import "sync"

// Scope applies a theme to a Document for the lifetime of a consultation
// view and restores the previous class on Close.
//
//	s := theme.Enter(doc)
//	defer s.Close()
type Scope struct {
	mu      sync.Mutex
	doc     *Document
	prior   string
	current ID
	closed  bool
}

func Enter(doc *Document) *Scope {
	return &Scope{doc: doc, prior: doc.Class(), current: None}
}

// Apply sets the document class for id. It is a no-op after Close.
func (s *Scope) Apply(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.current = id
	s.doc.setClass(id.Class())
}

func (s *Scope) Current() ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close restores the class the document had at Enter. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.doc.setClass(s.prior)
}
