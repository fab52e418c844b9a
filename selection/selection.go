package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/crossover/rickmorty"
)

// ErrAlreadySelected is returned when a character is chosen for a slot while
// it occupies the other slot
var ErrAlreadySelected = errors.New("character already selected")

// Notifier delivers user-facing notices
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(msg string)

// Notify calls f(msg)
func (f NotifierFunc) Notify(msg string) { f(msg) }

// LogNotifier writes notices as warnings
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs msg at warn level
func (n LogNotifier) Notify(msg string) {
	n.Logger.Warn().Msg(msg)
}

// ChangeFunc is called with the slot contents after every applied change
type ChangeFunc func(first, second *rickmorty.Character)

// Selection holds up to two characters in numbered slots. The same character
// can never occupy both slots.
type Selection struct {
	notifier Notifier

	mu       sync.Mutex
	first    *rickmorty.Character
	second   *rickmorty.Character
	onChange []ChangeFunc
}

// New creates an empty selection. A nil notifier discards notices.
func New(notifier Notifier) *Selection {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Selection{notifier: notifier}
}

// OnChange registers fn to run after every applied change
func (s *Selection) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// SelectFirst puts c into slot 1 unless it is already in slot 2
func (s *Selection) SelectFirst(c rickmorty.Character) error {
	return s.selectInto(1, c)
}

// SelectSecond puts c into slot 2 unless it is already in slot 1
func (s *Selection) SelectSecond(c rickmorty.Character) error {
	return s.selectInto(2, c)
}

// ClearFirst empties slot 1
func (s *Selection) ClearFirst() {
	_ = s.apply(func() error {
		s.first = nil
		return nil
	})
}

// ClearSecond empties slot 2
func (s *Selection) ClearSecond() {
	_ = s.apply(func() error {
		s.second = nil
		return nil
	})
}

// ClearAll empties both slots
func (s *Selection) ClearAll() {
	_ = s.apply(func() error {
		s.first = nil
		s.second = nil
		return nil
	})
}

// First returns a copy of the character in slot 1, or nil
func (s *Selection) First() *rickmorty.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.first)
}

// Second returns a copy of the character in slot 2, or nil
func (s *Selection) Second() *rickmorty.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.second)
}

// HasAny reports whether at least one slot is filled
func (s *Selection) HasAny() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first != nil || s.second != nil
}

// HasBoth reports whether both slots are filled
func (s *Selection) HasBoth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first != nil && s.second != nil
}

func (s *Selection) selectInto(slot int, c rickmorty.Character) error {
	return s.apply(func() error {
		other, otherSlot := s.second, 2
		if slot == 2 {
			other, otherSlot = s.first, 1
		}
		if other != nil && other.ID == c.ID {
			s.notifier.Notify(fmt.Sprintf("%s is already selected in Character #%d", c.Name, otherSlot))
			return fmt.Errorf("%w: %s in Character #%d", ErrAlreadySelected, c.Name, otherSlot)
		}

		if slot == 1 {
			s.first = &c
		} else {
			s.second = &c
		}
		return nil
	})
}

// apply runs mutate under the lock and fires the change hooks once the lock
// is released. A mutation that returns an error changes nothing and fires no
// hooks.
func (s *Selection) apply(mutate func() error) error {
	s.mu.Lock()
	if err := mutate(); err != nil {
		s.mu.Unlock()
		return err
	}
	first, second := clone(s.first), clone(s.second)
	hooks := append([]ChangeFunc(nil), s.onChange...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(first, second)
	}
	return nil
}

func clone(c *rickmorty.Character) *rickmorty.Character {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
