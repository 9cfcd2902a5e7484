package document

// Reorder moves a top-level element to newIndex, clamped to [0, Len()-1].
func (s *Scene) Reorder(id string, newIndex int) error {
	from, err := s.topLevelIndex("reorder", id)
	if err != nil {
		return err
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if last := len(s.elements) - 1; newIndex > last {
		newIndex = last
	}
	s.move(from, newIndex)
	return nil
}

// BringForward swaps a top-level element with its upper neighbor.
// It is a no-op for the top-most element.
func (s *Scene) BringForward(id string) error {
	i, err := s.topLevelIndex("bring forward", id)
	if err != nil {
		return err
	}
	s.move(i, min(i+1, len(s.elements)-1))
	return nil
}

// SendBackward swaps a top-level element with its lower neighbor.
// It is a no-op for the bottom-most element.
func (s *Scene) SendBackward(id string) error {
	i, err := s.topLevelIndex("send backward", id)
	if err != nil {
		return err
	}
	s.move(i, max(i-1, 0))
	return nil
}

// BringToFront moves a top-level element to the top of the paint order.
func (s *Scene) BringToFront(id string) error {
	i, err := s.topLevelIndex("bring to front", id)
	if err != nil {
		return err
	}
	s.move(i, len(s.elements)-1)
	return nil
}

// SendToBack moves a top-level element to the bottom of the paint order.
func (s *Scene) SendToBack(id string) error {
	i, err := s.topLevelIndex("send to back", id)
	if err != nil {
		return err
	}
	s.move(i, 0)
	return nil
}

func (s *Scene) topLevelIndex(op, id string) (int, error) {
	i, ok := s.IndexOf(id)
	if !ok {
		return 0, invalid(op, "no top-level element %q", id)
	}
	return i, nil
}

func (s *Scene) move(from, to int) {
	if from == to {
		return
	}
	e := s.elements[from]
	if from < to {
		copy(s.elements[from:to], s.elements[from+1:to+1])
	} else {
		copy(s.elements[to+1:from+1], s.elements[to:from])
	}
	s.elements[to] = e
	s.markStale()
	s.emit(EventReordered, e.ID)
}
