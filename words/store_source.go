// words/store_source.go
package words

import (
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
)

// StoreSource serves words from the persistence layer, falling back to the
// built-in table when the word tables are empty.
type StoreSource struct {
	store    persistence.Store
	fallback *SimpleSource
}

func NewStoreSource(store persistence.Store) *StoreSource {
	return &StoreSource{
		store:    store,
		fallback: NewSimpleSource(),
	}
}

func (s *StoreSource) One(level int) (*models.WordHint, error) {
	w, err := s.store.RandomWord(level)
	if err != nil {
		return s.fallback.One(level)
	}
	return w, nil
}

func (s *StoreSource) Group(count int) ([]models.WordHint, error) {
	group, err := s.store.RandomWords(count)
	if err != nil || len(group) < count {
		return s.fallback.Group(count)
	}
	return group, nil
}
