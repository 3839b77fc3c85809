package evaluation

// MaxTotal is the total weight a complete criterion set adds up to.
const MaxTotal = 100

// Criterion is a named, weighted component of a class evaluation scheme.
type Criterion struct {
	ID     int    `json:"id" yaml:"-"`
	Name   string `json:"name" yaml:"name"`
	Weight int    `json:"weight" yaml:"weight"` // percentage, 0 < Weight <= MaxTotal
}

// CriterionSet is the ordered collection of criteria of one class.
// Insertion order is display order. Ids come from a monotonic counter owned by the set.
// Only the Editor mutates a CriterionSet.
type CriterionSet struct {
	lastID   int
	criteria []Criterion
}

func NewCriterionSet() *CriterionSet {
	return &CriterionSet{}
}

// Criteria returns a copy of the criteria in display order.
func (s *CriterionSet) Criteria() []Criterion {
	out := make([]Criterion, len(s.criteria))
	copy(out, s.criteria)
	return out
}

func (s *CriterionSet) Len() int { return len(s.criteria) }

func (s *CriterionSet) Get(id int) (Criterion, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.criteria[i], true
	}
	return Criterion{}, false
}

func (s *CriterionSet) indexOf(id int) int {
	for i, c := range s.criteria {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *CriterionSet) add(name string, weight int) Criterion {
	s.lastID++
	c := Criterion{ID: s.lastID, Name: name, Weight: weight}
	s.criteria = append(s.criteria, c)
	return c
}

// replace swaps the criterion with the same id in place.
func (s *CriterionSet) replace(c Criterion) bool {
	i := s.indexOf(c.ID)
	if i < 0 {
		return false
	}
	s.criteria[i] = c
	return true
}

func (s *CriterionSet) remove(id int) (Criterion, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Criterion{}, false
	}
	c := s.criteria[i]
	s.criteria = append(s.criteria[:i], s.criteria[i+1:]...)
	return c, true
}
