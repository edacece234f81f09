package graph

import "github.com/starford/graphblog/internal/models"

// nodeSet keeps one node per id in first-seen order.
type nodeSet struct {
	pos  map[string]int
	list []models.Node
}

func newNodeSet() *nodeSet {
	return &nodeSet{pos: make(map[string]int), list: []models.Node{}}
}

// addFull inserts or upgrades the node for m.ID. It returns false if a full
// node with that id is already present.
func (s *nodeSet) addFull(m models.Metadata) bool {
	if i, ok := s.pos[m.ID]; ok {
		if !s.list[i].IsShallow() {
			return false
		}
		s.list[i] = models.FullNode(m)
		return true
	}
	s.pos[m.ID] = len(s.list)
	s.list = append(s.list, models.FullNode(m))
	return true
}

// addShallow inserts an id-only node unless the id is already known.
func (s *nodeSet) addShallow(id string) {
	if _, ok := s.pos[id]; ok {
		return
	}
	s.pos[id] = len(s.list)
	s.list = append(s.list, models.ShallowNode(id))
}
