package quiztree

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Seed is one (reference text, question, expected answer) triple produced
// by content ingestion.
type Seed struct {
	ReferenceText string `json:"reference_text"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

// UnmarshalJSON also accepts "text" for the reference passage, the key
// used by older chunk exports.
func (s *Seed) UnmarshalJSON(data []byte) error {
	var raw struct {
		ReferenceText string `json:"reference_text"`
		Text          string `json:"text"`
		Question      string `json:"question"`
		Answer        string `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ReferenceText = raw.ReferenceText
	if s.ReferenceText == "" {
		s.ReferenceText = raw.Text
	}
	s.Question = raw.Question
	s.Answer = raw.Answer
	return nil
}

// Progress is the cursor bookkeeping exposed to callers.
type Progress struct {
	CoreQuestionIndex  int `json:"core_question_index"`
	TotalCoreQuestions int `json:"total_core_questions"`
	RefinementIndex    int `json:"refinement_index"`
	RefinementCount    int `json:"refinement_count"`
	Depth              int `json:"depth"`
}

// Engine walks a question forest in pre-order and grows it on demand.
// An Engine is not safe for concurrent use; callers serialize turns.
type Engine struct {
	tree *Tree
	head NodeID

	current         NodeID
	depth           int
	coreIndex       int
	refinementIndex int
	refinementCount int
	totalCore       int
}

// New builds one basic node per seed, linked into a single top-level
// sequence. Seeds are validated before anything is allocated, so a bad
// seed yields no engine at all. An empty seed list is a finished engine.
func New(seeds []Seed) (*Engine, error) {
	for i, s := range seeds {
		if strings.TrimSpace(s.Question) == "" {
			return nil, fmt.Errorf("%w: seed %d has an empty question", ErrInvalidArgument, i)
		}
	}

	tree := NewTree()
	e := &Engine{
		tree:      tree,
		head:      NoNode,
		current:   NoNode,
		totalCore: len(seeds),
	}

	prev := NoNode
	for _, s := range seeds {
		id, err := tree.NewNode(KindBasic, s.ReferenceText, strings.TrimSpace(s.Question))
		if err != nil {
			return nil, err
		}
		tree.Node(id).expected = s.Answer
		if prev == NoNode {
			e.head = id
		} else {
			tree.Node(prev).nextSibling = id
		}
		prev = id
	}
	e.current = e.head
	return e, nil
}

// Tree exposes the underlying arena for context rendering.
func (e *Engine) Tree() *Tree {
	return e.tree
}

// Current returns the active node, or nil once traversal is finished.
func (e *Engine) Current() *Node {
	return e.tree.Node(e.current)
}

// IsFinished reports whether the cursor is absent.
func (e *Engine) IsFinished() bool {
	return e.current == NoNode
}

// Depth is 0 on the top-level sequence and grows by one per descent.
func (e *Engine) Depth() int {
	return e.depth
}

// Progress snapshots the cursor counters.
func (e *Engine) Progress() Progress {
	return Progress{
		CoreQuestionIndex:  e.coreIndex,
		TotalCoreQuestions: e.totalCore,
		RefinementIndex:    e.refinementIndex,
		RefinementCount:    e.refinementCount,
		Depth:              e.depth,
	}
}

// Advance moves the cursor one step in pre-order: into the first child,
// else to the next sibling, else up until an ancestor has a next sibling.
// If none does, traversal is finished. Advance on a finished engine is a
// no-op.
func (e *Engine) Advance() {
	cur := e.tree.Node(e.current)
	if cur == nil {
		return
	}

	switch {
	case cur.firstChild != NoNode:
		e.current = cur.firstChild
		e.depth++

	case cur.nextSibling != NoNode:
		e.current = cur.nextSibling
		if e.tree.Node(e.current).kind == KindRefinement {
			e.refinementIndex++
		} else {
			e.coreIndex++
		}

	default:
		n := cur
		for n.nextSibling == NoNode && n.parent != NoNode {
			n = e.tree.Node(n.parent)
			e.depth--
		}
		e.current = n.nextSibling
		e.coreIndex++
		e.refinementIndex = 0
		e.refinementCount = 0
	}
}

// Graft creates one refinement node per non-empty question text under
// parent, in order, each inheriting parent's reference text. It returns the
// number of nodes created. A missing parent or an empty list creates
// nothing. Grafting is only meant for the node currently under evaluation.
func (e *Engine) Graft(parent NodeID, questions []string) (int, error) {
	p := e.tree.Node(parent)
	if p == nil || len(questions) == 0 {
		return 0, nil
	}
	if p.kind == KindRefinement {
		return 0, fmt.Errorf("%w: cannot graft under refinement node %d", ErrInvalidArgument, parent)
	}

	created := 0
	prev := NoNode
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		id, err := e.tree.NewNode(KindRefinement, p.referenceText, q)
		if err != nil {
			return created, err
		}
		if prev == NoNode {
			if err := e.tree.AddChild(parent, id); err != nil {
				return created, err
			}
		} else {
			e.tree.linkAfter(prev, id)
		}
		prev = id
		created++
	}

	e.refinementCount = created
	return created, nil
}
