package quiztree

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside its Tree.
type NodeID int

// NoNode is the absent link.
const NoNode NodeID = -1

// Node is a single question slot. Links are ids into the owning Tree:
// FirstChild and NextSibling are the owning edges, Parent is a plain
// back-reference.
type Node struct {
	id            NodeID
	kind          Kind
	referenceText string
	question      string
	expected      string
	answer        string
	feedback      []string

	parent      NodeID
	firstChild  NodeID
	nextSibling NodeID
}

func (n *Node) ID() NodeID { return n.id }
func (n *Node) Kind() Kind { return n.kind }
func (n *Node) ReferenceText() string { return n.referenceText }
func (n *Node) Question() string { return n.question }
func (n *Node) ExpectedAnswer() string { return n.expected }
func (n *Node) Answer() string { return n.answer }
func (n *Node) Parent() NodeID { return n.parent }
func (n *Node) FirstChild() NodeID { return n.firstChild }
func (n *Node) NextSibling() NodeID { return n.nextSibling }
func (n *Node) IsRoot() bool { return n.parent == NoNode }
func (n *Node) HasChildren() bool { return n.firstChild != NoNode }
func (n *Node) Attempts() int { return len(n.feedback) }
func (n *Node) SetAnswer(answer string) { n.answer = answer }

// Feedback returns a copy of the feedback history, oldest first.
func (n *Node) Feedback() []string {
	out := make([]string, len(n.feedback))
	copy(out, n.feedback)
	return out
}

// AppendFeedback records one graded attempt.
func (n *Node) AppendFeedback(feedback string) {
	n.feedback = append(n.feedback, feedback)
}

// NodeView is a detached value snapshot of a node. It carries no links:
// it is meant for serialization, not as a copy of the subtree.
type NodeView struct {
	ID             NodeID   `json:"id"`
	Kind           Kind     `json:"kind"`
	ReferenceText  string   `json:"reference_text"`
	Question       string   `json:"question"`
	ExpectedAnswer string   `json:"expected_answer,omitempty"`
	Answer         string   `json:"answer,omitempty"`
	Feedback       []string `json:"feedback,omitempty"`
}

// Tree is an arena of nodes forming a first-child / next-sibling forest.
type Tree struct {
	nodes []*Node
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of nodes ever created in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node for id, or nil if id is NoNode or unknown.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// NewNode allocates an unlinked node. The kind must be a defined Kind.
func (t *Tree) NewNode(kind Kind, referenceText, question string) (NodeID, error) {
	if !kind.Valid() {
		return NoNode, fmt.Errorf("%w: %s", ErrInvalidArgument, kind)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &Node{
		id:            id,
		kind:          kind,
		referenceText: referenceText,
		question:      question,
		parent:        NoNode,
		firstChild:    NoNode,
		nextSibling:   NoNode,
	})
	return id, nil
}

// AddChild attaches child under parent. When parent already has children
// the new node is linked after the last one, so an existing chain is never
// orphaned.
func (t *Tree) AddChild(parent, child NodeID) error {
	p, c := t.Node(parent), t.Node(child)
	if p == nil || c == nil {
		return fmt.Errorf("%w: add child %d under %d", ErrInvalidArgument, child, parent)
	}
	if parent == child {
		return fmt.Errorf("%w: node %d cannot be its own child", ErrInvalidArgument, child)
	}
	c.parent = parent
	if p.firstChild == NoNode {
		p.firstChild = child
		return nil
	}
	t.Node(t.lastChild(parent)).nextSibling = child
	return nil
}

// linkAfter makes next the sibling following prev, under prev's parent.
func (t *Tree) linkAfter(prev, next NodeID) {
	p, n := t.Node(prev), t.Node(next)
	n.parent = p.parent
	n.nextSibling = p.nextSibling
	p.nextSibling = next
}

func (t *Tree) lastChild(id NodeID) NodeID {
	last := NoNode
	for c := t.Node(id).firstChild; c != NoNode; c = t.Node(c).nextSibling {
		last = c
	}
	return last
}

// CountChildren walks the child chain of id.
func (t *Tree) CountChildren(id NodeID) int {
	n := t.Node(id)
	if n == nil {
		return 0
	}
	count := 0
	for c := n.firstChild; c != NoNode; c = t.Node(c).nextSibling {
		count++
	}
	return count
}

// siblings returns the child chain of id's parent, including id itself.
// A root node has no siblings in this sense.
func (t *Tree) siblings(id NodeID) []*Node {
	n := t.Node(id)
	if n == nil || n.parent == NoNode {
		return nil
	}
	var out []*Node
	for c := t.Node(n.parent).firstChild; c != NoNode; c = t.Node(c).nextSibling {
		out = append(out, t.Node(c))
	}
	return out
}

// contextHead is the node whose question opens a context string: the
// parent, or the node itself when it is a root.
func (t *Tree) contextHead(id NodeID) *Node {
	n := t.Node(id)
	if n.parent == NoNode {
		return n
	}
	return t.Node(n.parent)
}

// AnswersContext renders the compact context used when generating further
// follow-ups: the original question and answer, then every non-empty
// sibling answer one per line.
func (t *Tree) AnswersContext(id NodeID) string {
	if t.Node(id) == nil {
		return ""
	}
	head := t.contextHead(id)
	parts := []string{
		fmt.Sprintf("Original Question: %s \nAnswers (one per line):\n%s. ", head.question, head.answer),
	}
	for _, s := range t.siblings(id) {
		if s.answer != "" {
			parts = append(parts, s.answer)
		}
	}
	return strings.Join(parts, "\n")
}

// ConversationContext renders the echo context used when re-asking: every
// entry repeats both its question and its answer.
func (t *Tree) ConversationContext(id NodeID) string {
	if t.Node(id) == nil {
		return ""
	}
	head := t.contextHead(id)
	parts := []string{
		fmt.Sprintf("Original Question: %s, Original user answer: %s. ", head.question, head.answer),
	}
	for _, s := range t.siblings(id) {
		parts = append(parts, fmt.Sprintf("Refinement Question: %s, Answer: %s", s.question, s.answer))
	}
	return strings.Join(parts, "\n")
}

// SiblingQuestionsExcept lists the questions of id's siblings, skipping id.
func (t *Tree) SiblingQuestionsExcept(id NodeID) string {
	var qs []string
	for _, s := range t.siblings(id) {
		if s.id != id {
			qs = append(qs, s.question)
		}
	}
	return strings.Join(qs, "\n")
}

// Detach returns a link-free snapshot of id.
func (t *Tree) Detach(id NodeID) (NodeView, bool) {
	n := t.Node(id)
	if n == nil {
		return NodeView{}, false
	}
	return NodeView{
		ID:             n.id,
		Kind:           n.kind,
		ReferenceText:  n.referenceText,
		Question:       n.question,
		ExpectedAnswer: n.expected,
		Answer:         n.answer,
		Feedback:       n.Feedback(),
	}, true
}
