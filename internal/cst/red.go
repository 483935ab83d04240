package cst

import (
	"wdlc/internal/source"
	"wdlc/internal/token"
)

// Tree owns a completed green forest and the file it was parsed from; it is
// the entry point for obtaining the root Node handle.
type Tree struct {
	arena *greenArena
	root  GreenID
	file  *source.File
}

// NewTree wraps a Builder's finished output. rootID must be the ID returned
// by the matching top-level FinishNode call.
func NewTree(b *Builder, rootID GreenID, file *source.File) *Tree {
	return &Tree{arena: b.arena, root: rootID, file: file}
}

// Root returns a red handle to the document root.
func (t *Tree) Root() *Node {
	return &Node{tree: t, green: t.arena.get(t.root), offset: 0}
}

// File returns the source file this tree was parsed from.
func (t *Tree) File() *source.File {
	return t.file
}

// Node is a red handle: a green node paired with the context needed to
// navigate and locate it (§4.3). Red handles are cheap value-ish structs
// recreated on each traversal rather than cached, so the green layer they
// point into stays the only long-lived, shareable allocation.
type Node struct {
	tree     *Tree
	green    *GreenNode
	parent   *Node
	indexInP int
	offset   uint32
}

// Kind returns the node's syntax kind.
func (n *Node) Kind() Kind {
	if n == nil || n.green == nil {
		return KindError
	}
	return n.green.Kind
}

// Span returns the node's absolute byte span within its source file.
func (n *Node) Span() source.Span {
	fileID := source.FileID(0)
	if n.tree != nil && n.tree.file != nil {
		fileID = n.tree.file.ID
	}
	return source.Span{File: fileID, Start: n.offset, End: n.offset + n.green.Len()}
}

// Parent returns the enclosing node, or nil at the document root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Text reconstructs this node's exact source text, including interior
// trivia, by concatenating every descendant token's leading trivia and text.
func (n *Node) Text() string {
	buf := make([]byte, 0, n.green.Len())
	n.appendText(&buf)
	return string(buf)
}

func (n *Node) appendText(buf *[]byte) {
	for _, c := range n.green.Children {
		if c.Token != nil {
			appendTokenText(buf, c.Token)
		} else {
			child := n.tree.arena.get(c.NodeID)
			(&Node{tree: n.tree, green: child}).appendText(buf)
		}
	}
}

func appendTokenText(buf *[]byte, t *GreenToken) {
	for _, tr := range t.Leading {
		*buf = append(*buf, tr.Text...)
	}
	*buf = append(*buf, t.Text...)
}

// Element is either a child Node or a child Token, mirroring the green
// layer's GreenChild but carrying red-layer position information.
type Element struct {
	Node  *Node
	Token *Token
}

// Token is a red handle to a leaf token: its green data plus its absolute
// position.
type Token struct {
	green  *GreenToken
	parent *Node
	offset uint32
}

// Kind returns the token's lexical kind.
func (t *Token) Kind() token.Kind { return t.green.Kind }

// Text returns the token's own text, excluding leading trivia.
func (t *Token) Text() string { return t.green.Text }

// Leading returns the trivia immediately preceding this token.
func (t *Token) Leading() []token.Trivia { return t.green.Leading }

// Span returns the token's absolute byte span, excluding leading trivia.
func (t *Token) Span() source.Span {
	fileID := source.FileID(0)
	if t.parent != nil && t.parent.tree != nil && t.parent.tree.file != nil {
		fileID = t.parent.tree.file.ID
	}
	var triviaLen uint32
	for _, tr := range t.green.Leading {
		triviaLen += tr.Span.End - tr.Span.Start
	}
	start := t.offset + triviaLen
	return source.Span{File: fileID, Start: start, End: start + uint32(len(t.green.Text))}
}

// ChildrenWithTokens returns every direct child, in order, as Elements.
func (n *Node) ChildrenWithTokens() []Element {
	elems := make([]Element, 0, len(n.green.Children))
	cursor := n.offset
	for i, c := range n.green.Children {
		if c.Token != nil {
			elems = append(elems, Element{Token: &Token{green: c.Token, parent: n, offset: cursor}})
			cursor += c.Token.Len()
		} else {
			child := n.tree.arena.get(c.NodeID)
			childNode := &Node{tree: n.tree, green: child, parent: n, indexInP: i, offset: cursor}
			elems = append(elems, Element{Node: childNode})
			cursor += child.Len()
		}
	}
	return elems
}

// Children returns only the direct child Nodes (tokens are skipped).
func (n *Node) Children() []*Node {
	var out []*Node
	for _, e := range n.ChildrenWithTokens() {
		if e.Node != nil {
			out = append(out, e.Node)
		}
	}
	return out
}

// FirstToken returns the first token reachable by descending into the
// leftmost child at every level, or nil for an empty node.
func (n *Node) FirstToken() *Token {
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil {
			return e.Token
		}
		if tok := e.Node.FirstToken(); tok != nil {
			return tok
		}
	}
	return nil
}

// LastToken is the rightmost-descent counterpart of FirstToken.
func (n *Node) LastToken() *Token {
	elems := n.ChildrenWithTokens()
	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		if e.Token != nil {
			return e.Token
		}
		if tok := e.Node.LastToken(); tok != nil {
			return tok
		}
	}
	return nil
}

// NextSibling returns the next child of this node's parent, or nil if this
// is the last child or the root.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	siblings := n.parent.Children()
	for i, s := range siblings {
		if s.indexInP == n.indexInP && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

// Ancestors yields n and every enclosing node up to the root, innermost
// first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}

// Preorder yields n and every descendant node in depth-first document order.
func (n *Node) Preorder() []*Node {
	out := []*Node{n}
	for _, child := range n.Children() {
		out = append(out, child.Preorder()...)
	}
	return out
}

// PreorderWithTokens is Preorder's counterpart including leaf tokens,
// interleaved in document order.
func (n *Node) PreorderWithTokens() []Element {
	out := []Element{{Node: n}}
	for _, e := range n.ChildrenWithTokens() {
		if e.Token != nil {
			out = append(out, e)
		} else {
			out = append(out, e.Node.PreorderWithTokens()...)
		}
	}
	return out
}

// Descendants returns every descendant node (not including n itself) in
// document order.
func (n *Node) Descendants() []*Node {
	all := n.Preorder()
	if len(all) == 0 {
		return nil
	}
	return all[1:]
}
