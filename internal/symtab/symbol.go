package symtab

import "github.com/vk/fablec/internal/ast"

// Kind names a symbol namespace. The values double as the Kind field of
// ast.Resolved annotations.
type Kind string

const (
	KindType     Kind = "type"
	KindEntity   Kind = "entity"
	KindLocation Kind = "location"
	KindSection  Kind = "section"
	KindChoice   Kind = "choice"
	KindExit     Kind = "exit"
	KindAction   Kind = "action"
	KindRule     Kind = "rule"
	KindSequence Kind = "sequence"
	KindPhase    Kind = "phase"
)

// Symbol is one declared construct with its compiled identifier. Exactly one
// of the declaration pointers is non-nil, matching Kind.
type Symbol struct {
	Kind     Kind
	ID       string // compiled identifier, unique within the namespace
	Name     string // declared name or label as written
	FileStem string
	Span     ast.Span

	// OwnerID links nested constructs to their container: the section of a
	// choice, the location of an exit, the sequence of a phase.
	OwnerID string

	Type     *ast.TypeDecl
	Entity   *ast.EntityDecl
	Location *ast.LocationDecl
	Section  *ast.SectionDecl
	Choice   *ast.ChoiceDecl
	Exit     *ast.ExitDecl
	Action   *ast.ActionDecl
	Rule     *ast.RuleDecl
	Sequence *ast.SequenceDecl
	Phase    *ast.PhaseDecl
}

// Namespace is an insertion-ordered symbol map. Insertion order equals
// topological file order then source declaration order, which downstream
// emission depends on for byte-identical output.
type Namespace struct {
	kind  Kind
	order []string
	byID  map[string]*Symbol
	dups  map[string][]*Symbol
}

func newNamespace(kind Kind) *Namespace {
	return &Namespace{
		kind: kind,
		byID: make(map[string]*Symbol),
		dups: make(map[string][]*Symbol),
	}
}

// insert registers a symbol. The first declaration of an ID wins its slot in
// the order; later declarations are recorded as collisions for diagnostics
// that list every conflicting site.
func (n *Namespace) insert(s *Symbol) {
	if existing, ok := n.byID[s.ID]; ok {
		if len(n.dups[s.ID]) == 0 {
			n.dups[s.ID] = append(n.dups[s.ID], existing)
		}
		n.dups[s.ID] = append(n.dups[s.ID], s)
		return
	}
	n.byID[s.ID] = s
	n.order = append(n.order, s.ID)
}

// Lookup finds a symbol by compiled identifier.
func (n *Namespace) Lookup(id string) (*Symbol, bool) {
	s, ok := n.byID[id]
	return s, ok
}

// All returns every symbol in insertion order.
func (n *Namespace) All() []*Symbol {
	out := make([]*Symbol, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.byID[id])
	}
	return out
}

// Len returns the number of distinct symbols.
func (n *Namespace) Len() int { return len(n.order) }

// collisions returns, in insertion order, each colliding ID with all of its
// declaration sites.
func (n *Namespace) collisions() [][]*Symbol {
	var out [][]*Symbol
	for _, id := range n.order {
		if sites := n.dups[id]; len(sites) > 1 {
			out = append(out, sites)
		}
	}
	return out
}
