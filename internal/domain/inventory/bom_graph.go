package inventory

import (
	"sort"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Requirement cantidad acumulada de un componente por unidad del producto raíz.
// Depth es la mayor profundidad a la que aparece (1 = componente directo).
// Leaf indica que el componente no tiene BOM activa.
type Requirement struct {
	ComponentID           string
	QuantityPerParentUnit decimal.Decimal
	Depth                 int
	Leaf                  bool
}

// LinesFunc devuelve las líneas de la versión activa de un producto (vacío si no tiene BOM).
type LinesFunc func(productID string) ([]entity.BOMLine, error)

// Graph grafo padre -> componentes de las versiones activas de un tenant.
type Graph struct {
	edges map[string][]string
}

// NewGraph construye el grafo desde las líneas activas.
func NewGraph(lines []entity.BOMLine) *Graph {
	g := &Graph{edges: make(map[string][]string)}
	for _, l := range lines {
		g.edges[l.ParentProductID] = appendUnique(g.edges[l.ParentProductID], l.ComponentProductID)
	}
	return g
}

// SetComponents reemplaza los componentes de un padre (nueva versión activa).
func (g *Graph) SetComponents(parentID string, components []string) {
	var out []string
	for _, c := range components {
		out = appendUnique(out, c)
	}
	g.edges[parentID] = out
}

// Substitute reemplaza oldID por newID en los padres indicados.
func (g *Graph) Substitute(oldID, newID string, parents []string) {
	for _, p := range parents {
		comps := g.edges[p]
		out := make([]string, 0, len(comps))
		for _, c := range comps {
			if c == oldID {
				c = newID
			}
			out = appendUnique(out, c)
		}
		g.edges[p] = out
	}
}

// AddComponents agrega aristas parent -> components sin quitar las existentes.
// Se usa cuando una sustitución acotada a una ubicación deja conviviendo ambos componentes.
func (g *Graph) AddComponents(parentID string, components []string) {
	for _, c := range components {
		g.edges[parentID] = appendUnique(g.edges[parentID], c)
	}
}

// PathTo busca en profundidad un camino from -> ... -> to. Devuelve nil si no existe.
func (g *Graph) PathTo(from, to string) []string {
	visited := make(map[string]bool)
	var stack []string
	var dfs func(node string) bool
	dfs = func(node string) bool {
		stack = append(stack, node)
		if node == to {
			return true
		}
		if visited[node] {
			stack = stack[:len(stack)-1]
			return false
		}
		visited[node] = true
		for _, next := range g.edges[node] {
			if dfs(next) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		return false
	}
	if dfs(from) {
		return stack
	}
	return nil
}

// ValidateAcyclic verifica que agregar parent -> components no cierre un ciclo:
// desde cada componente nuevo se recorre el grafo hacia el padre.
func (g *Graph) ValidateAcyclic(parentID string, components []string) error {
	for _, c := range components {
		if c == parentID {
			return &domain.CycleError{Path: []string{parentID, c}, Depth: 1}
		}
		if path := g.PathTo(c, parentID); path != nil {
			return &domain.CycleError{Path: append([]string{parentID}, path...), Depth: len(path)}
		}
	}
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

type partial struct {
	qty   decimal.Decimal
	depth int
	leaf  bool
}

// Explode expande la BOM de rootID en todos sus niveles partiendo de rootLines.
// Las cantidades se multiplican por nivel y se suman cuando un componente aparece
// varias veces. Un ciclo devuelve *domain.CycleError con la profundidad de detección.
func Explode(rootID string, rootLines []entity.BOMLine, linesOf LinesFunc) ([]Requirement, error) {
	e := &exploder{
		linesOf: linesOf,
		memo:    make(map[string]map[string]partial),
		state:   make(map[string]int),
	}
	e.path = []string{rootID}
	e.state[rootID] = visiting
	flat, err := e.expand(rootLines)
	if err != nil {
		return nil, err
	}
	out := make([]Requirement, 0, len(flat))
	for id, p := range flat {
		out = append(out, Requirement{ComponentID: id, QuantityPerParentUnit: p.qty, Depth: p.depth, Leaf: p.leaf})
	}
	sortRequirements(out)
	return out, nil
}

const (
	unvisited = iota
	visiting
	done
)

type exploder struct {
	linesOf LinesFunc
	memo    map[string]map[string]partial
	state   map[string]int
	path    []string
}

// expand combina las líneas con la expansión memorizada de cada componente.
func (e *exploder) expand(lines []entity.BOMLine) (map[string]partial, error) {
	acc := make(map[string]partial)
	for _, l := range lines {
		sub, err := e.explodeProduct(l.ComponentProductID)
		if err != nil {
			return nil, err
		}
		add(acc, l.ComponentProductID, l.QuantityRequired, 1, len(sub) == 0)
		for id, p := range sub {
			add(acc, id, l.QuantityRequired.Mul(p.qty), p.depth+1, p.leaf)
		}
	}
	return acc, nil
}

func (e *exploder) explodeProduct(productID string) (map[string]partial, error) {
	switch e.state[productID] {
	case done:
		return e.memo[productID], nil
	case visiting:
		start := 0
		for i, id := range e.path {
			if id == productID {
				start = i
				break
			}
		}
		cycle := append(append([]string{}, e.path[start:]...), productID)
		return nil, &domain.CycleError{Path: cycle, Depth: len(e.path)}
	}
	e.state[productID] = visiting
	e.path = append(e.path, productID)
	lines, err := e.linesOf(productID)
	if err != nil {
		return nil, err
	}
	sub, err := e.expand(lines)
	if err != nil {
		return nil, err
	}
	e.path = e.path[:len(e.path)-1]
	e.state[productID] = done
	e.memo[productID] = sub
	return sub, nil
}

func add(acc map[string]partial, id string, qty decimal.Decimal, depth int, leaf bool) {
	p, ok := acc[id]
	if !ok {
		acc[id] = partial{qty: qty, depth: depth, leaf: leaf}
		return
	}
	p.qty = p.qty.Add(qty)
	if depth > p.depth {
		p.depth = depth
	}
	acc[id] = p
}

// DirectRequirements agrega las líneas directas (un solo nivel) que aplican a la ubicación.
func DirectRequirements(lines []entity.BOMLine, locationID string) []Requirement {
	acc := make(map[string]decimal.Decimal)
	for i := range lines {
		if !lines[i].AppliesTo(locationID) {
			continue
		}
		acc[lines[i].ComponentProductID] = acc[lines[i].ComponentProductID].Add(lines[i].QuantityRequired)
	}
	out := make([]Requirement, 0, len(acc))
	for id, q := range acc {
		out = append(out, Requirement{ComponentID: id, QuantityPerParentUnit: q, Depth: 1})
	}
	sortRequirements(out)
	return out
}

func sortRequirements(reqs []Requirement) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Depth != reqs[j].Depth {
			return reqs[i].Depth < reqs[j].Depth
		}
		return reqs[i].ComponentID < reqs[j].ComponentID
	})
}

// ValidateLines valida cantidades y autorreferencias de una nueva versión.
func ValidateLines(parentID string, lines []entity.BOMLine) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.ComponentProductID == "" {
			return domain.ErrInvalidInput
		}
		if !l.QuantityRequired.IsPositive() {
			return domain.ErrInvalidQuantity
		}
		if l.ComponentProductID == parentID {
			return &domain.CycleError{Path: []string{parentID, parentID}, Depth: 1}
		}
	}
	return nil
}
