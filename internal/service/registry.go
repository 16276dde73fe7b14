package service

import (
	"github.com/google/uuid"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Object Registry: flat id → element map, insertion ordered
// ─────────────────────────────────────────────────────────────

// ObjectRegistry is the source of truth for which top-level elements
// exist. Group children are reachable through their group only.
type ObjectRegistry struct {
	order  []string
	byID   map[string]*domain.Object
	byNode map[*scene.Node]string
}

func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{
		byID:   make(map[string]*domain.Object),
		byNode: make(map[*scene.Node]string),
	}
}

// Register binds node to a freshly generated id.
func (r *ObjectRegistry) Register(node *scene.Node) *domain.Object {
	return r.RegisterWithID("", node)
}

// RegisterWithID binds node to id (generated when empty). A node that is
// already registered keeps its existing entry.
func (r *ObjectRegistry) RegisterWithID(id string, node *scene.Node) *domain.Object {
	if existing, ok := r.byNode[node]; ok {
		return r.byID[existing]
	}
	if id == "" {
		id = uuid.New().String()
	}
	if _, taken := r.byID[id]; taken {
		id = uuid.New().String()
	}
	obj := &domain.Object{ID: id, Type: domain.ElementTypeOf(node), Node: node}
	r.order = append(r.order, id)
	r.byID[id] = obj
	r.byNode[node] = id
	return obj
}

// Unregister drops the entry without touching the scene. Callers that
// destroy the element must detach the node in the same operation.
func (r *ObjectRegistry) Unregister(id string) (*domain.Object, bool) {
	obj, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	delete(r.byNode, obj.Node)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return obj, true
}

// UnregisterNode drops the entry bound to node, if any.
func (r *ObjectRegistry) UnregisterNode(node *scene.Node) bool {
	id, ok := r.byNode[node]
	if !ok {
		return false
	}
	r.Unregister(id)
	return true
}

// Delete unregisters id and detaches its node from the scene.
func (r *ObjectRegistry) Delete(id string) bool {
	obj, ok := r.Unregister(id)
	if !ok {
		return false
	}
	obj.Node.Detach()
	return true
}

func (r *ObjectRegistry) Get(id string) (*domain.Object, bool) {
	obj, ok := r.byID[id]
	return obj, ok
}

// Lookup returns the object bound to node.
func (r *ObjectRegistry) Lookup(node *scene.Node) (*domain.Object, bool) {
	id, ok := r.byNode[node]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

func (r *ObjectRegistry) Has(node *scene.Node) bool {
	_, ok := r.byNode[node]
	return ok
}

// All returns objects in registration order.
func (r *ObjectRegistry) All() []*domain.Object {
	out := make([]*domain.Object, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Nodes returns the registered nodes in registration order.
func (r *ObjectRegistry) Nodes() []*scene.Node {
	out := make([]*scene.Node, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Node)
	}
	return out
}

func (r *ObjectRegistry) Len() int { return len(r.order) }

// Clear drops every entry without touching the scene.
func (r *ObjectRegistry) Clear() {
	r.order = nil
	r.byID = make(map[string]*domain.Object)
	r.byNode = make(map[*scene.Node]string)
}
