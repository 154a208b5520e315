package core

// Component is a marker interface for everything attachable to an Entity.
// Behaviour is opted into through the capability interfaces below rather
// than by inspecting concrete component types.
type Component interface{}

// Attacher is notified when it is attached to an entity
type Attacher interface {
	OnAttach(e *Entity)
}

// Detacher is notified when it is detached, either explicitly or because the
// entity is being destroyed. Index and region membership is released here.
type Detacher interface {
	OnDetach(e *Entity)
}

// ChangeListener receives a notification every time the entity's position
// or rotation changes
type ChangeListener interface {
	OnEntityChanged(e *Entity)
}

// Destroyer is finalized after every component has been detached
type Destroyer interface {
	OnDestroy(e *Entity)
}

// Find returns the first attached component of type T
func Find[T Component](e *Entity) (T, bool) {
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
