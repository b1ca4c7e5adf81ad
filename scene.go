package jester

import "reflect"

// Scene is one state of the application, such as a title screen or a level.
// Start runs when the scene becomes active and Update runs once per frame
// while it stays active.
type Scene interface {
	Start(ctx *Ctx)
	Update(ctx *Ctx)
}

// Stopper is implemented by scenes that need to clean up when another scene
// replaces them.
type Stopper interface {
	Stop(ctx *Ctx)
}

// SceneKey identifies a registered scene by its Go type.
type SceneKey struct {
	t reflect.Type
}

// String returns the scene type name.
func (k SceneKey) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// KeyOf returns the key for scene type S.
func KeyOf[S Scene]() SceneKey {
	return SceneKey{t: reflect.TypeFor[S]()}
}

func keyOfScene(s Scene) SceneKey {
	return SceneKey{t: reflect.TypeOf(s)}
}

// sceneRegistry retains one instance per scene type. Re-activating a scene
// reuses its instance.
type sceneRegistry struct {
	scenes  map[SceneKey]Scene
	current SceneKey
	pending SceneKey
	queued  bool
}

func newSceneRegistry() sceneRegistry {
	return sceneRegistry{scenes: make(map[SceneKey]Scene)}
}

func (r *sceneRegistry) add(s Scene) SceneKey {
	key := keyOfScene(s)
	r.scenes[key] = s
	return key
}

func (r *sceneRegistry) get(key SceneKey) (Scene, bool) {
	s, ok := r.scenes[key]
	return s, ok
}

// queue records a transition to be applied at the start of the next frame.
// A later call in the same frame replaces an earlier one.
func (r *sceneRegistry) queue(key SceneKey) {
	r.pending = key
	r.queued = true
}

// take returns and clears the queued transition.
func (r *sceneRegistry) take() (SceneKey, bool) {
	if !r.queued {
		return SceneKey{}, false
	}
	key := r.pending
	r.pending = SceneKey{}
	r.queued = false
	return key, true
}
