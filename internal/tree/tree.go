package tree

import "time"

// NodeID identifies a node (a View leaf or a Container) within a Tree.
type NodeID int

const invalidID NodeID = 0

// viewContent wraps a leaf payload together with its settled area.
type viewContent[T any] struct {
	view     T
	viewArea Rect
}

// Container is an internal node: an ordered list of children laid out
// either Horizontal or Vertical across area. A nil entry in sizes means
// that child is Fill(1); a non-nil entry is that child's fixed Length.
type Container struct {
	Layout   Layout
	Children []NodeID
	Area     Rect
	sizes    []*int
}

func newContainer(layout Layout) *Container {
	return &Container{Layout: layout}
}

func (c *Container) indexOf(id NodeID) int {
	for i, child := range c.Children {
		if child == id {
			return i
		}
	}
	return -1
}

// node is one slot in the tree's arena: either a view leaf or a Container.
type node[T any] struct {
	parent NodeID
	view   *viewContent[T]
	cont   *Container
}

func (n *node[T]) isView() bool { return n.view != nil }

// Tree is a recursive split-layout arrangement of views into horizontal
// and vertical panes. It is generic over the leaf payload type so it can
// be exercised in tests without depending on a concrete view type.
type Tree[T any] struct {
	nodes  map[NodeID]*node[T]
	nextID NodeID

	root  NodeID
	focus NodeID
	area  Rect

	// stack holds NodeIDs queued for focus after the current one closes,
	// most-recently-queued last.
	stack []NodeID

	animations map[NodeID]*AreaAnimation
}

// NewTree creates a Tree with a single root container occupying area.
func NewTree[T any](area Rect) *Tree[T] {
	t := &Tree[T]{
		nodes:      make(map[NodeID]*node[T]),
		animations: make(map[NodeID]*AreaAnimation),
		area:       area,
	}
	t.nextID = 1
	rootID := t.alloc()
	root := t.nodes[rootID]
	root.parent = rootID
	root.cont = newContainer(Vertical)
	root.cont.Area = area
	t.root = rootID
	t.focus = rootID
	return t
}

func (t *Tree[T]) alloc() NodeID {
	id := t.nextID
	t.nextID++
	t.nodes[id] = &node[T]{}
	return id
}

// Root returns the root container's ID.
func (t *Tree[T]) Root() NodeID { return t.root }

// Focus returns the currently focused view's ID.
func (t *Tree[T]) Focus() NodeID { return t.focus }

// SetFocus moves focus to id, which must name a view leaf.
func (t *Tree[T]) SetFocus(id NodeID) {
	if n, ok := t.nodes[id]; ok && n.isView() {
		t.focus = id
	}
}

// Contains reports whether id names a live node.
func (t *Tree[T]) Contains(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Get returns the view payload stored at id.
func (t *Tree[T]) Get(id NodeID) (T, bool) {
	var zero T
	n, ok := t.nodes[id]
	if !ok || !n.isView() {
		return zero, false
	}
	return n.view.view, true
}

// Set replaces the view payload stored at id.
func (t *Tree[T]) Set(id NodeID, v T) bool {
	n, ok := t.nodes[id]
	if !ok || !n.isView() {
		return false
	}
	n.view.view = v
	return true
}

// IsEmpty reports whether the tree holds no views at all.
func (t *Tree[T]) IsEmpty() bool {
	root, ok := t.nodes[t.root]
	return ok && root.cont != nil && len(root.cont.Children) == 0
}

// Views returns every view leaf's ID in traversal order.
func (t *Tree[T]) Views() []NodeID {
	var out []NodeID
	t.traverse(t.root, &out)
	return out
}

func (t *Tree[T]) traverse(id NodeID, out *[]NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	if n.isView() {
		*out = append(*out, id)
		return
	}
	for _, child := range n.cont.Children {
		t.traverse(child, out)
	}
}

// container returns the Container at id, or nil if id names a view or is
// unknown.
func (t *Tree[T]) container(id NodeID) *Container {
	n, ok := t.nodes[id]
	if !ok || n.isView() {
		return nil
	}
	return n.cont
}

// Insert adds a new view as a sibling of the focused view, inserted right
// after it in the parent container, then recalculates layout.
func (t *Tree[T]) Insert(v T) NodeID {
	if t.IsEmpty() {
		id := t.alloc()
		n := t.nodes[id]
		n.parent = t.root
		n.view = &viewContent[T]{view: v}
		root := t.container(t.root)
		root.Children = append(root.Children, id)
		root.sizes = append(root.sizes, nil)
		t.focus = id
		t.Recalculate()
		return id
	}

	focusNode := t.nodes[t.focus]
	parentID := focusNode.parent
	parent := t.container(parentID)

	id := t.alloc()
	n := t.nodes[id]
	n.parent = parentID
	n.view = &viewContent[T]{view: v}

	idx := parent.indexOf(t.focus)
	parent.Children = insertAt(parent.Children, idx+1, id)
	parent.sizes = insertSizeAt(parent.sizes, idx+1, nil)

	t.focus = id
	t.Recalculate()
	return id
}

func insertAt(s []NodeID, idx int, v NodeID) []NodeID {
	s = append(s, invalidID)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func insertSizeAt(s []*int, idx int, v *int) []*int {
	s = append(s, nil)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

// Split creates a new view next to the focused one, splitting along
// layout. If the focused view's parent container already uses layout,
// the new view becomes a sibling; otherwise the focused view and the new
// one are wrapped in a fresh container of the requested layout, replacing
// the focused view's slot in its old parent. Both the focused view's old
// area and the new view's starting area animate into their final
// position using FastPreset.
func (t *Tree[T]) Split(v T, layout Layout) NodeID {
	if t.IsEmpty() {
		return t.Insert(v)
	}

	focusNode := t.nodes[t.focus]
	parentID := focusNode.parent
	parent := t.container(parentID)
	oldFocusArea := t.viewArea(t.focus)

	newID := t.alloc()
	newNode := t.nodes[newID]
	newNode.view = &viewContent[T]{view: v}

	if parent.Layout == layout || len(parent.Children) == 1 {
		parent.Layout = layout
		newNode.parent = parentID
		idx := parent.indexOf(t.focus)
		parent.Children = insertAt(parent.Children, idx+1, newID)
		parent.sizes = insertSizeAt(parent.sizes, idx+1, nil)
	} else {
		containerID := t.alloc()
		containerNode := t.nodes[containerID]
		containerNode.parent = parentID
		containerNode.cont = newContainer(layout)
		containerNode.cont.Children = []NodeID{t.focus, newID}
		containerNode.cont.sizes = []*int{nil, nil}

		idx := parent.indexOf(t.focus)
		parent.Children[idx] = containerID

		focusNode.parent = containerID
		newNode.parent = containerID
	}

	t.Recalculate()

	zeroArea := oldFocusArea
	switch layout {
	case Vertical:
		zeroArea.Width = 0
	default:
		zeroArea.Height = 0
	}
	anim := NewAreaAnimation(oldFocusArea, t.viewArea(t.focus), FastPreset)
	t.animations[t.focus] = &anim
	newAnim := NewAreaAnimation(zeroArea, t.viewArea(newID), FastPreset)
	t.animations[newID] = &newAnim

	t.focus = newID
	return newID
}

func (t *Tree[T]) viewArea(id NodeID) Rect {
	n, ok := t.nodes[id]
	if !ok {
		return Rect{}
	}
	if n.isView() {
		return n.view.viewArea
	}
	return n.cont.Area
}

// Remove deletes the view at id. If its parent container is left with a
// single child, that child is merged into the grandparent's slot. Focus
// moves to the previous view in traversal order.
func (t *Tree[T]) Remove(id NodeID) {
	n, ok := t.nodes[id]
	if !ok || !n.isView() {
		return
	}

	wasFocus := t.focus == id
	var nextFocus NodeID
	if wasFocus {
		nextFocus = t.Prev()
	}

	parentID := n.parent
	parent := t.container(parentID)
	idx := parent.indexOf(id)
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	parent.sizes = append(parent.sizes[:idx], parent.sizes[idx+1:]...)
	delete(t.nodes, id)
	delete(t.animations, id)

	if len(parent.Children) == 1 && parentID != t.root {
		onlyChild := parent.Children[0]
		grandparentID := t.nodes[parentID].parent
		grandparent := t.container(grandparentID)
		gidx := grandparent.indexOf(parentID)
		grandparent.Children[gidx] = onlyChild
		t.nodes[onlyChild].parent = grandparentID
		delete(t.nodes, parentID)
	}

	if wasFocus {
		t.focus = nextFocus
	}
	if !t.IsEmpty() {
		t.Recalculate()
	}
}

// Prev returns the view before the focused one in traversal order,
// wrapping around.
func (t *Tree[T]) Prev() NodeID {
	return t.stepFocus(-1)
}

// Next returns the view after the focused one in traversal order,
// wrapping around.
func (t *Tree[T]) Next() NodeID {
	return t.stepFocus(1)
}

func (t *Tree[T]) stepFocus(delta int) NodeID {
	views := t.Views()
	if len(views) == 0 {
		return invalidID
	}
	idx := -1
	for i, v := range views {
		if v == t.focus {
			idx = i
			break
		}
	}
	if idx == -1 {
		return views[0]
	}
	next := (idx + delta + len(views)) % len(views)
	return views[next]
}

// Transpose flips the layout of the focused view's parent container.
func (t *Tree[T]) Transpose() {
	n, ok := t.nodes[t.focus]
	if !ok {
		return
	}
	parent := t.container(n.parent)
	if parent == nil {
		return
	}
	if parent.Layout == Horizontal {
		parent.Layout = Vertical
	} else {
		parent.Layout = Horizontal
	}
	t.Recalculate()
}

// Area returns the tree's total area.
func (t *Tree[T]) Area() Rect { return t.area }

// Resize changes the tree's total area and recalculates layout.
func (t *Tree[T]) Resize(area Rect) {
	t.area = area
	root := t.container(t.root)
	root.Area = area
	t.Recalculate()
}

// Recalculate redistributes area among every container's children: a
// Horizontal container splits its area vertically (rows) with no gap
// between children; a Vertical container splits its area horizontally
// (columns) with one cell of spacing between children for a visible
// divider.
func (t *Tree[T]) Recalculate() {
	root := t.container(t.root)
	if root == nil {
		return
	}
	root.Area = t.area
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cont := t.container(id)
		if cont == nil || len(cont.Children) == 0 {
			continue
		}

		constraints := make([]Constraint, len(cont.Children))
		for i, size := range cont.sizes {
			if size != nil {
				constraints[i] = Length(*size)
			} else {
				constraints[i] = Fill(1)
			}
		}

		var sizes []int
		spacing := 0
		mainAxisLen := cont.Area.Height
		if cont.Layout == Vertical {
			spacing = 1
			mainAxisLen = cont.Area.Width
		}
		sizes = solveConstraints(constraints, mainAxisLen, spacing)

		offset := 0
		for i, childID := range cont.Children {
			var childArea Rect
			if cont.Layout == Horizontal {
				childArea = Rect{X: cont.Area.X, Y: cont.Area.Y + offset, Width: cont.Area.Width, Height: sizes[i]}
			} else {
				childArea = Rect{X: cont.Area.X + offset, Y: cont.Area.Y, Width: sizes[i], Height: cont.Area.Height}
			}
			offset += sizes[i] + spacing

			child := t.nodes[childID]
			if child.isView() {
				child.view.viewArea = childArea
			} else {
				child.cont.Area = childArea
				stack = append(stack, childID)
			}
		}
	}
}

// UpdateAnimations advances every in-flight area animation by dt and
// prunes the ones that have finished. Reports whether any animation is
// still running.
func (t *Tree[T]) UpdateAnimations(dt time.Duration) bool {
	for id, anim := range t.animations {
		if anim.Update(dt) {
			delete(t.animations, id)
		}
	}
	return len(t.animations) > 0
}

// GetAnimatedArea returns the view's currently-animating rect if one is
// in flight, otherwise its settled area.
func (t *Tree[T]) GetAnimatedArea(id NodeID) Rect {
	if anim, ok := t.animations[id]; ok {
		return anim.Current()
	}
	return t.viewArea(id)
}

// HasActiveAnimations reports whether any view area is still animating.
func (t *Tree[T]) HasActiveAnimations() bool {
	return len(t.animations) > 0
}

// ResizeSplit adjusts the fixed size of the first ancestor container of
// id whose main axis matches vertical, by delta cells.
func (t *Tree[T]) ResizeSplit(id NodeID, vertical bool, delta int) {
	current := id
	for {
		n, ok := t.nodes[current]
		if !ok || current == t.root {
			return
		}
		parent := t.container(n.parent)
		if parent == nil {
			return
		}
		axisMatches := (parent.Layout == Vertical) == vertical
		if axisMatches {
			idx := parent.indexOf(current)
			base := 0
			if parent.sizes[idx] != nil {
				base = *parent.sizes[idx]
			} else {
				base = t.mainAxisSize(parent, idx)
			}
			newSize := base + delta
			if newSize < 1 {
				newSize = 1
			}
			parent.sizes[idx] = &newSize
			t.Recalculate()
			return
		}
		current = n.parent
	}
}

func (t *Tree[T]) mainAxisSize(c *Container, idx int) int {
	area := t.viewArea(c.Children[idx])
	n := t.nodes[c.Children[idx]]
	if !n.isView() {
		area = n.cont.Area
	}
	if c.Layout == Vertical {
		return area.Width
	}
	return area.Height
}

// FindSplitInDirection walks up from id to the nearest ancestor container
// whose axis matches direction, then descends into the neighboring
// child, picking the one whose perpendicular-axis coordinate is closest
// to id's current position if it lands on a container.
func (t *Tree[T]) FindSplitInDirection(id NodeID, direction Direction) (NodeID, bool) {
	wantVertical := direction == DirLeft || direction == DirRight
	forward := direction == DirDown || direction == DirRight

	current := id
	for {
		n, ok := t.nodes[current]
		if !ok || current == t.root {
			return invalidID, false
		}
		parent := t.container(n.parent)
		if parent == nil {
			return invalidID, false
		}
		axisMatches := (parent.Layout == Vertical) == wantVertical
		if axisMatches {
			idx := parent.indexOf(current)
			var neighborIdx int
			if forward {
				neighborIdx = idx + 1
			} else {
				neighborIdx = idx - 1
			}
			if neighborIdx >= 0 && neighborIdx < len(parent.Children) {
				target := parent.Children[neighborIdx]
				return t.descendToClosest(target, t.viewArea(id), wantVertical), true
			}
		}
		current = n.parent
	}
}

// descendToClosest walks down from id into containers, each time picking
// the child whose perpendicular-axis span is closest to ref's position,
// until it reaches a view leaf.
func (t *Tree[T]) descendToClosest(id NodeID, ref Rect, crossIsVertical bool) NodeID {
	for {
		n, ok := t.nodes[id]
		if !ok || n.isView() {
			return id
		}
		cont := n.cont
		if len(cont.Children) == 0 {
			return id
		}
		best := cont.Children[0]
		bestDist := -1
		refCoord := ref.Y
		if !crossIsVertical {
			refCoord = ref.X
		}
		for _, child := range cont.Children {
			area := t.viewArea(child)
			childNode := t.nodes[child]
			if !childNode.isView() {
				area = childNode.cont.Area
			}
			coord := area.Y
			if !crossIsVertical {
				coord = area.X
			}
			dist := coord - refCoord
			if dist < 0 {
				dist = -dist
			}
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				best = child
			}
		}
		id = best
	}
}

// SwapSplitInDirection swaps the focused view with its neighbor in
// direction: same-parent swaps just exchange child slots and areas;
// cross-parent swaps exchange child slots and parent pointers across
// both containers.
func (t *Tree[T]) SwapSplitInDirection(direction Direction) bool {
	target, ok := t.FindSplitInDirection(t.focus, direction)
	if !ok || target == t.focus {
		return false
	}

	focusNode := t.nodes[t.focus]
	targetNode := t.nodes[target]
	focusParentID := focusNode.parent
	targetParentID := targetNode.parent

	if focusParentID == targetParentID {
		parent := t.container(focusParentID)
		fi := parent.indexOf(t.focus)
		ti := parent.indexOf(target)
		parent.Children[fi], parent.Children[ti] = parent.Children[ti], parent.Children[fi]
		parent.sizes[fi], parent.sizes[ti] = parent.sizes[ti], parent.sizes[fi]
	} else {
		focusParent := t.container(focusParentID)
		targetParent := t.container(targetParentID)
		fi := focusParent.indexOf(t.focus)
		ti := targetParent.indexOf(target)
		focusParent.Children[fi] = target
		targetParent.Children[ti] = t.focus
		focusNode.parent, targetNode.parent = targetParentID, focusParentID
	}

	t.Recalculate()
	return true
}
