package app

import (
	"context"

	"flowboard/internal/board"
	"flowboard/internal/model"
)

// BeginDrag starts dragging a task of the active board.
func (c *Controller) BeginDrag(id string) bool {
	t, ok := c.env.FindTask(id)
	if !ok || c.env.ActiveProjectID == nil || t.ProjectID != *c.env.ActiveProjectID {
		return false
	}
	c.drag = Drag{DraggingID: t.ID, OverStatus: t.Status}
	return true
}

// DragOver records the column under the pointer; anything else clears it.
func (c *Controller) DragOver(status model.Status) {
	if !c.drag.Active() {
		return
	}
	if status.Valid() {
		c.drag.OverStatus = status
	} else {
		c.drag.OverStatus = ""
	}
}

func (c *Controller) Drag() Drag { return c.drag }

func (c *Controller) CancelDrag() { c.drag = Drag{} }

// Drop commits the drag into status at the rank pointerY selects among midpoints (the visible
// sibling card midpoints of that column, excluding the dragged card). The rank is mapped through
// the visible cards onto the full column, so hidden siblings keep their places. Without an
// active drag or a valid column nothing moves. The drag state is cleared either way.
func (c *Controller) Drop(ctx context.Context, status model.Status, midpoints []float64, pointerY float64) (Result, error) {
	d := c.drag
	c.drag = Drag{}
	if !d.Active() || !status.Valid() {
		return Result{}, nil
	}
	rank := board.InsertionIndex(midpoints, pointerY)
	return c.MoveTask(ctx, d.DraggingID, status, c.ColumnIndex(status, rank, d.DraggingID))
}
