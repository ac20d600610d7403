package collab

import "github.com/vectral/vectral/backend-go/internal/document"

// Classify names the conflict between operations that raced on one element.
// Any delete involved makes it a delete-edit; transforms racing transforms
// are a transform-conflict; everything else is a concurrent edit.
func Classify(ops []document.Operation) document.ConflictType {
	allTransforms := len(ops) > 0
	for _, op := range ops {
		if op.Type == document.OpDelete {
			return document.ConflictDeleteEdit
		}
		if op.Type != document.OpTransform {
			allTransforms = false
		}
	}
	if allTransforms {
		return document.ConflictTransform
	}
	return document.ConflictConcurrentEdit
}

// Resolve picks the surviving operation and marks the conflict resolved. It
// is a pure function of the conflict contents: the same operations produce
// the same winner no matter what order they arrived in.
//
//   - concurrent-edit: the newest timestamp wins, losers are discarded whole
//     (no field-level merge).
//   - delete-edit: the delete wins regardless of timestamps.
//   - transform-conflict: the newest transform wins; the earlier transform
//     is discarded, not composed.
//
// Equal timestamps break on operation id so every replica agrees.
func Resolve(c document.Conflict) (document.Conflict, document.Operation) {
	if len(c.Ops) == 0 {
		c.Resolved = true
		return c, document.Operation{}
	}

	winner := c.Ops[0]
	switch c.Type {
	case document.ConflictDeleteEdit:
		for _, op := range c.Ops[1:] {
			if preferDelete(op, winner) {
				winner = op
			}
		}
	default:
		for _, op := range c.Ops[1:] {
			if laterOp(op, winner) {
				winner = op
			}
		}
	}

	c.Resolved = true
	c.WinnerID = winner.ID
	return c, winner
}

// laterOp orders by timestamp, ties by id.
func laterOp(a, b document.Operation) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID > b.ID
}

// preferDelete ranks deletes above everything else, then falls back to the
// timestamp order.
func preferDelete(a, b document.Operation) bool {
	aDel := a.Type == document.OpDelete
	bDel := b.Type == document.OpDelete
	if aDel != bDel {
		return aDel
	}
	return laterOp(a, b)
}
