package board

import (
	"context"
	"fmt"
)

// createThenLink is the two-step write pattern behind createCard and
// createColumn: persist the child, then link its ID into the parent's
// ordered list. The store offers no transaction spanning the two
// documents, so the compensating action is declared next to the primary
// one: if the link step fails the child is deleted again and the whole
// operation surfaces as Conflict, so clients never observe an orphaned
// child. A failed compensation is logged and still reported as Conflict —
// there is no retry.
type createThenLink struct {
	op         string
	create     func(ctx context.Context) error
	link       func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

func (c *Coordinator) run(ctx context.Context, s createThenLink) error {
	if err := s.create(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.op, err)
	}
	if err := s.link(ctx); err != nil {
		if cerr := s.compensate(ctx); cerr != nil {
			c.log.Error("compensation failed, orphan may remain",
				"op", s.op, "error", cerr.Error())
		}
		return &ConflictError{Op: s.op, Err: err}
	}
	return nil
}
