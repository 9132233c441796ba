package curriculum

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

// ErrPartialReorder means the first write of a swap landed and the second did not.
var ErrPartialReorder = errors.New("reorder partially applied")

// PartialReorderError leaves Mutated holding its new index and the sibling untouched.
// Nothing is rolled back; reload the list before retrying.
type PartialReorderError struct {
	Collection string
	Mutated    string
	Sibling    string
	Err        error
}

func (e *PartialReorderError) Error() string {
	return fmt.Sprintf("%s: %s/%s moved but %s was not: %v",
		ErrPartialReorder, e.Collection, e.Mutated, e.Sibling, e.Err)
}

func (e *PartialReorderError) Unwrap() error { return e.Err }

func (e *PartialReorderError) Is(target error) bool { return target == ErrPartialReorder }

// sibling is the ordering view of a section or lesson.
type sibling struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"orderIndex"`
}

func (s *Service) siblings(ctx context.Context, collection, parentField, parentID string) ([]sibling, error) {
	var list []sibling
	err := s.store.Query(ctx, collection, &list,
		[]store.Filter{store.Eq(parentField, parentID)}, store.Asc("orderIndex"))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s of %s", collection, parentID)
	}
	return list, nil
}

// ReorderSection moves a section up or down within its course.
func (s *Service) ReorderSection(ctx context.Context, cmd Reorder) error {
	return s.reorder(ctx, store.Sections, "courseId", cmd)
}

// ReorderLesson moves a lesson up or down within its section.
func (s *Service) ReorderLesson(ctx context.Context, cmd Reorder) error {
	return s.reorder(ctx, store.Lessons, "sectionId", cmd)
}

func (s *Service) reorder(ctx context.Context, collection, parentField string, cmd Reorder) error {
	if err := utils.Validate.Struct(cmd); err != nil {
		return err
	}

	list, err := s.siblings(ctx, collection, parentField, cmd.ParentID)
	if err != nil {
		return err
	}

	pos := -1
	for i, sib := range list {
		if sib.ID == cmd.ChildID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return errors.Wrapf(store.ErrNotFound, "%s %s under %s", collection, cmd.ChildID, cmd.ParentID)
	}

	target := pos + 1
	if cmd.Direction == Up {
		target = pos - 1
	}
	if target < 0 || target >= len(list) {
		return nil
	}

	return s.swap(ctx, collection, list[pos], list[target])
}

// swap exchanges the orderIndex of a and b and touches no other sibling.
func (s *Service) swap(ctx context.Context, collection string, a, b sibling) error {
	now := s.now()
	first := store.Mutation{Collection: collection, ID: a.ID,
		Patch: store.Patch{"orderIndex": b.OrderIndex, "updatedAt": now}}
	second := store.Mutation{Collection: collection, ID: b.ID,
		Patch: store.Patch{"orderIndex": a.OrderIndex, "updatedAt": now}}

	if batcher, ok := s.store.(store.Batcher); ok {
		return errors.Wrapf(batcher.UpdateBatch(ctx, []store.Mutation{first, second}),
			"swapping %s/%s and %s", collection, a.ID, b.ID)
	}

	if err := s.store.Update(ctx, first.Collection, first.ID, first.Patch); err != nil {
		return errors.Wrapf(err, "moving %s/%s", collection, a.ID)
	}
	if err := s.store.Update(ctx, second.Collection, second.ID, second.Patch); err != nil {
		perr := &PartialReorderError{Collection: collection, Mutated: a.ID, Sibling: b.ID, Err: err}
		s.logger.Error("reorder left siblings inconsistent", perr)
		return perr
	}
	return nil
}

// shift adds delta to the orderIndex of every sibling in list.
func (s *Service) shift(ctx context.Context, collection string, list []sibling, delta int) error {
	if len(list) == 0 {
		return nil
	}
	now := s.now()
	mutations := make([]store.Mutation, 0, len(list))
	for _, sib := range list {
		mutations = append(mutations, store.Mutation{Collection: collection, ID: sib.ID,
			Patch: store.Patch{"orderIndex": sib.OrderIndex + delta, "updatedAt": now}})
	}

	if batcher, ok := s.store.(store.Batcher); ok {
		return errors.Wrapf(batcher.UpdateBatch(ctx, mutations), "renumbering %s", collection)
	}
	for _, m := range mutations {
		if err := s.store.Update(ctx, m.Collection, m.ID, m.Patch); err != nil {
			return errors.Wrapf(err, "renumbering %s/%s", collection, m.ID)
		}
	}
	return nil
}

// after returns the siblings whose orderIndex is at least index.
func after(list []sibling, index int) []sibling {
	var out []sibling
	for _, sib := range list {
		if sib.OrderIndex >= index {
			out = append(out, sib)
		}
	}
	return out
}

// insertIndex resolves the orderIndex of a new child of a list of n siblings.
func insertIndex(requested *int, n int) (int, error) {
	if requested == nil {
		return n, nil
	}
	if *requested > n {
		return 0, utils.NewValidationError(nil, utils.FieldError{
			Field: "orderIndex",
			Error: fmt.Sprintf("orderIndex must be between 0 and %d", n),
		})
	}
	return *requested, nil
}
