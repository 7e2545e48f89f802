package app

import (
	"context"
	"fmt"

	"tableflip.dev/ordo/pkg/item"
)

// ListOverview is one list with its notes and tasks, each in order.
type ListOverview struct {
	List  item.Item
	Notes []item.Item
	Tasks []item.Item
}

// Overview summarizes everything the principal owns.
type Overview struct {
	Owner     string
	Lists     []ListOverview
	Notes     int
	Tasks     int
	Completed int
}

// Open returns the number of tasks not yet completed.
func (o Overview) Open() int {
	return o.Tasks - o.Completed
}

// Overview loads every list of the principal with its notes and tasks.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	owner, err := s.Owner()
	if err != nil {
		return Overview{}, err
	}
	lists, err := s.Lists(ctx)
	if err != nil {
		return Overview{}, err
	}
	out := Overview{Owner: owner}
	for _, list := range lists.Snapshot() {
		notes, err := s.Notes(ctx, list.ID)
		if err != nil {
			return Overview{}, fmt.Errorf("app: load notes of %q: %w", list.Text(), err)
		}
		tasks, err := s.Tasks(ctx, list.ID)
		if err != nil {
			return Overview{}, fmt.Errorf("app: load tasks of %q: %w", list.Text(), err)
		}
		lo := ListOverview{List: list, Notes: notes.Snapshot(), Tasks: tasks.Snapshot()}
		out.Notes += len(lo.Notes)
		out.Tasks += len(lo.Tasks)
		for _, t := range lo.Tasks {
			if t.Payload.Completed {
				out.Completed++
			}
		}
		out.Lists = append(out.Lists, lo)
	}
	return out, nil
}
