package catalog

// Reorder applies scenario bias to a task catalog and returns the initial
// backlog order. The rule: the single earliest favored critical task (if any)
// moves to the very front, followed by the remaining favored tasks in their
// original order, followed by everything else in original order. A nil or
// category-less bias returns the catalog untouched.
//
// Reorder is pure: the input slice is never mutated.
func Reorder(tasks []Task, bias *Bias) []Task {
	if bias == nil || len(bias.Categories) == 0 {
		out := make([]Task, len(tasks))
		copy(out, tasks)
		return out
	}

	leadIdx := -1
	for i, t := range tasks {
		if t.Critical && bias.Favors(t.Category) {
			leadIdx = i
			break
		}
	}

	out := make([]Task, 0, len(tasks))
	if leadIdx >= 0 {
		out = append(out, tasks[leadIdx])
	}
	for i, t := range tasks {
		if i == leadIdx {
			continue
		}
		if bias.Favors(t.Category) {
			out = append(out, t)
		}
	}
	for i, t := range tasks {
		if i == leadIdx || bias.Favors(t.Category) {
			continue
		}
		out = append(out, t)
	}
	return out
}
