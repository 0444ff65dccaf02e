package todo

// ResolveCurrent returns the task with the given ID. It reports false for an
// empty ID or when no task matches.
func ResolveCurrent(tasks []Task, id string) (Task, bool) {
	if id == "" {
		return Task{}, false
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
