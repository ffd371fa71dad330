package domain

// Task is a single to-do item. ID is assigned by storage on insert.
type Task struct {
	ID          int64  `json:"id"`
	Task        string `json:"task"`
	Description string `json:"description"`
	Time        *int64 `json:"time"`
}

// HasTime reports whether the optional time field is set.
func (t *Task) HasTime() bool {
	return t != nil && t.Time != nil
}

// Clone returns a copy that does not share the time pointer.
func (t Task) Clone() Task {
	if t.Time != nil {
		v := *t.Time
		t.Time = &v
	}
	return t
}
