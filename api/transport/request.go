package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/repository"
)

// DecodeTask parses and type-checks a create payload. Field names match
// exactly; other keys, including a client-supplied id, are ignored.
func DecodeTask(body []byte) (*domain.Task, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "malformed task payload", err)
	}

	task := &domain.Task{}
	if err := requiredString(fields, "task", &task.Task); err != nil {
		return nil, err
	}
	if err := requiredString(fields, "description", &task.Description); err != nil {
		return nil, err
	}
	if raw, ok := fields["time"]; ok && !isNull(raw) {
		var ts int64
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, domain.Invalid("time must be an integer")
		}
		task.Time = &ts
	}
	return task, nil
}

func requiredString(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return domain.Invalid("field required: %s", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.Invalid("%s must be a string", name)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// ParsePage reads offset and limit query values. Empty values fall back to
// the defaults; anything else must be an integer inside the allowed window.
func ParsePage(offset, limit string) (repository.Page, error) {
	page := repository.DefaultPage()

	if offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil {
			return page, domain.Invalid("offset must be an integer")
		}
		page.Offset = v
	}
	if limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			return page, domain.Invalid("limit must be an integer")
		}
		page.Limit = v
	}

	if err := page.Validate(); err != nil {
		return page, err
	}
	return page, nil
}

// ParseTaskID reads the task_id path segment. An integer too large for any
// stored id cannot name a task and reports not found.
func ParseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, domain.ErrTaskNotFound
	}
	if err != nil {
		return 0, domain.Invalid("task_id must be an integer")
	}
	return id, nil
}
