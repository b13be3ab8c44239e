package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"taskflow-backend/domain/config"
	pkgerrors "taskflow-backend/pkg/errors"
)

// TaskTitle is a value object for a task's title
type TaskTitle struct {
	value string
}

// NewTaskTitle creates a title with validation using default configuration
func NewTaskTitle(title string) (TaskTitle, error) {
	return NewTaskTitleWithConfig(title, config.DefaultDomainConfig())
}

// NewTaskTitleWithConfig creates a title with validation and configuration
func NewTaskTitleWithConfig(title string, cfg *config.DomainConfig) (TaskTitle, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return TaskTitle{}, pkgerrors.NewValidationError("title cannot be empty")
	}

	length := utf8.RuneCountInString(title)
	if length < cfg.MinTitleLength {
		return TaskTitle{}, fmt.Errorf("title too short: minimum %d characters required", cfg.MinTitleLength)
	}
	if length > cfg.MaxTitleLength {
		return TaskTitle{}, fmt.Errorf("title exceeds maximum length of %d characters", cfg.MaxTitleLength)
	}

	return TaskTitle{value: title}, nil
}

// String returns the title text
func (t TaskTitle) String() string {
	return t.value
}

// IsZero checks if the title is the zero value
func (t TaskTitle) IsZero() bool {
	return t.value == ""
}
