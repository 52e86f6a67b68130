package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks lookups with no matching catalog entry. Expected and
	// non-fatal: the affected artist is reported as unresolved.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks provider or network failures. Non-fatal to the run;
	// fatal only to the affected artist's resolution for this run.
	ErrTransient = errors.New("transient failure")
	// ErrStore marks persistence-layer failures. Fatal: without the store no
	// audit trail can be written.
	ErrStore = errors.New("store failure")
	// ErrFileSystem marks unreadable paths. The offending subtree is skipped
	// and reported; the scan continues.
	ErrFileSystem = errors.New("filesystem failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the whole invocation. Only
// store failures qualify; everything else degrades to a report entry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrStore)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
