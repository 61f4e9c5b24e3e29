package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/aliases/internal/chat"
)

// fprintJSON encodes v as indented JSON to w.
func fprintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// renderReport renders msg in the given format. r is only used for ansi.
func renderReport(msg chat.Component, format string, r *lipgloss.Renderer) (string, error) {
	switch format {
	case "ansi":
		return chat.ANSI(msg, r), nil
	case "plain":
		return chat.Plain(msg), nil
	case "json":
		return chat.JSON(msg)
	default:
		return "", fmt.Errorf("unsupported format: %s (use ansi, plain, or json)", format)
	}
}
