package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/game-exchange-token/gxt"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	kindStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	hexStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle   = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6"))
)

// printView renders an envelope view either as plain JSON or as a styled
// terminal summary, depending on asJSON.
func printView(view *gxt.EnvelopeView, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal view: %w", err)
		}
		fmt.Println(string(b))
		return nil
	}

	payload, err := json.MarshalIndent(view.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("kind:"), kindStyle.Render(view.Kind))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("id:"), hexStyle.Render(view.ID))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("verification_key:"), hexStyle.Render(view.VerificationKey))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("encryption_key:"), hexStyle.Render(view.EncryptionKey))
	if view.Parent != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("parent:"), hexStyle.Render(*view.Parent))
	}
	fmt.Fprintf(&b, "%s\n%s", labelStyle.Render("payload:"), payload)

	fmt.Println(boxStyle.Render(b.String()))
	return nil
}

// promptMeta interactively collects a flat set of string meta fields via
// huh, returning them as a JSON-like map ready to pass to MakeIDCard.
func promptMeta() (map[string]interface{}, error) {
	var name, note string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Display name").Value(&name),
			huh.NewInput().Title("Note (optional)").Value(&note),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt for meta: %w", err)
	}

	meta := map[string]interface{}{"name": name}
	if note != "" {
		meta["note"] = note
	}
	return meta, nil
}
