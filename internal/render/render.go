// Package render assembles the session context text and the hook JSON
// envelope written across the process boundary.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// hookEventName is the fixed event this hook answers to.
const hookEventName = "SessionStart"

// Envelope is the JSON document the assistant runtime consumes.
type Envelope struct {
	HookSpecificOutput HookOutput `json:"hookSpecificOutput"`
}

// HookOutput carries the context payload for one hook event.
type HookOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// Params collects everything the context block is templated from.
type Params struct {
	// Root is the cache root directory.
	Root string
	// SkillsDir is the primary repository checkout (not its skills subdir).
	SkillsDir string
	// InitMessages is the repository synchronization transcript.
	InitMessages []string
	// UsingSkills is the introduction text from using-skills/SKILL.md.
	UsingSkills string
	// RepoList is the "- name: path" active repository listing.
	RepoList string
	// EnvVars is the full environment map published for skills.
	EnvVars map[string]string
	// Inventory is the per-repo skill listing.
	Inventory string
	// Behind is true when any repository diverged from upstream.
	Behind bool
}

// AdditionalContext renders the human-readable context block.
func AdditionalContext(p Params) string {
	var b strings.Builder
	b.WriteString("<EXTREMELY_IMPORTANT>\nYou have access to the uni.\n\n")

	if len(p.InitMessages) > 0 {
		b.WriteString(strings.Join(p.InitMessages, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("**The content below is from skills/using-skills/SKILL.md - your introduction to using skills:**\n\n")
	b.WriteString(p.UsingSkills)

	fmt.Fprintf(&b, "\n\n**uni Configuration:**\n- Root directory: %s\n- Skills directory: %s\n- Active repositories:\n%s\n", p.Root, p.SkillsDir, p.RepoList)

	b.WriteString("\n**Environment Variables for Skills:**\n")
	b.WriteString(envVarLines(p.EnvVars))

	b.WriteString("\n\n**Available skills across all repositories:**\n")
	b.WriteString(p.Inventory)

	if p.Behind {
		b.WriteString("\n\nNew skills available from upstream. Ask me to use the pulling-updates-from-skills-repository skill.")
	}

	b.WriteString("\n</EXTREMELY_IMPORTANT>")
	return b.String()
}

func envVarLines(envVars map[string]string) string {
	keys := make([]string, 0, len(envVars))
	for key := range envVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("- %s=%s", key, envVars[key]))
	}
	return strings.Join(lines, "\n")
}

// ReadUsingSkills returns the using-skills introduction from the primary
// repository, or placeholder text naming what was expected.
func ReadUsingSkills(root string) string {
	path := filepath.Join(root, "core", "skills", "using-skills", "SKILL.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("uni is ready. Skills are organized in repositories under %s/\n\nNote: Expected to find skills/using-skills/SKILL.md in core repository but it was not found.", root)
	}
	return string(data)
}

// WriteSuccess writes the success envelope, indented for readability.
func WriteSuccess(w io.Writer, additionalContext string) error {
	return write(w, additionalContext, true)
}

// WriteError writes an error envelope. Intended for stderr; output failures
// at that point have no further channel to report to.
func WriteError(w io.Writer, msg string) error {
	return write(w, msg, false)
}

func write(w io.Writer, context string, indent bool) error {
	env := Envelope{HookSpecificOutput: HookOutput{
		HookEventName:     hookEventName,
		AdditionalContext: context,
	}}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(env)
}
