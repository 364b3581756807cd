// Package model defines the core data types used throughout uni-hook.
package model

import "strings"

// RepoSpec declares one skill repository to synchronize.
type RepoSpec struct {
	// Name is the unique repository key; it doubles as the checkout
	// directory name under the cache root.
	Name string `json:"name" yaml:"name"`
	// URL is the clone source.
	URL string `json:"url" yaml:"url"`
	// Branch is the branch to track. Empty entries inherit the configured
	// skills branch before any synchronization starts.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Relation enumerates how a local branch relates to its tracked upstream.
type Relation string

const (
	// RelationUnresolvable means local or upstream could not be resolved
	// (no tracking branch, detached HEAD). Nothing to compare.
	RelationUnresolvable Relation = "unresolvable"
	// RelationUpToDate means local HEAD equals the upstream ref.
	RelationUpToDate Relation = "up_to_date"
	// RelationFastForwardable means local HEAD is a strict ancestor of
	// upstream and a pointer move suffices.
	RelationFastForwardable Relation = "fast_forwardable"
	// RelationDiverged means local and upstream histories have both
	// advanced; the hook never resolves this itself.
	RelationDiverged Relation = "diverged"
)

// SyncOutcome records what happened to one repository during a run.
type SyncOutcome struct {
	// Updated is true when a fast-forward merge completed.
	Updated bool `json:"updated" yaml:"updated"`
	// Behind is true when local and upstream diverged and no automatic
	// update was attempted. Updated and Behind are mutually exclusive.
	Behind bool `json:"behind" yaml:"behind"`
	// Messages is the ordered human-readable transcript.
	Messages []string `json:"messages" yaml:"messages"`
}

// Merge folds another outcome into this one: booleans OR together and
// transcripts concatenate in declaration order.
func (o *SyncOutcome) Merge(other SyncOutcome) {
	o.Updated = o.Updated || other.Updated
	o.Behind = o.Behind || other.Behind
	o.Messages = append(o.Messages, other.Messages...)
}

// Append adds one transcript line.
func (o *SyncOutcome) Append(msg string) {
	o.Messages = append(o.Messages, msg)
}

// Skill is one discovered skill definition.
type Skill struct {
	// Name is the leaf directory name, for example "brainstorming".
	Name string `json:"name" yaml:"name"`
	// Repo is the repository the skill was found in.
	Repo string `json:"repo" yaml:"repo"`
	// Path is the SKILL.md path with forward slashes.
	Path string `json:"path" yaml:"path"`
}

// EnvVar returns the environment variable name the skill is published
// under, for example UNI_SKILL_BRAINSTORMING.
func (s Skill) EnvVar() string {
	name := strings.ToUpper(strings.ReplaceAll(s.Name, "-", "_"))
	return "UNI_SKILL_" + name
}
