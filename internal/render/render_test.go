package render_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tmoxon/uni-hook/internal/render"
)

var _ = Describe("AdditionalContext", func() {
	params := func() render.Params {
		return render.Params{
			Root:         "/srv/uni",
			SkillsDir:    "/srv/uni/core",
			InitMessages: []string{"Fetching latest changes for core...", "core repository updated successfully"},
			UsingSkills:  "Read SKILL.md files before acting.",
			RepoList:     "- core: /srv/uni/core/skills",
			EnvVars: map[string]string{
				"UNI_SKILL_DEBUGGING": "/srv/uni/core/skills/coding/debugging/SKILL.md",
				"UNI_ROOT":            "/srv/uni",
			},
			Inventory: "### Skills from repository: core\ncoding",
		}
	}

	It("includes the transcript, configuration, and inventory sections", func() {
		text := render.AdditionalContext(params())
		Expect(text).To(HavePrefix("<EXTREMELY_IMPORTANT>"))
		Expect(text).To(HaveSuffix("</EXTREMELY_IMPORTANT>"))
		Expect(text).To(ContainSubstring("core repository updated successfully"))
		Expect(text).To(ContainSubstring("Read SKILL.md files before acting."))
		Expect(text).To(ContainSubstring("- Root directory: /srv/uni"))
		Expect(text).To(ContainSubstring("- Skills directory: /srv/uni/core"))
		Expect(text).To(ContainSubstring("### Skills from repository: core"))
	})

	It("sorts environment variables by name", func() {
		text := render.AdditionalContext(params())
		rootIdx := strings.Index(text, "- UNI_ROOT=")
		skillIdx := strings.Index(text, "- UNI_SKILL_DEBUGGING=")
		Expect(rootIdx).To(BeNumerically(">", 0))
		Expect(skillIdx).To(BeNumerically(">", rootIdx))
	})

	It("appends the behind advisory only on divergence", func() {
		p := params()
		Expect(render.AdditionalContext(p)).NotTo(ContainSubstring("pulling-updates-from-skills-repository"))
		p.Behind = true
		Expect(render.AdditionalContext(p)).To(ContainSubstring("pulling-updates-from-skills-repository"))
	})

	It("omits the transcript block when there are no messages", func() {
		p := params()
		p.InitMessages = nil
		text := render.AdditionalContext(p)
		Expect(text).To(ContainSubstring("You have access to the uni.\n\n**The content below"))
	})
})

var _ = Describe("Envelope writing", func() {
	It("writes the success envelope with the fixed event name", func() {
		var buf bytes.Buffer
		Expect(render.WriteSuccess(&buf, "hello")).To(Succeed())

		var env render.Envelope
		Expect(json.Unmarshal(buf.Bytes(), &env)).To(Succeed())
		Expect(env.HookSpecificOutput.HookEventName).To(Equal("SessionStart"))
		Expect(env.HookSpecificOutput.AdditionalContext).To(Equal("hello"))
		// Indented for human eyes.
		Expect(buf.String()).To(ContainSubstring("\n  \"hookSpecificOutput\""))
	})

	It("writes an error envelope with the same shape", func() {
		var buf bytes.Buffer
		Expect(render.WriteError(&buf, "ERROR: Session start failed: boom")).To(Succeed())

		var env render.Envelope
		Expect(json.Unmarshal(buf.Bytes(), &env)).To(Succeed())
		Expect(env.HookSpecificOutput.AdditionalContext).To(ContainSubstring("boom"))
	})
})

var _ = Describe("ReadUsingSkills", func() {
	It("returns the SKILL.md content when present", func() {
		root := GinkgoT().TempDir()
		dir := filepath.Join(root, "core", "skills", "using-skills")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte("# Using skills\n"), 0o644)).To(Succeed())
		Expect(render.ReadUsingSkills(root)).To(Equal("# Using skills\n"))
	})

	It("returns placeholder text naming the expected path when absent", func() {
		root := GinkgoT().TempDir()
		text := render.ReadUsingSkills(root)
		Expect(text).To(ContainSubstring("uni is ready"))
		Expect(text).To(ContainSubstring("skills/using-skills/SKILL.md"))
	})
})
