package discovery_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tmoxon/uni-hook/internal/discovery"
	"github.com/tmoxon/uni-hook/internal/model"
)

// writeSkill creates <root>/<repo>/skills/<category>/<name>/SKILL.md.
func writeSkill(root, repo, category, name string) string {
	dir := filepath.Join(root, repo, "skills", category, name)
	Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
	path := filepath.Join(dir, "SKILL.md")
	Expect(os.WriteFile(path, []byte("---\nname: "+name+"\n---\n"), 0o644)).To(Succeed())
	return path
}

type mockExecer struct {
	out string
	err error
	ran []string
}

func (m *mockExecer) Exec(_ context.Context, path string) (string, error) {
	m.ran = append(m.ran, path)
	return m.out, m.err
}

var _ = Describe("Discover", func() {
	var (
		root  string
		repos []model.RepoSpec
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		repos = []model.RepoSpec{{Name: "core", URL: "https://example.com/core.git", Branch: "main"}}
	})

	It("finds SKILL.md leaves two levels deep and builds env vars", func() {
		path := writeSkill(root, "core", "collaboration", "brainstorming")
		writeSkill(root, "core", "coding", "code-review")

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.Skills).To(HaveLen(2))
		Expect(res.EnvVars).To(HaveKeyWithValue("UNI_SKILL_BRAINSTORMING", filepath.ToSlash(path)))
		Expect(res.EnvVars).To(HaveKey("UNI_SKILL_CODE_REVIEW"))
		Expect(res.RepoList).To(ContainSubstring("- core: " + filepath.Join(root, "core", "skills")))
	})

	It("skips repositories without a skills directory", func() {
		repos = append(repos, model.RepoSpec{Name: "extras"})
		writeSkill(root, "core", "coding", "debugging")

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.RepoList).NotTo(ContainSubstring("extras"))
		Expect(res.Skills).To(HaveLen(1))
	})

	It("ignores leaf directories without a SKILL.md", func() {
		writeSkill(root, "core", "coding", "debugging")
		empty := filepath.Join(root, "core", "skills", "coding", "empty")
		Expect(os.MkdirAll(empty, 0o755)).To(Succeed())

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.Skills).To(HaveLen(1))
		Expect(res.EnvVars).NotTo(HaveKey("UNI_SKILL_EMPTY"))
	})

	It("excludes directories matching the exclude globs", func() {
		writeSkill(root, "core", "coding", "debugging")
		writeSkill(root, "core", "node_modules", "not-a-skill")

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.Skills).To(HaveLen(1))
		Expect(res.EnvVars).NotTo(HaveKey("UNI_SKILL_NOT_A_SKILL"))
	})

	It("falls back to sorted category names for the inventory", func() {
		writeSkill(root, "core", "writing", "editing")
		writeSkill(root, "core", "coding", "debugging")

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.Inventory).To(ContainSubstring("### Skills from repository: core\ncoding\nwriting"))
	})

	It("prefers find-skills output when the script succeeds", func() {
		writeSkill(root, "core", "coding", "debugging")
		script := filepath.Join(root, "core", "skills", "using-skills", "find-skills")
		Expect(os.MkdirAll(filepath.Dir(script), 0o755)).To(Succeed())
		Expect(os.WriteFile(script, []byte("#!/bin/sh\necho inventory\n"), 0o755)).To(Succeed())

		exec := &mockExecer{out: "curated inventory"}
		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos, Exec: exec})
		Expect(exec.ran).To(ConsistOf(script))
		Expect(res.Inventory).To(ContainSubstring("curated inventory"))
	})

	It("falls back to directory listing when find-skills fails", func() {
		writeSkill(root, "core", "coding", "debugging")
		script := filepath.Join(root, "core", "skills", "using-skills", "find-skills")
		Expect(os.MkdirAll(filepath.Dir(script), 0o755)).To(Succeed())
		Expect(os.WriteFile(script, []byte("#!/bin/sh\nexit 1\n"), 0o755)).To(Succeed())

		exec := &mockExecer{err: errors.New("exit status 1")}
		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos, Exec: exec})
		Expect(res.Inventory).To(ContainSubstring("coding"))
	})

	It("runs a real find-skills script via ScriptExecer", func() {
		if runtime.GOOS == "windows" {
			Skip("requires /bin/sh")
		}
		writeSkill(root, "core", "coding", "debugging")
		script := filepath.Join(root, "core", "skills", "using-skills", "find-skills")
		Expect(os.MkdirAll(filepath.Dir(script), 0o755)).To(Succeed())
		Expect(os.WriteFile(script, []byte("#!/bin/sh\necho scripted catalog\n"), 0o755)).To(Succeed())

		res := discovery.Discover(context.Background(), discovery.Options{Root: root, Repos: repos})
		Expect(res.Inventory).To(ContainSubstring("scripted catalog"))
	})
})

var _ = Describe("Skill env naming", func() {
	It("upper-cases and replaces dashes", func() {
		s := model.Skill{Name: "code-review", Repo: "core", Path: "/x/SKILL.md"}
		Expect(s.EnvVar()).To(Equal("UNI_SKILL_CODE_REVIEW"))
	})
})
