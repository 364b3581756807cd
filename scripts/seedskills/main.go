// SPDX-License-Identifier: MIT

// Command seedskills generates a synthetic skills tree for exercising
// discovery against large repositories, and reports how long a discovery
// pass takes over it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tmoxon/uni-hook/internal/discovery"
	"github.com/tmoxon/uni-hook/internal/model"
)

func main() {
	root := flag.String("root", "", "cache root to seed (required)")
	repo := flag.String("repo", "core", "repository name to seed under the root")
	categories := flag.Int("categories", 10, "number of category directories")
	skills := flag.Int("skills", 20, "number of skills per category")
	flag.Parse()

	if *root == "" {
		fmt.Fprintln(os.Stderr, "seedskills: -root is required")
		os.Exit(2)
	}

	if err := seed(*root, *repo, *categories, *skills); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	start := time.Now()
	result := discovery.Discover(context.Background(), discovery.Options{
		Root:  *root,
		Repos: []model.RepoSpec{{Name: *repo}},
	})
	elapsed := time.Since(start)

	fmt.Printf("seeded %d skills under %s\n", *categories**skills, filepath.Join(*root, *repo, "skills"))
	fmt.Printf("discovery found %d skills (%d env vars) in %s\n", len(result.Skills), len(result.EnvVars), elapsed)
	for _, d := range result.Diags {
		fmt.Fprintln(os.Stderr, d)
	}
}

func seed(root, repo string, categories, skills int) error {
	for c := 0; c < categories; c++ {
		for s := 0; s < skills; s++ {
			dir := filepath.Join(root, repo, "skills",
				fmt.Sprintf("category-%02d", c),
				fmt.Sprintf("skill-%02d-%02d", c, s))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			content := fmt.Sprintf("---\nname: skill-%02d-%02d\ndescription: synthetic skill for discovery timing\n---\n", c, s)
			if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
