// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// mkgroups manages ztest_ fixture entries in a group file.
//
// Usage:
//
//	mkgroups setup [flags] <groupfile>
//	mkgroups cleanup <groupfile>
//	mkgroups show <groupfile>
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/osprobe/syscheck/lib/version"
)

// fixturePrefix marks every entry this tool is allowed to create or
// remove. Anything else in the file is passed through byte for byte.
const fixturePrefix = "ztest_"

// baseGID is the first numeric id handed to generated fixtures.
const baseGID = 54320

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SYSCHECK_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "setup":
		err = setupCmd(args, logger)
	case "cleanup":
		err = cleanupCmd(args, logger)
	case "show":
		err = showCmd(args)
	case "version", "--version":
		fmt.Printf("mkgroups %s\n", version.Full())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fixtureSpec is the optional YAML description of extra groups to
// create alongside the standard set.
type fixtureSpec struct {
	Groups []fixtureGroup `yaml:"groups"`
}

type fixtureGroup struct {
	Name    string   `yaml:"name"`
	GID     uint32   `yaml:"gid"`
	Members []string `yaml:"members"`
}

func setupCmd(args []string, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	members := fs.Int("members", 20, "member count of the generated ztest_grp")
	large := fs.Int("large", 200, "member count of the generated ztest_large")
	specPath := fs.String("groups", "", "YAML file describing extra fixture groups")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("setup needs exactly one group file argument")
	}
	path := fs.Arg(0)

	fixtures := []fixtureGroup{
		{Name: "ztest_small", GID: baseGID, Members: syntheticMembers(1)},
		{Name: "ztest_grp", GID: baseGID + 1, Members: syntheticMembers(*members)},
		{Name: "ztest_large", GID: baseGID + 2, Members: syntheticMembers(*large)},
	}

	if *specPath != "" {
		data, err := os.ReadFile(*specPath)
		if err != nil {
			return fmt.Errorf("reading fixture spec: %w", err)
		}
		var spec fixtureSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("parsing fixture spec %s: %w", *specPath, err)
		}
		for _, g := range spec.Groups {
			if !strings.HasPrefix(g.Name, fixturePrefix) {
				return fmt.Errorf("refusing to create %q: fixture groups must carry the %s prefix", g.Name, fixturePrefix)
			}
			fixtures = append(fixtures, g)
		}
	}

	kept, removed, err := loadWithoutFixtures(path)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Debug("replacing existing fixtures", "count", removed)
	}

	seen := make(map[string]bool)
	for _, g := range fixtures {
		if seen[g.Name] {
			return fmt.Errorf("duplicate fixture group %q", g.Name)
		}
		seen[g.Name] = true
		kept = append(kept, fmt.Sprintf("%s:!:%d:%s", g.Name, g.GID, strings.Join(g.Members, ",")))
	}

	if err := writeGroupFile(path, kept); err != nil {
		return err
	}
	fmt.Printf("Wrote %d fixture group(s) to %s\n", len(fixtures), path)
	return nil
}

func cleanupCmd(args []string, logger *slog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("cleanup needs exactly one group file argument")
	}
	path := args[0]

	kept, removed, err := loadWithoutFixtures(path)
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Printf("No %s entries in %s\n", fixturePrefix, path)
		return nil
	}
	if err := writeGroupFile(path, kept); err != nil {
		return err
	}
	logger.Debug("fixtures removed", "count", removed, "file", path)
	fmt.Printf("Removed %d fixture group(s) from %s\n", removed, path)
	return nil
}

func showCmd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show needs exactly one group file argument")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	type row struct {
		name    string
		gid     string
		members int
	}
	var fixtures []row
	other := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 4 {
			continue
		}
		if !strings.HasPrefix(fields[0], fixturePrefix) {
			other++
			continue
		}
		members := 0
		if fields[3] != "" {
			members = len(strings.Split(fields[3], ","))
		}
		fixtures = append(fixtures, row{name: fields[0], gid: fields[2], members: members})
	}

	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].name < fixtures[j].name })
	fmt.Printf("%s: %d fixture group(s), %d other entries\n", path, len(fixtures), other)
	for _, f := range fixtures {
		fmt.Printf("  %-16s gid=%-8s members=%d\n", f.name, f.gid, f.members)
	}
	return nil
}

// syntheticMembers returns n member names in the ztest_uNNNN shape.
func syntheticMembers(n int) []string {
	members := make([]string, n)
	for i := range members {
		members[i] = fmt.Sprintf("%su%04d", fixturePrefix, i+1)
	}
	return members
}

// loadWithoutFixtures reads the group file and returns its lines with
// every fixture entry stripped, plus the number stripped. A missing
// file is an empty file.
func loadWithoutFixtures(path string) (kept []string, removed int, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		name, _, _ := strings.Cut(strings.TrimSpace(line), ":")
		if strings.HasPrefix(name, fixturePrefix) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	return kept, removed, nil
}

// writeGroupFile replaces path atomically via a same-directory rename.
func writeGroupFile(path string, lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func printUsage() {
	fmt.Print(`mkgroups - group fixture builder for the probe

Usage:
  mkgroups setup [flags] <groupfile>    create/replace ztest_ fixtures
  mkgroups cleanup <groupfile>          remove every ztest_ fixture
  mkgroups show <groupfile>             list fixtures and counts

Setup flags:
  --members N     member count of ztest_grp (default 20)
  --large N       member count of ztest_large (default 200)
  --groups FILE   YAML spec of extra fixture groups

Only entries with the ztest_ prefix are ever created or removed; all
other lines in the file pass through unchanged.
`)
}
