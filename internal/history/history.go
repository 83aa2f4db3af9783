// Package history reads commit and branch records from the repository.
package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitshelf/gitshelf/internal/gitx"
)

const fieldSep = "\x1f"

// DefaultCommitLimit bounds how many commits are read when the caller does
// not say.
const DefaultCommitLimit = 20

// Commit is one entry of the commit log.
type Commit struct {
	Hash    string
	Author  string
	Date    time.Time
	Subject string
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}

// Branch is one local branch.
type Branch struct {
	Name     string
	Upstream string
	Current  bool
}

// Reader reads history through a git runner.
type Reader struct {
	run gitx.Runner
}

// NewReader creates a Reader over the given runner.
func NewReader(run gitx.Runner) *Reader {
	return &Reader{run: run}
}

// Commits returns up to limit commits reachable from HEAD, newest first.
// A non-positive limit means DefaultCommitLimit.
func (r *Reader) Commits(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = DefaultCommitLimit
	}
	out, err := r.run.Run(ctx, "log", "-n", strconv.Itoa(limit), "--format=%H%x1f%an%x1f%ct%x1f%s")
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}

	var commits []Commit
	for _, line := range splitLines(out) {
		fields := strings.Split(line, fieldSep)
		if len(fields) != 4 {
			continue
		}
		commit := Commit{Hash: fields[0], Author: fields[1], Subject: fields[3]}
		if sec, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			commit.Date = time.Unix(sec, 0)
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// Branches returns all local branches with the checked-out one marked.
func (r *Reader) Branches(ctx context.Context) ([]Branch, error) {
	out, err := r.run.Run(ctx,
		"for-each-ref", "--format=%(HEAD)%x1f%(refname:short)%x1f%(upstream:short)", "refs/heads")
	if err != nil {
		return nil, fmt.Errorf("failed to read branches: %w", err)
	}

	var branches []Branch
	for _, line := range splitLines(out) {
		fields := strings.Split(line, fieldSep)
		if len(fields) != 3 || fields[1] == "" {
			continue
		}
		branches = append(branches, Branch{
			Name:     fields[1],
			Upstream: fields[2],
			Current:  fields[0] == "*",
		})
	}
	return branches, nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
