// Command lint runs the repository's formatting, vet, lint and short test
// checks in order. Steps whose tool is not installed are skipped.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
)

type step struct {
	name     string
	cmd      string
	args     []string
	optional bool // skipped when cmd is not on PATH
}

func steps(fix bool) []step {
	gofmt := step{name: "gofmt", cmd: "gofmt", args: []string{"-l", "."}}
	if fix {
		gofmt.args = []string{"-w", "."}
	}
	return []step{
		gofmt,
		{name: "vet", cmd: "go", args: []string{"vet", "./..."}},
		{name: "golangci-lint", cmd: "golangci-lint", args: []string{"run", "./..."}, optional: true},
		{name: "staticcheck", cmd: "staticcheck", args: []string{"./..."}, optional: true},
		{name: "tests", cmd: "go", args: []string{"test", "-short", "-race", "./..."}},
	}
}

func run(s step) error {
	if _, err := exec.LookPath(s.cmd); err != nil {
		if s.optional {
			fmt.Printf("-- %s: %s not installed, skipping\n", s.name, s.cmd)
			return nil
		}
		return fmt.Errorf("%s: %w", s.name, err)
	}
	fmt.Printf("-- %s\n", s.name)
	c := exec.Command(s.cmd, s.args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func main() {
	fix := flag.Bool("fix", false, "rewrite files with gofmt instead of listing them")
	keepGoing := flag.Bool("k", false, "keep going after a failed step")
	flag.Parse()

	failed := 0
	for _, s := range steps(*fix) {
		if err := run(s); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed++
			if !*keepGoing {
				break
			}
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
