// Command searchcrawl crawls a set of seed URLs, indexes the pages it
// fetches, and serves the result behind a small HTTP search front end.
package main

import (
	cmd "github.com/rohmanhakim/searchcrawl/internal/cli"
)

func main() {
	cmd.Execute()
}
