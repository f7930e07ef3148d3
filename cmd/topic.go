package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/janitor/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the user manual" }
func (*topicCmd) Usage() string {
	return `janitor topic [<topic>...]

  Prints the manual pages of the given topics, the table of contents without
  topic, and every page with '*'.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	page, err := manual(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(page)
	return subcommands.ExitSuccess
}

// manual concatenates the pages of topics, or returns the readme. An unknown
// topic is reported with the list of known ones.
func manual(topics []string) (string, error) {
	if len(topics) == 0 {
		return docs.GetTopic("readme")
	}
	page, err := docs.GetTopics(topics...)
	if err == nil {
		return page, nil
	}
	known, lerr := docs.GetAllTopics()
	if lerr != nil {
		return "", err
	}
	return "", fmt.Errorf("%w; known topics: %s", err, strings.Join(known, ", "))
}
