// students-cli is a command line client for the student records API.
//
//	students-cli list --search ali --sort-by gpa --sort-order desc
//	students-cli get 7
//	students-cli create --name Alice --email alice@example.com ...
//	students-cli edit 7 --city Dallas
//
// The server address and token come from STUDENTS_API_URL (default
// http://localhost:8082) and STUDENTS_API_TOKEN.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/youta-t/flarc"

	"github.com/aanand-mishra/student-records/internal/client"
)

const defaultURL = "http://localhost:8082"

func main() {
	logger := log.New(os.Stderr, "[students-cli] ", 0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	baseURL := os.Getenv("STUDENTS_API_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}
	c, err := client.New(baseURL, os.Getenv("STUDENTS_API_TOKEN"))
	if err != nil {
		logger.Fatal(err)
	}

	cmd, err := newRoot(c)
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(flarc.Run(ctx, cmd, flarc.WithHelp(true)))
}

func newRoot(c *client.Client) (flarc.Command, error) {
	list, err := newList(c)
	if err != nil {
		return nil, err
	}
	get, err := newGet(c)
	if err != nil {
		return nil, err
	}
	create, err := newCreate(c)
	if err != nil {
		return nil, err
	}
	edit, err := newEdit(c)
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Create, search and edit student records.",
		struct{}{},
		flarc.WithSubcommand("list", list),
		flarc.WithSubcommand("get", get),
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("edit", edit),
	)
}
