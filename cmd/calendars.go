package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List the IDs of your Google calendars",
	Args:  cobra.NoArgs,
	RunE:  runCalendars,
}

func runCalendars(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newSourceFetcher(cfg).googleClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	items, err := client.Calendars(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendars: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ID - CALENDAR")
	for _, c := range items {
		fmt.Printf("%s  -  %s\n", c.ID, c.Summary)
	}
	return nil
}
