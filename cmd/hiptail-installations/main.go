// Command hiptail-installations lists the installations kept in a bot's
// BadgerDB authority store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	hiptailbot "github.com/dayflower/hiptail-bot"
)

func main() {
	dbPath := flag.String("db", "", "Path to the bot's BadgerDB directory")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db")
	}

	provider, err := hiptailbot.OpenBadgerProviderReadOnly(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer provider.Close()

	if err := render(context.Background(), os.Stdout, provider); err != nil {
		log.Fatal(err)
	}
}

func render(ctx context.Context, w io.Writer, provider hiptailbot.Provider) error {
	auths, err := provider.List(ctx)
	if err != nil {
		return fmt.Errorf("list installations: %w", err)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"OAuth ID", "Scope", "Room", "Group", "Installed At", "Capabilities URL"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, auth := range auths {
		table.Append(row(auth))
	}
	table.Render()
	return nil
}

func row(auth hiptailbot.Authority) []string {
	scope := "global"
	if auth.ForRoom() {
		scope = "room"
	}
	installed := ""
	if !auth.InstalledAt.IsZero() {
		installed = auth.InstalledAt.UTC().Format(time.RFC3339)
	}
	return []string{
		auth.OAuthID,
		scope,
		strconv.FormatInt(auth.RoomID, 10),
		strconv.FormatInt(auth.GroupID, 10),
		installed,
		auth.CapabilitiesURL,
	}
}
