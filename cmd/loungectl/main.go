// loungectl is a read-only inspector for operators: it dumps the most
// recent lounge messages and the users currently inside the liveness
// window, straight from the stores, without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	domainpresence "gamelounge/domain/presence"
	"gamelounge/feed"
	"gamelounge/store"
)

func main() {
	sqlitePath := flag.String("sqlite", "lounge.db", "Path to the SQLite database")
	badgerPath := flag.String("badger", "presence-db", "Path to the Badger presence store")
	limit := flag.Int("limit", 20, "Number of lounge messages to show")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	hub := feed.NewHub(logger, 1)

	db, err := store.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open sqlite store: %v", err)
	}

	// BypassLockGuard allows opening while the daemon holds the lock.
	badgerDB, err := badger.Open(badger.DefaultOptions(*badgerPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatalf("Failed to open presence store: %v", err)
	}
	defer badgerDB.Close()

	ctx := context.Background()
	now := time.Now()

	messages := store.NewMessageRepository(db, hub, logger)
	recent, err := messages.Recent(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to fetch lounge messages: %v", err)
	}

	color.Bold.Printf("Global Lounge — last %d messages\n", len(recent))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Author", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, m := range recent {
		table.Append([]string{
			m.CreatedAt.Local().Format(time.Stamp),
			m.AuthorID,
			m.Content,
		})
	}
	table.Render()

	presenceRepo := store.NewPresenceRepository(badgerDB, hub, logger)
	online, err := presenceRepo.Online(now, domainpresence.OnlineWindow)
	if err != nil {
		log.Fatalf("Failed to scan presence: %v", err)
	}

	fmt.Println()
	color.Bold.Printf("Online users (%d)\n", len(online))
	presenceTable := tablewriter.NewWriter(os.Stdout)
	presenceTable.SetHeader([]string{"User", "Status", "Last beat"})
	presenceTable.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	presenceTable.SetAlignment(tablewriter.ALIGN_LEFT)
	presenceTable.SetBorder(false)
	for _, record := range online {
		presenceTable.Append([]string{
			record.UserID,
			string(record.DisplayStatus(now)),
			record.LastPresenceAt.Local().Format(time.Stamp),
		})
	}
	presenceTable.Render()
}
