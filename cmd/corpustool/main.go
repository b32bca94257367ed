package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"textback"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: corpustool <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  load  import a canonical JSON corpus into the database")
	fmt.Fprintln(os.Stderr, "  info  summarize the corpus stored in the database")
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "load":
		err = runLoad(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		textback.Logger().Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func defaultDBPath() string {
	if v := os.Getenv("TEXTBACK_DB"); v != "" {
		return v
	}
	return textback.DefaultConfig().Database.Path
}

func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "Corpus database path")
	verbose := fs.Bool("verbose", false, "Enable verbose output")
	fs.Parse(args)
	textback.SetVerbose(*verbose)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected one corpus file, got %d", fs.NArg())
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	corpus, err := textback.ReadCorpus(f)
	if err != nil {
		return err
	}

	db, err := textback.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	if err := db.CreateTables(); err != nil {
		return err
	}

	start := time.Now()
	loaded, skipped, err := textback.LoadCorpus(context.Background(), db, corpus)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Loaded %s messages into %s in %s\n", humanize.Comma(int64(loaded)), *dbPath, time.Since(start).Round(time.Millisecond))
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %s messages without text or media\n", humanize.Comma(int64(skipped)))
	}
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "Corpus database path")
	fs.Parse(args)

	db, err := textback.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	ctx := context.Background()
	meta, err := textback.ComputeMetadata(ctx, db, false)
	if err != nil {
		return err
	}

	fmt.Printf("📚 %s messages (ids %d-%d)\n", humanize.Comma(meta.MessageCount), meta.MinMessageID, meta.MaxMessageID)
	fmt.Printf("📅 %s to %s (%s)\n",
		meta.MinTimestamp.Format("January 2, 2006"), meta.MaxTimestamp.Format("January 2, 2006"),
		strings.TrimSpace(humanize.RelTime(meta.MinTimestamp, meta.MaxTimestamp, "", "")))
	fmt.Printf("👥 Participants: %s\n", strings.Join(meta.Participants, ", "))

	platforms := make([]string, len(meta.Platforms))
	for i, p := range meta.Platforms {
		platforms[i] = textback.FormatPlatform(p)
	}
	fmt.Printf("💬 Platforms: %s\n", strings.Join(platforms, ", "))
	fmt.Printf("😀 Reactions: %s\n", strings.Join(meta.Reactions, " "))

	gen, err := textback.NewQuizGenerator(db, meta, textback.DefaultGeneratorConfig(), nil)
	if err != nil {
		return err
	}
	fmt.Printf("🎯 Variants without a model: %v\n", gen.Variants())
	return nil
}
