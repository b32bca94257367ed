package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"textback"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		dbPath     = flag.String("db", "", "Corpus database path (overrides config)")
		seed       = flag.String("seed", "", "Seed to generate (default: random)")
		variant    = flag.String("variant", "", "Force a question variant")
		count      = flag.Int("count", 1, "Number of questions to generate")
		outputFile = flag.String("output", "", "Output file for question JSON (default: stdout)")
		playMode   = flag.Bool("play", false, "Play interactively in the terminal")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	_ = godotenv.Load()

	log := textback.Logger()

	cfg, err := textback.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *verbose {
		cfg.Verbose = true
	}
	textback.SetVerbose(cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var forced textback.Variant
	if *variant != "" {
		forced, err = textback.ParseVariant(*variant)
		if err != nil {
			log.Fatalf("Unknown variant %q, expected one of %v", *variant, textback.AllVariants)
		}
	}
	if *seed != "" && *count > 1 {
		log.Fatalf("A fixed seed always generates the same question; use -count 1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	engine, err := textback.OpenEngine(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer engine.Close()

	generate := func(seed string) (textback.Question, error) {
		if forced != "" {
			return engine.Generator.GenerateVariant(ctx, seed, forced)
		}
		return engine.Generator.GenerateQuestion(ctx, seed)
	}

	if *playMode {
		play(os.Stdin, os.Stdout, generate)
		return
	}

	questions := make([]textback.Question, 0, *count)
	for i := 0; i < *count; i++ {
		q, err := generate(*seed)
		if err != nil {
			log.Fatalf("Failed to generate question: %v", err)
		}
		questions = append(questions, q)
	}

	var output []byte
	if len(questions) == 1 {
		output, err = json.MarshalIndent(questions[0], "", "  ")
	} else {
		output, err = json.MarshalIndent(questions, "", "  ")
	}
	if err != nil {
		log.Fatalf("Failed to marshal questions: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Infof("Questions saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

const choiceLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// play asks a stream of random questions until input ends or the player types q
func play(in io.Reader, out io.Writer, generate func(seed string) (textback.Question, error)) {
	scanner := bufio.NewScanner(in)
	score, asked := 0, 0

	fmt.Fprintln(out, "🎯 How well do you know your chats? Type q to quit.")
	fmt.Fprintln(out)

	for {
		q, err := generate("")
		if err != nil {
			fmt.Fprintf(out, "❌ Failed to generate question: %v\n", err)
			return
		}
		asked++

		fmt.Fprintf(out, "Question %d (%s, seed %s)\n", asked, q.Variant, q.Seed)
		fmt.Fprintln(out, prompt(q))
		fmt.Fprintln(out)
		for i, m := range q.Messages {
			fmt.Fprintln(out, "  "+messageLine(q, m, i == len(q.Messages)-1))
		}
		fmt.Fprintln(out)

		options := choiceLetters[:min(len(q.Choices), len(choiceLetters))]
		for i, c := range q.Choices[:len(options)] {
			fmt.Fprintf(out, "%c) %s\n", options[i], c)
		}

		var pick int
		for {
			fmt.Fprintf(out, "Your answer (%s): ", options)
			if !scanner.Scan() {
				fmt.Fprintf(out, "\n🏁 Final score: %d/%d\n", score, asked-1)
				return
			}
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if input == "Q" {
				fmt.Fprintf(out, "🏁 Final score: %d/%d\n", score, asked-1)
				return
			}
			if len(input) == 1 {
				if i := strings.Index(options, input); i >= 0 {
					pick = i
					break
				}
			}
			fmt.Fprintf(out, "Please enter one of %s\n", options)
		}

		if q.Choices[pick] == q.Answer {
			score++
			fmt.Fprintln(out, "✅ Correct!")
		} else {
			fmt.Fprintf(out, "❌ Incorrect. The answer is %s\n", q.Answer)
		}
		fmt.Fprintf(out, "📊 Score: %d/%d\n\n", score, asked)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)
	}
}

// messageLine renders one message without giving away the answer carried by the last one
func messageLine(q textback.Question, m textback.QuestionMessage, last bool) string {
	participant, content, reaction := m.Participant, m.Content, m.Reaction
	if m.IsMedia {
		content = "[media] " + content
	}
	if last {
		switch q.Variant {
		case textback.VariantWho:
			participant = "???"
		case textback.VariantContinue, textback.VariantNext:
			content = "???"
		case textback.VariantReact:
			reaction = "?"
		}
	}

	line := fmt.Sprintf("%s: %s", participant, content)
	if reaction != "" {
		line += "  " + reaction
	}
	if q.Variant != textback.VariantWhen && q.Variant != textback.VariantDuration {
		line = humanize.Time(m.Date) + "  " + line
	}
	return line
}

// prompt is the question text shown for each variant
func prompt(q textback.Question) string {
	switch q.Variant {
	case textback.VariantWho:
		return "Who sent the last message?"
	case textback.VariantDuration:
		return fmt.Sprintf("How long did %s take to reply?", q.Recipient)
	case textback.VariantPlatform:
		return "Which platform was the last message sent on?"
	case textback.VariantReact:
		return fmt.Sprintf("How did %s react to the last message?", q.Recipient)
	case textback.VariantContinue:
		return "Which one is the real last message?"
	case textback.VariantNext:
		return fmt.Sprintf("What did %s say next?", q.Recipient)
	case textback.VariantWhen:
		return "When was the last message sent?"
	}
	return "Pick the right answer"
}
