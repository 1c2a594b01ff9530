package trainer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"SalesTrainer/internal/config"
	"SalesTrainer/internal/conversation"
	"SalesTrainer/internal/evaluation"
	"SalesTrainer/internal/llm"
	"SalesTrainer/internal/persona"
	"SalesTrainer/internal/report"
	"SalesTrainer/internal/session"
	"SalesTrainer/internal/store"
	"SalesTrainer/internal/telemetry"
)

// leaderboardLimit is how many rows the /board command shows.
const leaderboardLimit = 10

// Trainer is the interactive sales-training application: it owns the
// active session and wires the conversation driver, evaluation engine and
// reporter to the shared store.
type Trainer struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	personas []persona.Persona
	driver   *conversation.Driver
	engine   *evaluation.Engine
	reporter *report.Reporter
	session  *session.Session
	cleanup  func()
}

// New initializes logging, telemetry, storage and the model client, and
// loads the prospect catalog.
func New(cfg *config.Config, traineeName string) (*Trainer, error) {
	logger, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	_, _, cleanup, err := telemetry.InitTelemetry(context.Background(), cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	st, err := store.Open(cfg.DBFile)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	personas, err := persona.Load(cfg.ProspectsFile)
	if err != nil {
		cleanup()
		st.Close()
		return nil, err
	}

	client := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)

	t := &Trainer{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		personas: personas,
		driver:   conversation.NewDriver(client, logger),
		engine:   evaluation.NewEngine(client, st, logger),
		reporter: report.NewReporter(client, st, logger),
		session:  session.New(traineeName),
		cleanup:  cleanup,
	}

	logger.Info("trainer initialized",
		"model", cfg.Model,
		"personas", len(personas),
		"db", cfg.DBFile,
	)
	return t, nil
}

// Run drives the interactive loop until the trainee quits.
func (t *Trainer) Run() error {
	defer t.cleanup()
	defer t.store.Close()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	fmt.Println("=== Sales Training Sandbox ===")
	if t.session.TraineeName == "" {
		fmt.Print("Enter your name: ")
		if scanner.Scan() {
			t.session.TraineeName = strings.TrimSpace(scanner.Text())
		}
	}
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()

	t.choosePersona(scanner)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := t.handleCommand(ctx, scanner, input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				t.logger.Error("command error", "error", err)
			}
			if quit {
				break
			}
			continue
		}

		reply, err := t.driver.Respond(ctx, t.session, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			t.logger.Error("failed to get prospect reply", "error", err)
			continue
		}
		fmt.Printf("Prospect: %s\n\n", reply)
	}

	fmt.Println("Goodbye!")
	return nil
}

// choosePersona lists the catalog and starts a fresh conversation with the
// selected prospect.
func (t *Trainer) choosePersona(scanner *bufio.Scanner) {
	fmt.Println("Select a prospect:")
	for i, p := range t.personas {
		fmt.Printf("%d. %s\n", i+1, p.Label())
	}
	for {
		fmt.Print("Prospect number: ")
		if !scanner.Scan() {
			return
		}
		idx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || idx < 1 || idx > len(t.personas) {
			fmt.Printf("Please enter a number between 1 and %d.\n", len(t.personas))
			continue
		}
		p := t.personas[idx-1]
		t.session.Start(p)
		fmt.Printf("Persona: %s\n\n", p.Label())
		t.logger.Info("started new prospect", "trainee", t.session.TraineeName, "persona", p.Name)
		return
	}
}

// handleCommand handles slash commands. It returns true when the trainee
// wants to quit.
func (t *Trainer) handleCommand(ctx context.Context, scanner *bufio.Scanner, cmd string) (bool, error) {
	parts := strings.Fields(cmd)

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/name":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /name <your name>")
		}
		t.session.TraineeName = strings.Join(parts[1:], " ")
		fmt.Printf("Trainee name set to %s\n", t.session.TraineeName)
		return false, nil

	case "/new":
		t.choosePersona(scanner)
		return false, nil

	case "/score":
		t.endChatAndScore(ctx)
		return false, nil

	case "/summary":
		t.generateSummary(ctx)
		return false, nil

	case "/board":
		return false, t.showLeaderboard()

	case "/history":
		var idx int
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return false, fmt.Errorf("usage: /history [number]")
			}
			idx = n
		}
		return false, t.showHistory(idx)

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /score             - End the chat and generate your score")
		fmt.Println("  /new               - Start a new prospect (clears the chat)")
		fmt.Println("  /summary           - Generate your performance summary")
		fmt.Println("  /board             - Show the leaderboard")
		fmt.Println("  /history [number]  - List past chats, or show one transcript")
		fmt.Println("  /name <name>       - Set your trainee name")
		fmt.Println("  /quit, /exit       - Exit")
		return false, nil

	default:
		fmt.Println("Unknown command. Type /help for a list.")
		return false, nil
	}
}

// endChatAndScore scores the current conversation and resets it on success.
func (t *Trainer) endChatAndScore(ctx context.Context) {
	if t.session.Len() == 0 {
		fmt.Println("Nothing to score yet. Talk to the prospect first.")
		return
	}

	score, feedback, err := t.engine.Score(ctx, t.session.TraineeName, t.session.Turns())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoTrainee):
			fmt.Println("Please enter your name first (/name <name>).")
		case errors.Is(err, evaluation.ErrMalformed):
			fmt.Printf("The evaluator returned an unusable response, nothing was saved: %v\n", err)
		default:
			fmt.Printf("Error: %v\n", err)
		}
		t.logger.Error("scoring failed", "error", err)
		return
	}

	fmt.Printf("\nScore: %d/%d\n", score, evaluation.MaxScore)
	fmt.Println("Feedback:")
	dims := make([]string, 0, len(feedback))
	for dim := range feedback {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		fmt.Printf("  %s: %s\n", dim, feedback[dim])
	}
	fmt.Println()

	t.session.Reset()
}

// generateSummary prints the trainee's average and coaching summary.
func (t *Trainer) generateSummary(ctx context.Context) {
	avg, summary, err := t.reporter.Summarize(ctx, t.session.TraineeName)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoTrainee):
			fmt.Println("Please enter your name first (/name <name>).")
		case errors.Is(err, report.ErrNoHistory):
			fmt.Println("No scored chats yet. Finish a session with /score first.")
		default:
			fmt.Printf("Error: %v\n", err)
		}
		t.logger.Error("summary failed", "error", err)
		return
	}

	fmt.Printf("\nAverage score: %.1f/%d\n", avg, evaluation.MaxScore)
	fmt.Println(summary)
	fmt.Println()
}

// showLeaderboard prints the top scores.
func (t *Trainer) showLeaderboard() error {
	records, err := t.store.TopScores(leaderboardLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("The leaderboard is empty.")
		return nil
	}
	fmt.Println("Leaderboard:")
	for i, r := range records {
		fmt.Printf("%d. %s: %d\n", i+1, r.Name, r.Score)
	}
	fmt.Println()
	return nil
}

// showHistory lists stored chats newest first, or prints one transcript
// when a number from the list is given.
func (t *Trainer) showHistory(idx int) error {
	chats, err := t.store.AllChats()
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No past chats.")
		return nil
	}

	if idx > 0 {
		if idx > len(chats) {
			return fmt.Errorf("no chat %d: only %d stored", idx, len(chats))
		}
		chat := chats[idx-1]
		fmt.Printf("Transcript from %s (%s):\n%s\n\n", chat.Timestamp.Format("2006-01-02 15:04"), chat.Name, chat.Chat)
		return nil
	}

	fmt.Println("Past chats:")
	for i, chat := range chats {
		fmt.Printf("%d. %s — %s\n", i+1, chat.Name, chat.Timestamp.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	return nil
}
