// Command agentcoredemo wires agentcore's runtime engine to a real model
// transport and the built-in reference tools so the engine can be exercised
// manually from a terminal. It is explicitly outside CORE's own scope (see
// SPEC_FULL.md §1): a thin composition root, not a feature of the library.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/backend"
	"github.com/haasonsaas/agentcore/builtin"
	"github.com/haasonsaas/agentcore/cycle"
	"github.com/haasonsaas/agentcore/execctx"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/llmclient"
	"github.com/haasonsaas/agentcore/memory"
	"github.com/haasonsaas/agentcore/runtime"
	"github.com/haasonsaas/agentcore/session"
	"github.com/haasonsaas/agentcore/store"
	"github.com/haasonsaas/agentcore/tools"
)

func main() {
	var (
		provider  = flag.String("provider", "anthropic", "model provider: anthropic, openai, or bedrock")
		model     = flag.String("model", "", "model name override")
		statePath = flag.String("sqlite", "", "path to a SQLite checkpoint store (defaults to in-memory)")
		maxCycles = flag.Int("max-cycles", 0, "override RuntimeOptions.MaxCycles (0 keeps the default)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	llm, err := buildClient(*provider, *model)
	if err != nil {
		logger.Error("build model client", "error", err)
		os.Exit(1)
	}

	checkpoints, closeStore, err := buildStore(*statePath)
	if err != nil {
		logger.Error("open checkpoint store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	registry := tools.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		logger.Error("register builtin tools", "error", err)
		os.Exit(1)
	}
	dispatcher := tools.NewDispatcher(registry, nil)
	compactor := memory.NewCompactor()
	hookManager := hooks.NewManager()
	runner := cycle.New(registry, dispatcher, compactor, hookManager, llm, nil)

	opts := agentcore.DefaultRuntimeOptions()
	if *maxCycles > 0 {
		opts.MaxCycles = *maxCycles
	}
	opts = opts.Sanitize()

	events := agentcore.EventSinkFunc(func(e agentcore.Event) {
		logger.Info("event", "type", string(e.Type), "task_id", e.TaskID, "cycle", e.Cycle)
	})

	engine := runtime.New(backend.NewInline(), runner, hookManager, checkpoints, opts, events)
	engine.Metrics = runtime.NewMetrics()

	mgr := session.NewManager([]byte(resumeSigningKey()), opts.ResumeTokenTTL)
	s := mgr.Create(engine, session.TaskTemplate{
		Model:        defaultModelFor(*provider, *model),
		SystemPrompt: "You are a careful, concise assistant running inside a demo harness.",
		MaxCycles:    opts.MaxCycles,
	})

	logger.Info("session ready", "session_id", s.ID, "provider", *provider)
	repl(logger, s)
}

func repl(logger *slog.Logger, s *session.Session) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "type a prompt and press enter (ctrl-d to quit)")
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			return
		}
		text := scanner.Text()
		if text == "" {
			continue
		}

		var (
			result agentcore.AgentResult
			err    error
		)
		if s.State() == session.RunStateWaitUser {
			result, err = s.ContinueRun(ctx, text)
		} else {
			result, err = s.Prompt(ctx, text, true)
		}
		if err != nil {
			logger.Error("run", "error", err)
			continue
		}

		switch result.Status {
		case agentcore.StatusCompleted:
			fmt.Println(result.FinalAnswer)
		case agentcore.StatusWaitUser:
			fmt.Println("[waiting for you] " + result.WaitReason)
		default:
			fmt.Printf("[%s] %s\n", result.Status, result.Error)
		}
	}
}

func buildClient(provider, model string) (llmclient.Client, error) {
	switch provider {
	case "anthropic":
		return llmclient.NewAnthropicClient(llmclient.AnthropicConfig{
			APIKey:       os.Getenv("ANTHROPIC_API_KEY"),
			DefaultModel: model,
		})
	case "openai":
		return llmclient.NewOpenAIClient(llmclient.OpenAIConfig{
			APIKey:       os.Getenv("OPENAI_API_KEY"),
			DefaultModel: model,
		})
	case "bedrock":
		return llmclient.NewBedrockClient(context.Background(), llmclient.BedrockConfig{
			Region:       os.Getenv("AWS_REGION"),
			DefaultModel: model,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func defaultModelFor(provider, model string) string {
	if model != "" {
		return model
	}
	switch provider {
	case "openai":
		return "gpt-4o"
	case "bedrock":
		return "anthropic.claude-3-5-sonnet-20241022-v2:0"
	default:
		return "claude-sonnet-4-20250514"
	}
}

// buildStore returns the configured StateStore plus a close function; the
// in-memory store has nothing to close, so close is a no-op in that case.
func buildStore(path string) (execctx.StateStore, func(), error) {
	if path == "" {
		return store.NewMemory(), func() {}, nil
	}
	sqlite, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return sqlite, func() { _ = sqlite.Close() }, nil
}

func resumeSigningKey() string {
	if key := os.Getenv("AGENTCORE_RESUME_SIGNING_KEY"); key != "" {
		return key
	}
	return fmt.Sprintf("agentcoredemo-dev-key-%d", time.Now().UnixNano())
}
