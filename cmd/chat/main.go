package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/aurumgallery/artgraph"
	"github.com/aurumgallery/artgraph/helper"
)

const systemPromptTemplate = `You are a knowledgeable art gallery curator. Answer questions about
artists, artworks and art movements using ONLY the context below. If the
context does not contain the answer, say that the gallery's collection
does not cover it; never invent facts.

Context:
%s`

const emptyContextAnswer = "I could not find anything in the gallery's collection related to your question."

func main() {
	cfg, err := helper.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	ag, err := artgraph.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	defer func() { _ = ag.Close(ctx) }()

	logger := ag.Logger()

	if err := ag.UseDefaultEmbedder(); err != nil {
		// Without an embedder the context falls back to keyword matches only.
		logger.Warn("Embedder unavailable, context uses keyword retrieval only", slog.Any("error", err))
	}

	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	fmt.Println("Gallery chat. Ask about artists and artworks.")
	fmt.Println("Commands: /cypher <query> runs raw Cypher, /quit exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}
		if query, ok := strings.CutPrefix(input, "/cypher "); ok {
			runCypher(ctx, ag, query)
			continue
		}

		answer, err := answerQuestion(ctx, ag, &client, cfg.OpenAIChatModel, input)
		if err != nil {
			logger.Error("Chat completion failed", slog.Any("error", err))
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
}

// answerQuestion grounds the question in the graph and asks the chat model.
// Without any matching context the canned fallback is returned and the
// model is never called.
func answerQuestion(ctx context.Context, ag *artgraph.ArtGraph, client *openai.Client, chatModel, question string) (string, error) {
	grounding := ag.ChatContext(ctx, question)
	if grounding == "" {
		return emptyContextAnswer, nil
	}

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(systemPromptTemplate, grounding)),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return "", helper.NewError("chat completion", err)
	}
	if len(completion.Choices) == 0 {
		return "", helper.NewError("chat completion", fmt.Errorf("no choices returned"))
	}
	return completion.Choices[0].Message.Content, nil
}

// runCypher executes an operator query and pretty-prints the rows.
func runCypher(ctx context.Context, ag *artgraph.ArtGraph, query string) {
	rows, err := ag.RawQuery(ctx, query)
	if err != nil {
		fmt.Println("query error:", err)
		return
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}
	for _, row := range rows {
		encoded, err := json.MarshalIndent(row, "", "  ")
		if err != nil {
			fmt.Println(row)
			continue
		}
		fmt.Println(string(encoded))
	}
}
