package main

import (
	"context"
	"fmt"
	"log"

	"github.com/DmitryB21/neurodoc"
	"github.com/DmitryB21/neurodoc/helper"
	"github.com/DmitryB21/neurodoc/model"
)

const runbookContent = `This document describes the payment service operations.

The payment service SLA is 99.9% availability measured monthly.
Incidents are handled by the oncall engineer within 15 minutes.

Deploys go out every Tuesday. A failed deploy can be rolled back
with the release tool within five minutes.`

const referenceContent = `This document is the API reference for the payment service.

API rate limits default to 100 requests per minute per client.
Clients exceeding the limit receive a 429 response with a Retry-After header.

The idempotency cache keeps request keys for 24 hours.
Webhook deliveries are retried from a queue with exponential backoff.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	assistant, err := neurodoc.NewAssistant(dbConfig, 384, nil)
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}
	defer assistant.Close()

	// Set up the default pipeline (semantic chunking + embeddings)
	if err := assistant.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Process and insert multiple documents
	doc1 := &model.Document{
		Title:    "Payment Service Runbook",
		Source:   "docs/payments.md",
		Category: "runbook",
		Content:  runbookContent,
		Metadata: model.Metadata{
			"team": "payments",
			"tags": []string{"sla", "oncall"},
		},
	}

	doc2 := &model.Document{
		Title:    "Payment API Reference",
		Source:   "docs/api.md",
		Category: "reference",
		Content:  referenceContent,
		Metadata: model.Metadata{
			"team": "payments",
			"tags": []string{"api", "limits"},
		},
	}

	fmt.Println("=== Ingesting Documents ===")
	numChunks1, err := assistant.ProcessAndInsertDocument(doc1)
	if err != nil {
		log.Fatalf("Failed to process and insert document 1: %v", err)
	}
	fmt.Printf("Document 1 '%s' (RID: %s): %d chunks\n", doc1.Title, doc1.RID, numChunks1)

	numChunks2, err := assistant.ProcessAndInsertDocument(doc2)
	if err != nil {
		log.Fatalf("Failed to process and insert document 2: %v", err)
	}
	fmt.Printf("Document 2 '%s' (RID: %s): %d chunks\n", doc2.Title, doc2.RID, numChunks2)

	ctx := context.Background()

	// 1. Plain vector search without the agent pipeline
	fmt.Println("\n=== 1. Vector Search ===")
	results, err := assistant.Search(ctx, "payment service availability", 3)
	if err != nil {
		log.Fatalf("Vector search failed: %v", err)
	}
	for i, result := range results {
		fmt.Printf("  Result %d (score %.4f): %s\n", i+1, result.Score, shorten(result.Text, 80))
	}

	// 2. Full agent ask with reranking
	fmt.Println("\n=== 2. Ask with Reranking ===")
	response, err := assistant.Ask(ctx, "What is the SLA for the payment service?", model.AskOptions{
		TopK:         5,
		UseReranking: true,
		RerankTopK:   3,
	})
	if err != nil {
		log.Fatalf("Ask failed: %v", err)
	}
	printResponse(response)

	// 3. Ask scoped to a category via metadata filtering
	fmt.Println("\n=== 3. Ask with Metadata Filter (category=reference) ===")
	response, err = assistant.Ask(ctx, "What are the API rate limits?", model.AskOptions{
		TopK:           5,
		FilterCategory: "reference",
	})
	if err != nil {
		log.Fatalf("Filtered ask failed: %v", err)
	}
	printResponse(response)

	// 4. Underspecified query triggers a clarification instead of retrieval
	fmt.Println("\n=== 4. Clarification ===")
	response, err = assistant.Ask(ctx, "help", model.AskOptions{})
	if err != nil {
		log.Fatalf("Clarification ask failed: %v", err)
	}
	fmt.Printf("  Clarification: %s\n", response.Answer)

	// 5. State machine history and decision log of the last runs
	fmt.Println("\n=== 5. Agent Introspection ===")
	fmt.Printf("  Current state: %s\n", assistant.Controller.StateMachine().Current())
	fmt.Printf("  Decision log entries: %d\n", assistant.Controller.DecisionLog().Len())
	if exported, err := assistant.Controller.DecisionLog().Export(); err == nil {
		fmt.Printf("  Decision log size: %d bytes of JSON\n", len(exported))
	}

	// 6. Recorded experiments, best run by faithfulness
	fmt.Println("\n=== 6. Experiment Tracking ===")
	best, err := assistant.Experiments.SelectBestExperimentByMetric("faithfulness")
	if err != nil {
		log.Fatalf("Best experiment lookup failed: %v", err)
	}
	if best != nil {
		fmt.Printf("  Best run: %q with faithfulness %.3f\n", best.Description, best.Metrics["faithfulness"])
	}

	// 7. Index type switching
	fmt.Println("\n=== 7. Changing Index Type ===")
	err = assistant.ChangeIndexType(ctx, "ivfflat", map[string]interface{}{"lists": 100})
	if err != nil {
		log.Printf("Warning: Index change failed (this is okay for small datasets): %v", err)
	} else {
		fmt.Println("  Switched to IVFFlat index")
	}
	err = assistant.ChangeIndexType(ctx, "hnsw", map[string]interface{}{"m": 16, "ef_construction": 64})
	if err != nil {
		log.Printf("Warning: Index change failed: %v", err)
	} else {
		fmt.Println("  Switched back to HNSW index")
	}

	fmt.Println("\nAdvanced example completed successfully!")
}

func printResponse(response *model.AgentResponse) {
	fmt.Printf("  Answer: %s\n", shorten(response.Answer, 120))
	fmt.Printf("  Sources: %d\n", len(response.Sources))
	for name, value := range response.Metrics {
		fmt.Printf("  %s: %.3f\n", name, value)
	}
}

func shorten(text string, max int) string {
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}
