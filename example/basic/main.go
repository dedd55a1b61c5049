package main

import (
	"context"
	"fmt"
	"log"

	"github.com/DmitryB21/neurodoc"
	"github.com/DmitryB21/neurodoc/helper"
	"github.com/DmitryB21/neurodoc/model"
)

const sampleContent = `This document describes the payment service operations.

The payment service SLA is 99.9% availability measured monthly.
Incidents are handled by the oncall engineer within 15 minutes.

API rate limits for the payment service default to 100 requests per minute.
Clients exceeding the limit receive a 429 response with a Retry-After header.

Deploys go out every Tuesday. A failed deploy can be rolled back
with the release tool within five minutes.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// The LLM client comes from the environment (LLM_PROVIDER, LLM_API_KEY).
	// Without configuration the deterministic stub provider is used.
	assistant, err := neurodoc.NewAssistant(dbConfig, 384, nil)
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}
	defer assistant.Close()

	// Set up the default pipeline (semantic chunking + embeddings)
	if err := assistant.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Create document with content
	doc := &model.Document{
		Title:    "Payment Service Runbook",
		Source:   "docs/payments.md",
		Category: "runbook",
		Content:  sampleContent,
		Metadata: model.Metadata{
			"team": "payments",
		},
	}

	// Process and insert document in one call
	fmt.Println("Ingesting document...")
	numChunks, err := assistant.ProcessAndInsertDocument(doc)
	if err != nil {
		log.Fatalf("Failed to process and insert document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Inserted %d chunks\n", numChunks)

	// Ask a question through the full agent pipeline
	question := "What is the SLA for the payment service?"
	fmt.Printf("\nAsking: %s\n", question)

	response, err := assistant.Ask(context.Background(), question, model.AskOptions{TopK: 3})
	if err != nil {
		log.Fatalf("Failed to ask: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", response.Answer)
	fmt.Printf("\nSources (%d):\n", len(response.Sources))
	for i, source := range response.Sources {
		fmt.Printf("  [%d] %s\n", i+1, source.Text)
	}
	fmt.Println("\nMetrics:")
	for name, value := range response.Metrics {
		fmt.Printf("  %s: %.3f\n", name, value)
	}

	fmt.Println("\nBasic example completed successfully!")
}
