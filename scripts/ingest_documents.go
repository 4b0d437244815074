package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Sahil-Prajapati-8917/resume-collage/internal/config"
	"github.com/Sahil-Prajapati-8917/resume-collage/internal/services"
)

// Ingests reference documents (job descriptions, scoring rubrics) into the
// vector store so evaluations can pull supporting context into the prompt.
func main() {
	log.Println("Starting reference document ingestion...")

	cfg := config.Load()

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}

	store, err := services.NewReferenceStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Qdrant: %v", err)
	}

	if err := store.InitCollection(ctx); err != nil {
		log.Fatalf("Failed to initialize collection: %v", err)
	}

	extractor := services.NewTextExtractor()
	chunker := services.NewTextChunker()

	documents := []struct {
		Path    string
		DocType string
		Name    string
	}{
		{
			Path:    "./reference_docs/job_description.pdf",
			DocType: "job_description",
			Name:    "Job Description",
		},
		{
			Path:    "./reference_docs/scoring_rubric.pdf",
			DocType: "scoring_rubric",
			Name:    "Resume Scoring Rubric",
		},
	}

	successCount := 0
	failCount := 0

	for _, doc := range documents {
		log.Printf("Processing %s (%s)", doc.Name, doc.Path)

		data, err := os.ReadFile(doc.Path)
		if err != nil {
			log.Printf("  File not readable, skipping: %v", err)
			failCount++
			continue
		}

		text, err := extractor.Extract(data, services.MimePDF)
		if err != nil {
			log.Printf("  Failed to extract text: %v", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		log.Printf("  Extracted %d characters, %d chunks", len(text), len(chunks))

		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("  Failed to embed chunk %d: %v", i+1, err)
				continue
			}

			docID := fmt.Sprintf("%s_chunk_%d", doc.DocType, i)
			if err := store.UpsertChunk(ctx, docID, doc.DocType, chunk, embedding); err != nil {
				log.Printf("  Failed to store chunk %d: %v", i+1, err)
				continue
			}
		}

		log.Printf("  Ingested %s", doc.Name)
		successCount++
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("Ingestion finished: %d succeeded, %d failed", successCount, failCount)

	if failCount > 0 {
		os.Exit(1)
	}
}
