// Package claimgraph finds claims in a main document that are contradicted by
// claims harvested from supporting documents.
//
// Documents are split into chunks. Each chunk goes through extraction against
// a caller-supplied schema, bucketed deduplication and graph ingestion, so the
// graph ends up holding provenance-tagged Entity, Claim and Proposition nodes.
// Contradiction analysis then judges every Proposition against the Claims.
//
// # Basic Usage
//
// The graph driver, completion client and id source are built by the caller
// and injected:
//
//	graph, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	nlpClient, err := nlp.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), nlp.Config{Model: "gpt-4o-mini"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store, err := docstore.Open(ctx, docstore.DriverPostgres, dsn)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := claimgraph.NewClient(graph, nlpClient, store, nil, nil)
//	defer client.Close(ctx)
//
// # Ingesting Documents
//
//	docID, err := client.IngestSupportingDocument(ctx, claimgraph.DocumentRequest{
//		Title:   "Trial report",
//		Content: reportText,
//		Schema:  schema,
//	})
//
//	err = client.IngestMainDocument(ctx, claimgraph.DocumentRequest{
//		Title:   "Draft",
//		Content: draftText,
//		Schema:  schema,
//	})
//
// # Finding Contradictions
//
//	results, err := client.AnalyzeContradictions(ctx)
//	for _, r := range results {
//		for _, c := range r.Pairwise {
//			fmt.Printf("%s contradicts %s: %s\n", r.Proposition.Text, c.ResourceText, c.Reason)
//		}
//	}
package claimgraph
