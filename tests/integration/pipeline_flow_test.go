package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestPipelineFlow_QuoteIngestion(t *testing.T) {
	app := setupApp(t)

	// Register a security to ingest quotes for.
	rec := app.request("POST", "/api/v1/securities",
		`{"symbol":"AAPL","name":"Apple Inc","industry_code":"TECH","security_type_code":"STOCK","variance_tier_code":"LOW"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create security failed: %d %s", rec.Code, rec.Body.String())
	}
	securityID := parseJSON(t, rec)["security"].(map[string]interface{})["id"].(string)

	now := time.Now().UTC()
	t1 := now.Add(-2 * time.Hour).Format(time.RFC3339)
	t2 := now.Add(-1 * time.Hour).Format(time.RFC3339)
	t3 := now.Format(time.RFC3339)

	quotesBody := fmt.Sprintf(`{"quotes":[
		{"security_id":%q,"price":17500,"currency":"USD","observed_at":%q},
		{"security_id":%q,"price":17600,"currency":"USD","observed_at":%q},
		{"security_id":%q,"price":17700,"currency":"USD","observed_at":%q}
	]}`, securityID, t1, securityID, t2, securityID, t3)

	// Step 1: ingestion requires the pipeline API key.
	rec = app.request("POST", "/api/v1/pipeline/quotes", quotesBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without API key, got %d", rec.Code)
	}

	// Step 2: authenticated ingestion records all three quotes.
	rec = app.pipelineRequest("POST", "/api/v1/pipeline/quotes", quotesBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingestion failed: %d %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["recorded"].(float64) != 3 {
		t.Errorf("expected 3 recorded quotes, got %v", parseJSON(t, rec)["recorded"])
	}

	// Step 3: re-ingesting the same batch records nothing.
	rec = app.pipelineRequest("POST", "/api/v1/pipeline/quotes", quotesBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("duplicate ingestion failed: %d %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["recorded"].(float64) != 0 {
		t.Errorf("expected duplicates skipped, got %v recorded", parseJSON(t, rec)["recorded"])
	}

	// Step 4: history returns the quotes newest first.
	rec = app.request("GET", "/api/v1/securities/AAPL/quotes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("quote history failed: %d %s", rec.Code, rec.Body.String())
	}
	history := parseJSON(t, rec)
	if history["total_items"].(float64) != 3 {
		t.Fatalf("expected 3 quotes, got %v", history["total_items"])
	}
	data := history["data"].([]interface{})
	first := data[0].(map[string]interface{})
	if first["price"].(float64) != 17700 {
		t.Errorf("expected newest quote 17700 first, got %v", first["price"])
	}
	if first["source"] != "live" {
		t.Errorf("expected ingested quote tagged live, got %v", first["source"])
	}

	// Step 5: malformed entries are rejected by validation.
	rec = app.pipelineRequest("POST", "/api/v1/pipeline/quotes",
		fmt.Sprintf(`{"quotes":[{"security_id":%q,"price":-5,"currency":"USD","observed_at":%q}]}`, securityID, t3))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", rec.Code)
	}

	rec = app.pipelineRequest("POST", "/api/v1/pipeline/quotes", `{"quotes":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", rec.Code)
	}
}
