package resident

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RESTProvider reads the roster from a Supabase (PostgREST) endpoint.
type RESTProvider struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
}

func NewRESTProvider(baseURL, apiKey string) *RESTProvider {
	return &RESTProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   "residents",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *RESTProvider) Residents(ctx context.Context) ([]Resident, error) {
	u := fmt.Sprintf("%s/rest/v1/%s?select=cpf,unit,name&order=unit.asc,name.asc", p.baseURL, p.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list residents: status %d: %s", resp.StatusCode, string(body))
	}

	// PostgREST returns null for missing columns.
	var rows []struct {
		CPF  *string `json:"cpf"`
		Unit *string `json:"unit"`
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode residents: %w", err)
	}

	out := make([]Resident, 0, len(rows))
	for _, r := range rows {
		out = append(out, Resident{CPF: deref(r.CPF), Unit: deref(r.Unit), Name: deref(r.Name)})
	}
	return Normalize(out), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
