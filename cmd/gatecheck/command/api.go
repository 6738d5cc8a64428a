package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: http.DefaultClient}
}

func (a *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *apiClient) checklist(ctx context.Context, id types.ID) (*checklist.Checklist, error) {
	var c checklist.Checklist
	if err := a.do(ctx, http.MethodGet, "/api/checklists/"+url.PathEscape(string(id)), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *apiClient) complete(ctx context.Context, checklistID, activityID types.ID, at geofence.GeoPoint, photo string) error {
	return a.do(ctx, http.MethodPost, "/api/activities/complete", map[string]any{
		"checklistId": checklistID,
		"activityId":  activityID,
		"latitude":    at.Lat,
		"longitude":   at.Lng,
		"photo":       photo,
	}, nil)
}
