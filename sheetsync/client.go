package sheetsync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/utils"
)

type sheetClient struct {
	endpoint string
	http     *http.Client
	now      func() time.Time
}

func newSheetClient(endpoint string, httpClient *http.Client, now func() time.Time) *sheetClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &sheetClient{
		endpoint: strings.TrimSpace(endpoint),
		http:     httpClient,
		now:      now,
	}
}

// getCatalog fetches the central catalog. The t parameter defeats caches
// sitting between the till and the sheet.
func (c *sheetClient) getCatalog(ctx context.Context) (catalogResponse, error) {
	params := url.Values{}
	params.Set("action", actionProducts)
	params.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))

	endpoint := c.endpoint
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return catalogResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return catalogResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return catalogResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return catalogResponse{}, fmt.Errorf("sheet endpoint error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed catalogResponse
	if err := utils.UnmarshalFromJSON(body, &parsed); err != nil {
		return catalogResponse{}, fmt.Errorf("decode catalog: %w", err)
	}
	return parsed, nil
}

// postForm sends action and a JSON payload as form fields. Only a transport
// failure is an error: whatever the endpoint answers, the request was sent.
func (c *sheetClient) postForm(ctx context.Context, action string, payload any) (int, error) {
	raw, err := utils.MarshalToJSON(payload)
	if err != nil {
		return 0, err
	}
	form := url.Values{}
	form.Set("action", action)
	form.Set("payload", raw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
