package scrapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Export retrieves the full page snapshot of a project, including per-line
// metadata. The export endpoint is a single call; the service does not
// paginate it. Failures are wrapped in *ExportError.
func (c *Client) Export(ctx context.Context, project string) (*Export, error) {
	path := fmt.Sprintf("/api/page-data/export/%s.json?metadata=true", url.PathEscape(project))

	resp, err := c.do(ctx, &request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, &ExportError{Project: project, Err: err}
	}
	defer resp.Body.Close()

	var export Export
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		return nil, &ExportError{Project: project, Err: fmt.Errorf("decoding export response: %w", err)}
	}

	c.logger.Info("exported project",
		slog.String("project", project),
		slog.Int("pages", len(export.Pages)),
	)

	return &export, nil
}
