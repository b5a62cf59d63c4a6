package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kanwork/kanwork/internal/models"
)

// ListAuditLogs returns one page of a workspace's audit trail, newest
// first. The log is append-only and read-only from the client.
func (c *Client) ListAuditLogs(ctx context.Context, workspaceID int64, skip, limit int) (models.Page[models.AuditLog], error) {
	var out models.Page[models.AuditLog]
	path := fmt.Sprintf("/workspaces/%d/audit-logs", workspaceID)
	query := url.Values{
		"skip":  []string{strconv.Itoa(skip)},
		"limit": []string{strconv.Itoa(limit)},
	}
	if err := c.do(ctx, "GET", path, query, nil, &out, nil); err != nil {
		return models.Page[models.AuditLog]{}, err
	}
	return out, nil
}
