package uploadclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/upsrv/upserver/pkg/uploadproto"
)

var healthHTTPClient = &http.Client{Timeout: 2 * time.Second}

// Health — статистика диска сервера загрузок.
type Health struct {
	OK         bool  `json:"ok"`
	FreeBytes  int64 `json:"free_bytes"`
	TotalBytes int64 `json:"total_bytes"`
	UsedBytes  int64 `json:"used_bytes"`
}

// Health опрашивает health-эндпоинт сервера; полезно проверить свободное
// место до старта большой загрузки.
func (cl *Client) Health(ctx context.Context) (Health, error) {
	u := fmt.Sprintf(uploadproto.HealthPathFormat, cl.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Health{}, err
	}

	resp, err := healthHTTPClient.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("health check failed: %s", resp.Status)
	}

	var payload Health
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Health{}, err
	}

	return payload, nil
}
