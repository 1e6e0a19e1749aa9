package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back what the influx metrics sink wrote. It assumes the
// server is running and the organisation and bucket exist.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// DailySOH returns the soh field of every soh_estimate point of a run,
// ordered by time.
func (c *InfluxClient) DailySOH(ctx context.Context, runID string) ([]float64, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: 0)
  |> filter(fn: (r) => r._measurement == "soh_estimate" and r._field == "soh" and r.run_id == %q)
  |> sort(columns: ["_time"])`, c.bucket, runID)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer res.Close()
	var out []float64
	for res.Next() {
		v, ok := res.Record().Value().(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected soh value %v", res.Record().Value())
		}
		out = append(out, v)
	}
	return out, res.Err()
}

func (c *InfluxClient) Close() { c.client.Close() }
