package mysql

import (
	"context"
	"database/sql"
	"time"
)

// ServiceStats contains lightweight DB health and volume counters.
type ServiceStats struct {
	PingMS        int64  `json:"ping_ms"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Table         string `json:"table"`
	LinkRows      int64  `json:"link_rows"`
}

// ServiceStats returns MySQL health and the link table row count.
func (s *Store) ServiceStats(ctx context.Context) (out *ServiceStats, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	defer func() { s.record("service_stats", start, err) }()

	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	out = &ServiceStats{
		PingMS: time.Since(start).Milliseconds(),
		Table:  s.table,
	}

	var statusName string
	var statusValue sql.NullString
	if err := s.db.QueryRowContext(ctx, `SHOW GLOBAL STATUS LIKE 'Uptime';`).Scan(&statusName, &statusValue); err == nil && statusValue.Valid {
		if v, err := time.ParseDuration(statusValue.String + "s"); err == nil {
			out.UptimeSeconds = int64(v.Seconds())
		}
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `"+s.table+"`;").Scan(&out.LinkRows); err != nil {
		return nil, err
	}
	return out, nil
}
