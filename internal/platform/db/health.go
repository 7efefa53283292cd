package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// poolStatus is the wire shape of the database health payload.
type poolStatus struct {
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	TotalConns    int32  `json:"conns_total"`
	IdleConns     int32  `json:"conns_idle"`
	AcquiredConns int32  `json:"conns_acquired"`
	MaxConns      int32  `json:"conns_max"`
}

func snapshot(pool *pgxpool.Pool) poolStatus {
	stat := pool.Stat()
	return poolStatus{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
}

// HealthHandler reports database reachability plus pool saturation. The
// ping timeout is short so a stalled database surfaces as unavailable
// instead of hanging the probe.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		body := snapshot(pool)
		if err := pool.Ping(ctx); err != nil {
			body.Status = "unreachable"
			body.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		body.Status = "ok"
		return c.JSON(http.StatusOK, body)
	}
}
