package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counters 单行汇总
type Counters struct {
	Users                int64   `db:"users" json:"users"`
	Admins               int64   `db:"admins" json:"admins"`
	PendingReports       int64   `db:"pending_reports" json:"pendingReports"`
	PendingRegistrations int64   `db:"pending_registrations" json:"pendingRegistrations"`
	PendingReviews       int64   `db:"pending_reviews" json:"pendingReviews"`
	PaidRevenue          float64 `db:"paid_revenue" json:"paidRevenue"`
	ActiveGames          int64   `db:"active_games" json:"activeGames"`
}

type statusCount struct {
	Status string `db:"status"`
	N      int64  `db:"n"`
}

type DashboardRepository interface {
	Counters(ctx context.Context) (*Counters, error)
	// CountByStatus 只允许固定的表名
	CountByStatus(ctx context.Context, table string) (map[string]int64, error)
}

type dashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

const countersQuery = `SELECT
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND role = ?) AS admins,
	(SELECT COUNT(*) FROM reports WHERE deleted_at IS NULL AND status = ?) AS pending_reports,
	(SELECT COUNT(*) FROM championship_registrations WHERE deleted_at IS NULL AND status = ?) AS pending_registrations,
	(SELECT COUNT(*) FROM championship_reviews WHERE deleted_at IS NULL AND status = ?) AS pending_reviews,
	(SELECT COALESCE(SUM(total), 0) FROM orders WHERE deleted_at IS NULL AND payment_status = ?) AS paid_revenue,
	(SELECT COUNT(*) FROM games WHERE deleted_at IS NULL AND is_active) AS active_games`

func (r *dashboardRepository) Counters(ctx context.Context) (*Counters, error) {
	var c Counters
	query := r.db.Rebind(countersQuery)
	if err := r.db.GetContext(ctx, &c, query, "ADMIN", "pending", "pending", "pending", "paid"); err != nil {
		return nil, fmt.Errorf("dashboard counters: %w", err)
	}
	return &c, nil
}

var statusTables = map[string]bool{"posts": true, "orders": true}

func (r *dashboardRepository) CountByStatus(ctx context.Context, table string) (map[string]int64, error) {
	if !statusTables[table] {
		return nil, fmt.Errorf("dashboard: table %q not allowed", table)
	}

	var rows []statusCount
	query := "SELECT status, COUNT(*) AS n FROM " + table + " WHERE deleted_at IS NULL GROUP BY status"
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("dashboard %s by status: %w", table, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
