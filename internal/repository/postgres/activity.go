// internal/repository/postgres/activity.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"volunteer-engine/internal/models"
)

const (
	assignmentsQuery = `SELECT id, member_id, ministry_id, date, status
FROM assignments
WHERE tenant_id = $1 AND member_id = $2 AND date >= $3 AND status <> 'CANCELLED'
ORDER BY date, id`

	checkInsQuery  = `SELECT COUNT(*) FROM check_ins WHERE tenant_id = $1 AND member_id = $2 AND checked_in_at >= $3`
	donationsQuery = `SELECT COUNT(*) FROM donations WHERE tenant_id = $1 AND member_id = $2 AND donated_at >= $3`
)

func (s *Store) ListActiveAssignments(ctx context.Context, tenantID, memberID string, since time.Time) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, assignmentsQuery, tenantID, memberID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for %s: %w", memberID, err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		var status string
		if err := rows.Scan(&a.ID, &a.MemberID, &a.MinistryID, &a.Date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Status = models.AssignmentStatus(strings.ToUpper(strings.TrimSpace(status)))
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

func (s *Store) CountRecentCheckIns(ctx context.Context, tenantID, memberID string, since time.Time) (int, error) {
	return s.count(ctx, checkInsQuery, "check-ins", tenantID, memberID, since)
}

func (s *Store) CountRecentDonations(ctx context.Context, tenantID, memberID string, since time.Time) (int, error) {
	return s.count(ctx, donationsQuery, "donations", tenantID, memberID, since)
}

func (s *Store) count(ctx context.Context, query, what, tenantID, memberID string, since time.Time) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, tenantID, memberID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s for %s: %w", what, memberID, err)
	}
	return n, nil
}
