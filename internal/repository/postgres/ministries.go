// internal/repository/postgres/ministries.go
package postgres

import (
	"context"
	"fmt"

	"volunteer-engine/internal/models"
)

const activeMinistriesQuery = `SELECT mi.id, mi.tenant_id, mi.name, mi.category,
       (SELECT COUNT(*) FROM volunteers v
         WHERE v.tenant_id = mi.tenant_id AND v.is_active = true
           AND jsonb_exists(COALESCE(v.ministry_ids, '[]'::jsonb), mi.id))
FROM ministries mi
WHERE mi.tenant_id = $1 AND mi.is_active = true
ORDER BY mi.id`

// ListActiveMinistries resolves each ministry's category profile and optimal staffing.
// Unknown categories fall back to GENERAL.
func (s *Store) ListActiveMinistries(ctx context.Context, tenantID string) ([]models.Ministry, error) {
	rows, err := s.db.QueryContext(ctx, activeMinistriesQuery, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ministries: %w", err)
	}
	defer rows.Close()

	var ministries []models.Ministry
	for rows.Next() {
		var id, tenant, name, rawCategory string
		var volunteers int
		if err := rows.Scan(&id, &tenant, &name, &rawCategory, &volunteers); err != nil {
			return nil, fmt.Errorf("failed to scan ministry: %w", err)
		}
		category, err := models.ParseCategory(rawCategory)
		if err != nil {
			s.logger.Warn("unknown ministry category, using GENERAL", map[string]interface{}{
				"ministryId": id,
				"category":   rawCategory,
			})
		}
		ministries = append(ministries, models.NewMinistry(id, tenant, name, category, volunteers, s.staffing))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ministries: %w", err)
	}
	return ministries, nil
}
