// internal/repository/postgres/members.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

const memberColumns = `SELECT m.id, m.tenant_id, m.first_name, m.last_name, COALESCE(m.email, ''),
       m.spiritual_gifts, m.ministry_passions, m.skills,
       COALESCE(m.spiritual_calling, ''), COALESCE(m.personality_type, ''),
       m.experience_level, m.leadership_readiness,
       am.availability_score, am.member_id IS NOT NULL,
       m.has_spiritual_assessment, m.background_check_date,
       COALESCE(v.is_active, false), v.ministry_ids
FROM members m
LEFT JOIN volunteers v ON v.member_id = m.id AND v.tenant_id = m.tenant_id
LEFT JOIN availability_matrices am ON am.member_id = m.id AND am.tenant_id = m.tenant_id
WHERE m.tenant_id = $1 AND m.is_active = true`

const pipelineCountsQuery = `SELECT COUNT(*),
       COUNT(*) FILTER (WHERE COALESCE(v.is_active, false)),
       COUNT(*) FILTER (WHERE m.spiritual_gifts IS NOT NULL
                        AND m.spiritual_gifts NOT IN ('[]'::jsonb, '{}'::jsonb, '""'::jsonb, 'null'::jsonb)),
       COUNT(am.member_id)
FROM members m
LEFT JOIN volunteers v ON v.member_id = m.id AND v.tenant_id = m.tenant_id
LEFT JOIN availability_matrices am ON am.member_id = m.id AND am.tenant_id = m.tenant_id
WHERE m.tenant_id = $1 AND m.is_active = true`

// ListCandidates returns active members ordered by id. Active volunteers are left out
// unless the filter asks for them.
func (s *Store) ListCandidates(ctx context.Context, filter pipeline.CandidateFilter) ([]models.MemberProfile, error) {
	query := memberColumns
	if !filter.IncludeActiveVolunteers {
		query += " AND COALESCE(v.is_active, false) = false"
	}
	query += " ORDER BY m.id"

	return s.queryMembers(ctx, query, filter.TenantID)
}

func (s *Store) GetMember(ctx context.Context, tenantID, memberID string) (models.MemberProfile, error) {
	rows, err := s.db.QueryContext(ctx, memberColumns+" AND m.id = $2", tenantID, memberID)
	if err != nil {
		return models.MemberProfile{}, fmt.Errorf("failed to get member %s: %w", memberID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return models.MemberProfile{}, fmt.Errorf("failed to get member %s: %w", memberID, err)
		}
		return models.MemberProfile{}, fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	return scanMember(rows)
}

// ListVolunteers returns members with a volunteer record. Inactive volunteers are
// included only on request.
func (s *Store) ListVolunteers(ctx context.Context, tenantID string, includeInactive bool) ([]models.MemberProfile, error) {
	query := memberColumns + " AND v.member_id IS NOT NULL"
	if !includeInactive {
		query += " AND v.is_active = true"
	}
	query += " ORDER BY m.id"

	return s.queryMembers(ctx, query, tenantID)
}

func (s *Store) PipelineCounts(ctx context.Context, tenantID string) (models.PipelineCounts, error) {
	var c models.PipelineCounts
	err := s.db.QueryRowContext(ctx, pipelineCountsQuery, tenantID).Scan(
		&c.TotalMembers, &c.CurrentVolunteers, &c.MembersWithSpiritualGifts, &c.MembersWithAvailability,
	)
	if err != nil {
		return models.PipelineCounts{}, fmt.Errorf("failed to count pipeline members: %w", err)
	}
	return c, nil
}

func (s *Store) queryMembers(ctx context.Context, query string, args ...interface{}) ([]models.MemberProfile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.MemberProfile
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func scanMember(rows *sql.Rows) (models.MemberProfile, error) {
	var (
		m                            models.MemberProfile
		gifts, passions, skills, vms []byte
		experience, leadership       sql.NullInt64
		availability                 sql.NullFloat64
		backgroundCheck              sql.NullTime
	)
	err := rows.Scan(
		&m.ID, &m.TenantID, &m.FirstName, &m.LastName, &m.Email,
		&gifts, &passions, &skills,
		&m.SpiritualCalling, &m.PersonalityType,
		&experience, &leadership,
		&availability, &m.HasAvailabilityMatrix,
		&m.HasSpiritualAssessment, &backgroundCheck,
		&m.IsActiveVolunteer, &vms,
	)
	if err != nil {
		return models.MemberProfile{}, fmt.Errorf("failed to scan member: %w", err)
	}

	columns := []struct {
		raw    []byte
		name   string
		target *models.IDSet
	}{
		{gifts, "spiritual_gifts", &m.SpiritualGifts},
		{passions, "ministry_passions", &m.MinistryPassions},
		{skills, "skills", &m.Skills},
		{vms, "ministry_ids", &m.VolunteerMinistryIDs},
	}
	for _, c := range columns {
		set, err := decodeIDSet(c.raw, c.name)
		if err != nil {
			return models.MemberProfile{}, fmt.Errorf("member %s: %w", m.ID, err)
		}
		*c.target = set
	}

	if experience.Valid {
		m.ExperienceLevel = models.IntPtr(int(experience.Int64))
	}
	if leadership.Valid {
		m.LeadershipReadiness = models.IntPtr(int(leadership.Int64))
	}
	if availability.Valid {
		m.AvailabilityScore = models.FloatPtr(availability.Float64)
	}
	if backgroundCheck.Valid {
		t := backgroundCheck.Time
		m.BackgroundCheckDate = &t
	}
	return m, nil
}

// IsNotFound reports whether err came from a missing member lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}
