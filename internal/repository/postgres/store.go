// internal/repository/postgres/store.go
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

// ErrMemberNotFound is returned by GetMember when the member does not exist in the tenant
// or is no longer active.
var ErrMemberNotFound = errors.New("member not found")

var (
	_ pipeline.MemberRepository   = (*Store)(nil)
	_ pipeline.MinistryRepository = (*Store)(nil)
	_ pipeline.ActivityRepository = (*Store)(nil)
	_ pipeline.ProfileStore       = (*Store)(nil)
)

// Store reads the congregation tables and writes recruitment profiles. Every query is
// scoped by tenant_id.
type Store struct {
	db       *sql.DB
	staffing models.StaffingRule
	logger   logger.Logger
}

func New(db *sql.DB, staffing models.StaffingRule, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		db:       db,
		staffing: staffing,
		logger:   log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

// decodeIDSet reads a JSON column. NULL and empty values are the empty set.
func decodeIDSet(raw []byte, column string) (models.IDSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var set models.IDSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", column, err)
	}
	return set, nil
}
