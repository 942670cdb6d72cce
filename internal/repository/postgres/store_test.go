// internal/repository/postgres/store_test.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/engine/pipeline"
	"volunteer-engine/internal/models"
)

var memberRowColumns = []string{
	"id", "tenant_id", "first_name", "last_name", "email",
	"spiritual_gifts", "ministry_passions", "skills",
	"spiritual_calling", "personality_type",
	"experience_level", "leadership_readiness",
	"availability_score", "has_matrix",
	"has_spiritual_assessment", "background_check_date",
	"is_volunteer", "ministry_ids",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return New(db, models.DefaultStaffingRule, logger.NewTestLogger(t)), mock
}

func query(q string) string {
	return regexp.QuoteMeta(q)
}

func TestListCandidates_ScansNullableColumns(t *testing.T) {
	store, mock := newTestStore(t)
	checked := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(memberRowColumns).
		AddRow("m-1", "t-1", "Ana", "Lopez", "ana@example.org",
			[]byte(`["Teaching", "service"]`), []byte(`{"children": true}`), []byte(`"first aid, music"`),
			"teach kids", "ENFJ",
			int64(4), int64(3),
			0.8, true,
			true, checked,
			false, nil).
		AddRow("m-2", "t-1", "Ben", "", "",
			nil, nil, nil,
			"", "",
			nil, nil,
			nil, false,
			false, nil,
			false, nil)

	mock.ExpectQuery(query(memberColumns + " AND COALESCE(v.is_active, false) = false ORDER BY m.id")).
		WithArgs("t-1").
		WillReturnRows(rows)

	members, err := store.ListCandidates(context.Background(), pipeline.CandidateFilter{TenantID: "t-1"})
	require.NoError(t, err)
	require.Len(t, members, 2)

	ana := members[0]
	assert.Equal(t, models.IDSet{"service", "teaching"}, ana.SpiritualGifts)
	assert.Equal(t, models.IDSet{"children"}, ana.MinistryPassions)
	assert.Equal(t, models.IDSet{"first aid", "music"}, ana.Skills)
	require.NotNil(t, ana.ExperienceLevel)
	assert.Equal(t, 4, *ana.ExperienceLevel)
	require.NotNil(t, ana.AvailabilityScore)
	assert.Equal(t, 0.8, *ana.AvailabilityScore)
	assert.True(t, ana.HasBackgroundCheck())
	assert.True(t, ana.HasAvailabilityMatrix)

	ben := members[1]
	assert.Nil(t, ben.ExperienceLevel)
	assert.Nil(t, ben.LeadershipReadiness)
	assert.Nil(t, ben.AvailabilityScore)
	assert.Nil(t, ben.BackgroundCheckDate)
	assert.True(t, ben.SpiritualGifts.IsEmpty())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidates_IncludeVolunteersDropsFilter(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(query(memberColumns + " ORDER BY m.id")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(memberRowColumns))

	members, err := store.ListCandidates(context.Background(), pipeline.CandidateFilter{TenantID: "t-1", IncludeActiveVolunteers: true})
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidates_BadJSONColumn(t *testing.T) {
	store, mock := newTestStore(t)

	rows := sqlmock.NewRows(memberRowColumns).
		AddRow("m-1", "t-1", "Ana", "", "",
			[]byte(`42`), nil, nil, "", "", nil, nil, nil, false, false, nil, false, nil)
	mock.ExpectQuery(query(memberColumns)).WillReturnRows(rows)

	_, err := store.ListCandidates(context.Background(), pipeline.CandidateFilter{TenantID: "t-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spiritual_gifts")
}

func TestGetMember(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectQuery(query(memberColumns+" AND m.id = $2")).
			WithArgs("t-1", "v-1").
			WillReturnRows(sqlmock.NewRows(memberRowColumns).
				AddRow("v-1", "t-1", "Vera", "", "", nil, nil, nil, "", "", nil, nil, nil, false, false, nil,
					true, []byte(`["worship"]`)))

		m, err := store.GetMember(context.Background(), "t-1", "v-1")
		require.NoError(t, err)
		assert.True(t, m.IsActiveVolunteer)
		assert.Equal(t, models.IDSet{"worship"}, m.VolunteerMinistryIDs)
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectQuery(query(memberColumns+" AND m.id = $2")).
			WithArgs("t-1", "ghost").
			WillReturnRows(sqlmock.NewRows(memberRowColumns))

		_, err := store.GetMember(context.Background(), "t-1", "ghost")
		assert.True(t, IsNotFound(err))
	})
}

func TestListVolunteers(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(query(memberColumns + " AND v.member_id IS NOT NULL AND v.is_active = true ORDER BY m.id")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(memberRowColumns))
	mock.ExpectQuery(query(memberColumns + " AND v.member_id IS NOT NULL ORDER BY m.id")).
		WithArgs("t-1").
		WillReturnError(errors.New("connection refused"))

	_, err := store.ListVolunteers(context.Background(), "t-1", false)
	require.NoError(t, err)
	_, err = store.ListVolunteers(context.Background(), "t-1", true)
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelineCounts(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(query(pipelineCountsQuery)).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "volunteers", "gifts", "availability"}).
			AddRow(int64(100), int64(25), int64(60), int64(40)))

	c, err := store.PipelineCounts(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, models.PipelineCounts{TotalMembers: 100, CurrentVolunteers: 25, MembersWithSpiritualGifts: 60, MembersWithAvailability: 40}, c)
}

func TestListActiveMinistries(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(query(activeMinistriesQuery)).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "category", "volunteers"}).
			AddRow("kids", "t-1", "Kids Church", "children", int64(0)).
			AddRow("cafe", "t-1", "Cafe", "coffee", int64(10)))

	ministries, err := store.ListActiveMinistries(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, ministries, 2)

	assert.Equal(t, models.CategoryChildren, ministries[0].Category)
	assert.True(t, ministries[0].RequiresBackgroundCheck)
	assert.Equal(t, 3, ministries[0].OptimalStaffing)

	assert.Equal(t, models.CategoryGeneral, ministries[1].Category)
	assert.Equal(t, 12, ministries[1].OptimalStaffing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityQueries(t *testing.T) {
	store, mock := newTestStore(t)
	since := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	date := since.Add(48 * time.Hour)

	mock.ExpectQuery(query(assignmentsQuery)).
		WithArgs("t-1", "v-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "ministry_id", "date", "status"}).
			AddRow("a-1", "v-1", "worship", date, "confirmed"))
	mock.ExpectQuery(query(checkInsQuery)).
		WithArgs("t-1", "v-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery(query(donationsQuery)).
		WithArgs("t-1", "v-1", since).
		WillReturnError(sql.ErrConnDone)

	assignments, err := store.ListActiveAssignments(context.Background(), "t-1", "v-1", since)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, models.AssignmentConfirmed, assignments[0].Status)
	assert.Equal(t, date, assignments[0].Date)

	checkIns, err := store.CountRecentCheckIns(context.Background(), "t-1", "v-1", since)
	require.NoError(t, err)
	assert.Equal(t, 7, checkIns)

	_, err = store.CountRecentDonations(context.Background(), "t-1", "v-1", since)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testRun() pipeline.RunInfo {
	return pipeline.RunInfo{
		RunID:         "run-1",
		TenantID:      "t-1",
		PolicyVersion: "2024.1",
		StartedAt:     time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsertProfile(t *testing.T) {
	store, mock := newTestStore(t)
	run := testRun()
	profile := models.RecruitmentProfile{
		MemberID:            "m-1",
		RecruitmentScore:    82,
		Readiness:           models.ReadinessReady,
		LeadershipPotential: models.LeadershipHigh,
	}

	mock.ExpectBegin()
	mock.ExpectExec(query(upsertProfileQuery)).
		WithArgs("t-1", "m-1", "run-1", "2024.1", 82, "READY", "HIGH", sqlmock.AnyArg(), run.StartedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query(insertHistoryQuery)).
		WithArgs(HistoryID("run-1", "m-1"), "run-1", "t-1", "m-1", 82, "READY", run.StartedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.UpsertProfile(context.Background(), run, profile))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProfile_RollsBackOnHistoryFailure(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(query(upsertProfileQuery)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query(insertHistoryQuery)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.UpsertProfile(context.Background(), testRun(), models.RecruitmentProfile{MemberID: "m-1"})
	assert.ErrorContains(t, err, "score history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryID_IsStablePerRunAndMember(t *testing.T) {
	assert.Equal(t, HistoryID("run-1", "m-1"), HistoryID("run-1", "m-1"))
	assert.NotEqual(t, HistoryID("run-1", "m-1"), HistoryID("run-2", "m-1"))
	assert.NotEqual(t, HistoryID("run-1", "m-1"), HistoryID("run-1", "m-2"))
}

func TestMigrationSource(t *testing.T) {
	src, err := MigrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init", ident)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	for _, table := range []string{"members", "volunteers", "recruitment_profiles", "recruitment_score_history"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table)
	}

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	down.Close()
}
