package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"mockinterview/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectTestDB(t *testing.T) *Database {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN environment variable not set, skipping test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, DatabaseConnectProps{Logger: logger.Nop(), DSN: dsn, ConnectRetries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("testdata/schema.sql")
	require.NoError(t, err)
	_, err = db.conn.ExecContext(ctx, string(schema))
	require.NoError(t, err)
	return db
}

func insertUser(t *testing.T, db *Database, domain string, telegramID int64) int64 {
	t.Helper()
	var id int64
	err := db.conn.QueryRowContext(context.Background(),
		`INSERT INTO users (username, domain, skills, telegram_user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		"김철수", domain, "Java", telegramID,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestLatestProject(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()
	userID := insertUser(t, db, "백엔드", time.Now().UnixNano())

	project, err := db.LatestProject(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, project)

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"오래된 프로젝트", "최신 프로젝트"} {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO projects (user_id, title, skills_used, created_at) VALUES ($1, $2, $3, $4)`,
			userID, title, "Go", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	project, err = db.LatestProject(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "최신 프로젝트", project.Title)
	assert.Equal(t, "Go", project.SkillsUsed)
	assert.Equal(t, "", project.Content)
	assert.Equal(t, userID, project.UserID)
}

func TestUserProfile(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()
	telegramID := time.Now().UnixNano()
	userID := insertUser(t, db, "백엔드", telegramID)

	profile, err := db.UserProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "김철수", profile.Name)
	assert.Equal(t, "백엔드", profile.Domain)
	assert.Equal(t, "Java", profile.Skills)

	byTelegram, err := db.UserProfileByTelegramID(ctx, telegramID)
	require.NoError(t, err)
	assert.Equal(t, userID, byTelegram.ID)

	_, err = db.UserProfile(ctx, -1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = db.UserProfileByTelegramID(ctx, -1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestJobForDomain(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()
	domain := "domain-" + uuid.NewString()

	job, err := db.JobForDomain(ctx, domain)
	require.NoError(t, err)
	assert.Nil(t, job)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO jobs (company, title, description, domain, skills_required) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $4, $9)`,
		"토스", "서버 개발자", "결제", domain, "Kotlin",
		"당근", "백엔드", "중고거래", "Go")
	require.NoError(t, err)

	job, err = db.JobForDomain(ctx, domain)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "토스", job.Company)
	assert.Equal(t, "Kotlin", job.SkillsRequired)
	assert.Equal(t, domain, job.Domain)
}

func TestConnectFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Connect(ctx, DatabaseConnectProps{
		Logger:         logger.Nop(),
		DSN:            "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1",
		ConnectRetries: 2,
		RetryDelay:     10 * time.Millisecond,
	})
	assert.Error(t, err)
}
